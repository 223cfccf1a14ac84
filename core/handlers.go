package core

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	GetCalendar(gctx *gin.Context)
	GetCells(gctx *gin.Context)
	GetVisibleEvents(gctx *gin.Context)
	GetSync(gctx *gin.Context)
	GetTimeSlots(gctx *gin.Context)
	PostNavigate(gctx *gin.Context)
	PostMode(gctx *gin.Context)
	PostReload(gctx *gin.Context)
	PostEvents(gctx *gin.Context)
	GetEvent(gctx *gin.Context)
	PutEvent(gctx *gin.Context)
	DeleteEvent(gctx *gin.Context)
}

type handlers struct {
	controller CalendarController
	loc        *time.Location
}

func NewHandlers(controller CalendarController, loc *time.Location) Handlers {
	if loc == nil {
		loc = time.Local
	}

	return &handlers{controller: controller, loc: loc}
}

// Routes registers the planner API on router.
func Routes(router gin.IRouter, h Handlers) {
	router.GET("/calendar", h.GetCalendar)
	router.GET("/calendar/cells", h.GetCells)
	router.GET("/calendar/events", h.GetVisibleEvents)
	router.GET("/calendar/sync", h.GetSync)
	router.GET("/calendar/slots", h.GetTimeSlots)
	router.POST("/calendar/navigate", h.PostNavigate)
	router.POST("/calendar/mode", h.PostMode)
	router.POST("/calendar/reload", h.PostReload)
	router.POST("/events", h.PostEvents)
	router.GET("/events/:id", h.GetEvent)
	router.PUT("/events/:id", h.PutEvent)
	router.DELETE("/events/:id", h.DeleteEvent)
}

func abortWithError(gctx *gin.Context, message string, err error) {
	ctx := gctx.Request.Context()

	switch {
	case errors.Is(err, ErrValidation):
		log.Ctx(ctx).Info().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError(message, err))
	case errors.Is(err, ErrEventNotFound):
		log.Ctx(ctx).Info().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusNotFound, NewError(message, err))
	default:
		log.Ctx(ctx).Error().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, NewError(message, err))
	}
}

func (h *handlers) GetCalendar(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.controller.View())
}

func (h *handlers) GetCells(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.controller.VisibleCells())
}

func (h *handlers) GetVisibleEvents(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.controller.VisibleEvents())
}

func (h *handlers) GetSync(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.controller.CurrentSyncState())
}

func (h *handlers) GetTimeSlots(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, HourSlots())
}

type navigateRequest struct {
	Direction string `json:"direction"`
	// Anchor jumps to a given date when set; Direction is ignored then.
	Anchor string `json:"anchor,omitempty"`
}

func (h *handlers) PostNavigate(gctx *gin.Context) {
	var req navigateRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", NewValidationError("body", err.Error()))
		return
	}

	if req.Anchor != "" {
		anchor, err := ParseInstant(req.Anchor, h.loc)
		if err != nil {
			abortWithError(gctx, "invalid anchor", NewValidationError("anchor", err.Error()))
			return
		}

		h.controller.SetAnchor(anchor)
		gctx.JSON(http.StatusOK, h.controller.View())

		return
	}

	direction, err := ParseDirection(req.Direction)
	if err != nil {
		abortWithError(gctx, "invalid direction", err)
		return
	}

	h.controller.Navigate(direction)
	gctx.JSON(http.StatusOK, h.controller.View())
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func (h *handlers) PostMode(gctx *gin.Context) {
	var req modeRequest

	err := gctx.ShouldBindJSON(&req)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", NewValidationError("body", err.Error()))
		return
	}

	mode, err := ParseViewMode(req.Mode)
	if err != nil {
		abortWithError(gctx, "invalid view mode", err)
		return
	}

	h.controller.SetViewMode(mode)
	gctx.JSON(http.StatusOK, h.controller.View())
}

func (h *handlers) PostReload(gctx *gin.Context) {
	gctx.JSON(http.StatusOK, h.controller.Reload(gctx.Request.Context()))
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var input EventInput

	err := gctx.ShouldBindJSON(&input)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", NewValidationError("body", err.Error()))
		return
	}

	draft, err := input.Draft(h.loc)
	if err != nil {
		abortWithError(gctx, "event validation failed", err)
		return
	}

	event, err := h.controller.Create(ctx, draft)
	if err != nil {
		abortWithError(gctx, "creating event failed", err)
		return
	}

	gctx.JSON(http.StatusCreated, event)
}

func (h *handlers) GetEvent(gctx *gin.Context) {
	event, err := h.controller.GetEventById(gctx.Param("id"))
	if err != nil {
		abortWithError(gctx, "event not found", err)
		return
	}

	gctx.JSON(http.StatusOK, event)
}

func (h *handlers) PutEvent(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var input EventInput

	err := gctx.ShouldBindJSON(&input)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", NewValidationError("body", err.Error()))
		return
	}

	patch, err := input.Patch(h.loc)
	if err != nil {
		abortWithError(gctx, "event validation failed", err)
		return
	}

	event, err := h.controller.Update(ctx, gctx.Param("id"), patch)
	if err != nil {
		abortWithError(gctx, "updating event failed", err)
		return
	}

	gctx.JSON(http.StatusOK, event)
}

func (h *handlers) DeleteEvent(gctx *gin.Context) {
	err := h.controller.Delete(gctx.Request.Context(), gctx.Param("id"))
	if err != nil {
		abortWithError(gctx, "deleting event failed", err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
