package eventstore

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"event-planner/core"
)

type Handlers interface {
	ListEvents(gctx *gin.Context)
	PostEvents(gctx *gin.Context)
	GetEvents(gctx *gin.Context)
	PutEvents(gctx *gin.Context)
	DeleteEvents(gctx *gin.Context)
}

type handlers struct {
	repository Repository
}

func NewHandlers(repository Repository) Handlers {
	return &handlers{repository: repository}
}

func Routes(router gin.IRouter, h Handlers) {
	router.GET("/events", h.ListEvents)
	router.POST("/events", h.PostEvents)
	router.GET("/events/:id", h.GetEvents)
	router.PUT("/events/:id", h.PutEvents)
	router.DELETE("/events/:id", h.DeleteEvents)
}

func abortWithError(gctx *gin.Context, message string, err error) {
	ctx := gctx.Request.Context()

	switch {
	case errors.Is(err, core.ErrValidation):
		log.Ctx(ctx).Info().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusBadRequest, core.NewError(message, err))
	case errors.Is(err, core.ErrEventNotFound):
		log.Ctx(ctx).Info().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusNotFound, core.NewError(message, err))
	default:
		log.Ctx(ctx).Error().Err(err).Msg(message)
		gctx.AbortWithStatusJSON(http.StatusInternalServerError, core.NewError(message, err))
	}
}

func (h *handlers) ListEvents(gctx *gin.Context) {
	events, err := h.repository.ListEvents(gctx.Request.Context())
	if err != nil {
		abortWithError(gctx, "listing events failed", err)
		return
	}

	gctx.JSON(http.StatusOK, events)
}

func (h *handlers) PostEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var raw core.RawEvent

	// Accepts the canonical shape as well as the legacy aliases (name, category, datetime...).
	err := gctx.ShouldBindJSON(&raw)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", core.NewValidationError("body", err.Error()))
		return
	}

	event := core.Normalize(raw, time.UTC)

	err = core.ValidateEvent(event)
	if err != nil {
		abortWithError(gctx, "event validation failed", err)
		return
	}

	savedEvent, err := h.repository.SaveEvent(ctx, &event)
	if err != nil {
		abortWithError(gctx, "saving event failed", err)
		return
	}

	gctx.JSON(http.StatusCreated, savedEvent)
}

func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	body, err := io.ReadAll(gctx.Request.Body)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to read request body")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, core.NewError("failed to read request body", err))

		return
	}

	// GET requests carry no body
	if len(body) != 0 {
		log.Ctx(ctx).Error().Msg("request body is not empty")
		gctx.AbortWithStatusJSON(http.StatusBadRequest, core.NewError("request body is not empty"))

		return
	}

	id := gctx.Param("id")
	if len(id) == 0 {
		abortWithError(gctx, "parameter 'id' is required", core.NewValidationError("id", "is required"))
		return
	}

	event, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		abortWithError(gctx, "getting event failed", err)
		return
	}

	gctx.JSON(http.StatusOK, event)
}

// eventPatch is a PUT body. A field that is present, even empty, replaces the stored value.
type eventPatch struct {
	Title       *string `json:"title"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Start       *string `json:"start"`
	Datetime    *string `json:"datetime"`
	End         *string `json:"end"`
	EndDatetime *string `json:"endDatetime"`
	Location    *string `json:"location"`
	Type        *string `json:"type"`
	Category    *string `json:"category"`
}

func firstPresent(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}

	return nil
}

func mergeInstant(field string, value *string, stored time.Time) (time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return stored, nil
	}

	t, err := core.ParseInstant(*value, time.UTC)
	if err != nil {
		return stored, core.NewValidationError(field, err.Error())
	}

	return t, nil
}

// merge overlays the fields present in a PUT body onto the stored event.
func merge(stored core.Event, patch eventPatch) (core.Event, error) {
	if v := firstPresent(patch.Title, patch.Name); v != nil {
		stored.Title = strings.TrimSpace(*v)
	}

	if patch.Description != nil {
		stored.Description = *patch.Description
	}

	if patch.Location != nil {
		stored.Location = *patch.Location
	}

	if v := firstPresent(patch.Type, patch.Category); v != nil {
		stored.Type = core.ParseEventType(*v)
	}

	var err error

	stored.Start, err = mergeInstant("start", firstPresent(patch.Start, patch.Datetime), stored.Start)
	if err != nil {
		return stored, err
	}

	stored.End, err = mergeInstant("end", firstPresent(patch.End, patch.EndDatetime), stored.End)
	if err != nil {
		return stored, err
	}

	return stored, nil
}

func (h *handlers) PutEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	id := gctx.Param("id")

	var patch eventPatch

	err := gctx.ShouldBindJSON(&patch)
	if err != nil {
		abortWithError(gctx, "failed to bind JSON", core.NewValidationError("body", err.Error()))
		return
	}

	stored, err := h.repository.GetEventById(ctx, id)
	if err != nil {
		abortWithError(gctx, "updating event failed", err)
		return
	}

	event, err := merge(*stored, patch)
	if err != nil {
		abortWithError(gctx, "event validation failed", err)
		return
	}

	err = core.ValidateEvent(event)
	if err != nil {
		abortWithError(gctx, "event validation failed", err)
		return
	}

	updated, err := h.repository.UpdateEvent(ctx, &event)
	if err != nil {
		abortWithError(gctx, "updating event failed", err)
		return
	}

	gctx.JSON(http.StatusOK, updated)
}

func (h *handlers) DeleteEvents(gctx *gin.Context) {
	err := h.repository.DeleteEvent(gctx.Request.Context(), gctx.Param("id"))
	if err != nil {
		abortWithError(gctx, "deleting event failed", err)
		return
	}

	gctx.Status(http.StatusNoContent)
}
