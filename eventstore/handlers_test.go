package eventstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"event-planner/core"
)

// MockRepository is a mock of the Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListEvents(ctx context.Context) ([]core.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]core.Event), args.Error(1)
}

func (m *MockRepository) SaveEvent(ctx context.Context, event *core.Event) (*core.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*core.Event), args.Error(1)
}

func (m *MockRepository) GetEventById(ctx context.Context, id string) (*core.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*core.Event), args.Error(1)
}

func (m *MockRepository) UpdateEvent(ctx context.Context, event *core.Event) (*core.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*core.Event), args.Error(1)
}

func (m *MockRepository) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestHandlers_ListEvents(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockReturn     []core.Event
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "success",
			mockReturn:     []core.Event{{Id: "a", Title: "First"}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "repository error",
			mockErr:        errors.New("db error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockRepo := new(MockRepository)
			if tt.mockErr != nil {
				mockRepo.On("ListEvents", mock.Anything).Return(nil, tt.mockErr)
			} else {
				mockRepo.On("ListEvents", mock.Anything).Return(tt.mockReturn, nil)
			}

			h := NewHandlers(mockRepo)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/events", nil)

			h.ListEvents(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHandlers_PostEvents(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name           string
		body           any
		mockCalled     bool
		mockReturn     *core.Event
		mockErr        error
		expectedStatus int
	}{
		{
			name: "success",
			body: core.RawEvent{
				Id:    "event_1",
				Title: "Test Event",
				Start: now.Format(time.RFC3339),
				End:   now.Add(time.Hour).Format(time.RFC3339),
			},
			mockCalled: true,
			mockReturn: &core.Event{
				Id:    "event_1",
				Title: "Test Event",
				Start: now,
				End:   now.Add(time.Hour),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "legacy aliases",
			body: map[string]string{
				"name":     "Legacy",
				"datetime": now.Format(time.RFC3339),
				"category": "task",
			},
			mockCalled:     true,
			mockReturn:     &core.Event{Id: "event_2", Title: "Legacy", Type: core.EventTypeTask},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "validation failure",
			body:           core.RawEvent{Title: ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "repository failure",
			body:           core.RawEvent{Title: "Test Event"},
			mockCalled:     true,
			mockErr:        errors.New("db error"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid json",
			body:           "invalid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockRepo := new(MockRepository)
			if tt.mockCalled {
				mockRepo.On("SaveEvent", mock.Anything, mock.Anything).Return(tt.mockReturn, tt.mockErr)
			}

			h := NewHandlers(mockRepo)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			var jsonBody []byte
			if s, ok := tt.body.(string); ok {
				jsonBody = []byte(s)
			} else {
				jsonBody, _ = json.Marshal(tt.body)
			}

			c.Request = httptest.NewRequest(http.MethodPost, "/events", bytes.NewBuffer(jsonBody))

			h.PostEvents(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHandlers_PostEvents_Normalizes(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockRepository)
	mockRepo.On("SaveEvent", mock.Anything, mock.MatchedBy(func(e *core.Event) bool {
		return e.Title == "Legacy" &&
			e.Type == core.EventTypeTask &&
			e.End.Sub(e.Start) == core.DefaultEventDuration
	})).Return(&core.Event{Id: "x"}, nil)

	h := NewHandlers(mockRepo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/events",
		bytes.NewBufferString(`{"name":" Legacy ","datetime":"2024-03-06T09:00:00.000Z","category":"task"}`))

	h.PostEvents(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)
}

type errReader struct{}

func (e *errReader) Read(p []byte) (int, error) {
	return 0, errors.New("read error")
}

func TestHandlers_GetEvents(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		idParam        string
		reqBody        any
		mockCalled     bool
		mockReturn     *core.Event
		mockErr        error
		expectedStatus int
	}{
		{
			name:           "success",
			idParam:        "123",
			reqBody:        "",
			mockCalled:     true,
			mockReturn:     &core.Event{Id: "123", Title: "Event"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			idParam:        "456",
			reqBody:        "",
			mockCalled:     true,
			mockErr:        core.NewNotFoundError("456"),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "non empty body",
			idParam:        "123",
			reqBody:        "something",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing id",
			idParam:        "",
			reqBody:        "",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "repository error",
			idParam:        "123",
			reqBody:        "",
			mockCalled:     true,
			mockErr:        errors.New("db error"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "read body error",
			idParam:        "123",
			reqBody:        &errReader{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockRepo := new(MockRepository)
			if tt.mockCalled {
				mockRepo.On("GetEventById", mock.Anything, tt.idParam).Return(tt.mockReturn, tt.mockErr)
			}

			h := NewHandlers(mockRepo)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = []gin.Param{{Key: "id", Value: tt.idParam}}

			var reader io.Reader
			if r, ok := tt.reqBody.(io.Reader); ok {
				reader = r
			} else if s, ok := tt.reqBody.(string); ok {
				reader = bytes.NewBufferString(s)
			} else {
				reader = bytes.NewBufferString("")
			}

			c.Request = httptest.NewRequest(http.MethodGet, "/events/"+tt.idParam, reader)

			h.GetEvents(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHandlers_PutEvents(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	start := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	stored := &core.Event{
		Id:          "event_1",
		Title:       "Standup",
		Description: "Daily",
		Start:       start,
		End:         start.Add(30 * time.Minute),
		Type:        core.EventTypeMeeting,
		CreatedAt:   start.Add(-time.Hour),
	}

	t.Run("partial body keeps stored fields", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockRepository)
		mockRepo.On("GetEventById", mock.Anything, "event_1").Return(stored, nil)
		mockRepo.On("UpdateEvent", mock.Anything, mock.MatchedBy(func(e *core.Event) bool {
			return e.Title == "Retro" &&
				e.Description == "Daily" &&
				e.Start.Equal(start) &&
				e.End.Equal(start.Add(30*time.Minute)) &&
				e.CreatedAt.Equal(stored.CreatedAt)
		})).Return(stored, nil)

		h := NewHandlers(mockRepo)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "event_1"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/events/event_1", bytes.NewBufferString(`{"title":"Retro"}`))

		h.PutEvents(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("present empty fields clear stored values", func(t *testing.T) {
		t.Parallel()

		withLocation := *stored
		withLocation.Location = "Room 2"

		mockRepo := new(MockRepository)
		mockRepo.On("GetEventById", mock.Anything, "event_1").Return(&withLocation, nil)
		mockRepo.On("UpdateEvent", mock.Anything, mock.MatchedBy(func(e *core.Event) bool {
			return e.Title == "Standup" &&
				e.Description == "" &&
				e.Location == "" &&
				e.Start.Equal(start)
		})).Return(stored, nil)

		h := NewHandlers(mockRepo)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "event_1"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/events/event_1",
			bytes.NewBufferString(`{"title":"Standup","description":"","location":"","start":"2024-03-06T09:00:00Z"}`))

		h.PutEvents(c)

		assert.Equal(t, http.StatusOK, w.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("unparseable start", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockRepository)
		mockRepo.On("GetEventById", mock.Anything, "event_1").Return(stored, nil)

		h := NewHandlers(mockRepo)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "event_1"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/events/event_1", bytes.NewBufferString(`{"start":"soon"}`))

		h.PutEvents(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything)
	})

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockRepository)
		mockRepo.On("GetEventById", mock.Anything, "missing").Return(nil, core.NewNotFoundError("missing"))

		h := NewHandlers(mockRepo)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "missing"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/events/missing", bytes.NewBufferString(`{"title":"x"}`))

		h.PutEvents(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockRepo.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		mockRepo := new(MockRepository)

		h := NewHandlers(mockRepo)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = []gin.Param{{Key: "id", Value: "event_1"}}
		c.Request = httptest.NewRequest(http.MethodPut, "/events/event_1", bytes.NewBufferString("invalid"))

		h.PutEvents(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandlers_DeleteEvents(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		name           string
		mockErr        error
		expectedStatus int
	}{
		{"success", nil, http.StatusNoContent},
		{"not found", core.NewNotFoundError("event_1"), http.StatusNotFound},
		{"repository error", errors.New("db error"), http.StatusInternalServerError},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockRepo := new(MockRepository)
			mockRepo.On("DeleteEvent", mock.Anything, "event_1").Return(tc.mockErr)

			router := gin.New()
			Routes(router, NewHandlers(mockRepo))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/events/event_1", nil))

			require.Equal(t, tc.expectedStatus, w.Code)
			mockRepo.AssertExpectations(t)
		})
	}
}
