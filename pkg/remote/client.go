package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"event-planner/core"
)

var _ core.RemoteStore = (*Client)(nil)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client talks to the remote /events collection.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		tracer:  otel.GetTracerProvider().Tracer("event-planner/remote"),
	}
}

func (c *Client) eventsURL(id string) string {
	if id == "" {
		return c.baseURL + "/events"
	}

	return c.baseURL + "/events/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method string, target string, body any, out any) error {
	op := method + " " + target

	ctx, span := c.tracer.Start(ctx, "remote."+method, trace.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", target),
	))
	defer span.End()

	err := c.roundTrip(ctx, method, target, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return core.NewTransportError(op, err)
	}

	return nil
}

func (c *Client) roundTrip(ctx context.Context, method string, target string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}

	return nil
}

func (c *Client) ListEvents(ctx context.Context) ([]core.RawEvent, error) {
	var raws []core.RawEvent

	err := c.do(ctx, http.MethodGet, c.eventsURL(""), nil, &raws)
	if err != nil {
		return nil, err
	}

	return raws, nil
}

// CreateEvent sends the id assigned locally so later updates and deletes target the same record.
func (c *Client) CreateEvent(ctx context.Context, event core.Event) error {
	return c.do(ctx, http.MethodPost, c.eventsURL(""), event.Raw(), nil)
}

// updateBody always carries the editable fields, so clearing one reaches the remote store.
type updateBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Location    string `json:"location"`
	Type        string `json:"type"`
}

func (c *Client) UpdateEvent(ctx context.Context, event core.Event) error {
	raw := event.Raw()

	return c.do(ctx, http.MethodPut, c.eventsURL(event.Id), updateBody{
		Title:       raw.Title,
		Description: raw.Description,
		Start:       raw.Start,
		End:         raw.End,
		Location:    raw.Location,
		Type:        raw.Type,
	}, nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.eventsURL(id), nil, nil)
}
