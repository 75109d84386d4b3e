package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// primaryCalendarID addresses the authenticated user's primary calendar.
const primaryCalendarID = "primary"

// API is the calendar boundary consumed by the HTTP layer. Failures are
// reported as errors, never silently collapsed into empty results, so
// callers can tell "no events" apart from "call failed".
type API interface {
	// ListUpcoming returns future events ordered by start time ascending,
	// with recurring events expanded to single instances.
	ListUpcoming(ctx context.Context, maxResults int64) ([]Event, error)

	// CreateEvent creates a new event on the primary calendar and returns
	// it, including the provider's HTML link.
	CreateEvent(ctx context.Context, input EventInput) (*Event, error)
}

// Client wraps the Google Calendar service for a single user's credential.
type Client struct {
	svc      *calendar.Service
	timeZone string
	now      func() time.Time
}

// NewClient creates a Calendar client authenticated by token. The time
// zone is applied to event start and end times, which arrive without an
// offset. Extra options are passed through to the API client, letting
// tests point it at a fake backend.
func NewClient(ctx context.Context, token *oauth2.Token, timeZone string, opts ...option.ClientOption) (*Client, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("a credential with an access token is required")
	}
	if timeZone == "" {
		timeZone = "UTC"
	}

	options := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(token)),
	}, opts...)

	svc, err := calendar.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Client{svc: svc, timeZone: timeZone, now: time.Now}, nil
}

// ListUpcoming lists future events from the primary calendar, earliest
// first.
func (c *Client) ListUpcoming(ctx context.Context, maxResults int64) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	result, err := c.svc.Events.List(primaryCalendarID).
		TimeMin(c.now().UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]Event, 0, len(result.Items))
	for _, item := range result.Items {
		events = append(events, toEvent(item))
	}
	return events, nil
}

// CreateEvent creates a new event on the primary calendar.
func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*Event, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime,
			TimeZone: c.timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime,
			TimeZone: c.timeZone,
		},
	}

	created, err := c.svc.Events.Insert(primaryCalendarID, event).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	out := toEvent(created)
	return &out, nil
}

// toEvent converts an API event. All-day events carry a date instead of a
// dateTime; the start falls back accordingly.
func toEvent(e *calendar.Event) Event {
	event := Event{
		ID:          e.Id,
		Summary:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		HTMLLink:    e.HtmlLink,
	}
	if e.Start != nil {
		event.Start = e.Start.DateTime
		if event.Start == "" {
			event.Start = e.Start.Date
		}
	}
	if e.End != nil {
		event.End = e.End.DateTime
		if event.End == "" {
			event.End = e.End.Date
		}
	}
	return event
}
