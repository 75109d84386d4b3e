package calendar

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestEventInputValidate(t *testing.T) {
	valid := EventInput{
		Summary:   "Standup",
		StartTime: "2025-09-20T10:00:00",
		EndTime:   "2025-09-20T11:00:00",
	}

	tests := []struct {
		name    string
		mutate  func(*EventInput)
		wantErr string
	}{
		{"valid", func(*EventInput) {}, ""},
		{"missing summary", func(in *EventInput) { in.Summary = "" }, "summary"},
		{"bad start format", func(in *EventInput) { in.StartTime = "2025-09-20 10:00" }, "start_time"},
		{"offset not allowed", func(in *EventInput) { in.StartTime = "2025-09-20T10:00:00Z" }, "start_time"},
		{"bad end format", func(in *EventInput) { in.EndTime = "soon" }, "end_time"},
		{"end before start", func(in *EventInput) { in.EndTime = "2025-09-20T09:00:00" }, "after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(t.Context(),
		&oauth2.Token{AccessToken: "access-token"},
		"America/Vancouver",
		option.WithEndpoint(srv.URL),
	)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(t.Context(), nil, "UTC")
	require.Error(t, err)

	_, err = NewClient(t.Context(), &oauth2.Token{}, "UTC")
	require.Error(t, err)
}

func TestListUpcoming(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"orderBy":      r.URL.Query().Get("orderBy"),
			"singleEvents": r.URL.Query().Get("singleEvents"),
			"timeMin":      r.URL.Query().Get("timeMin"),
			"maxResults":   r.URL.Query().Get("maxResults"),
		}
		_ = json.NewEncoder(w).Encode(gcal.Events{
			Items: []*gcal.Event{
				{
					Id:       "ev1",
					Summary:  "Standup",
					HtmlLink: "https://calendar.google.com/event?eid=ev1",
					Start:    &gcal.EventDateTime{DateTime: "2025-09-20T10:00:00-07:00"},
					End:      &gcal.EventDateTime{DateTime: "2025-09-20T11:00:00-07:00"},
				},
				{
					Id:      "ev2",
					Summary: "Company holiday",
					Start:   &gcal.EventDateTime{Date: "2025-09-22"},
					End:     &gcal.EventDateTime{Date: "2025-09-23"},
				},
			},
		})
	}))

	events, err := client.ListUpcoming(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "Standup", events[0].Summary)
	assert.Equal(t, "2025-09-20T10:00:00-07:00", events[0].Start)
	// All-day events fall back to the date field.
	assert.Equal(t, "2025-09-22", events[1].Start)

	assert.Equal(t, "startTime", gotQuery["orderBy"])
	assert.Equal(t, "true", gotQuery["singleEvents"])
	assert.NotEmpty(t, gotQuery["timeMin"])
	assert.Equal(t, "5", gotQuery["maxResults"])
}

func TestListUpcomingEmpty(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(gcal.Events{})
	}))

	events, err := client.ListUpcoming(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestListUpcomingReportsFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":500}}`, http.StatusInternalServerError)
	}))

	// Provider failures surface as errors, not as an empty list.
	_, err := client.ListUpcoming(t.Context(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list events")
}

func TestCreateEvent(t *testing.T) {
	var gotBody gcal.Event
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(gcal.Event{
			Id:       "created",
			Summary:  gotBody.Summary,
			HtmlLink: "https://calendar.google.com/event?eid=created",
			Start:    gotBody.Start,
			End:      gotBody.End,
		})
	}))

	event, err := client.CreateEvent(t.Context(), EventInput{
		Summary:     "Standup",
		StartTime:   "2025-09-20T10:00:00",
		EndTime:     "2025-09-20T11:00:00",
		Description: "daily sync",
		Location:    "Room 1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://calendar.google.com/event?eid=created", event.HTMLLink)
	assert.Equal(t, "Standup", gotBody.Summary)
	assert.Equal(t, "daily sync", gotBody.Description)
	assert.Equal(t, "Room 1", gotBody.Location)
	assert.Equal(t, "2025-09-20T10:00:00", gotBody.Start.DateTime)
	assert.Equal(t, "America/Vancouver", gotBody.Start.TimeZone)
}

func TestCreateEventRejectsInvalidInput(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	_, err := client.CreateEvent(t.Context(), EventInput{Summary: "x", StartTime: "bad", EndTime: "worse"})
	require.Error(t, err)
	assert.False(t, called, "invalid input must not reach the provider")
}

func TestCreateEventReportsFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))

	_, err := client.CreateEvent(t.Context(), EventInput{
		Summary:   "Standup",
		StartTime: "2025-09-20T10:00:00",
		EndTime:   "2025-09-20T11:00:00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create event")
}
