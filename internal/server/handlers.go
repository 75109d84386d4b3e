package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flowpilot/flowpilot/internal/auth"
	"github.com/flowpilot/flowpilot/internal/calendar"
	"github.com/flowpilot/flowpilot/internal/logging"
)

// errorResponse is the JSON body for every failed request.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// messageResponse is the JSON body for message-only successes.
type messageResponse struct {
	Message   string `json:"message"`
	EventLink string `json:"event_link,omitempty"`
}

// eventsResponse is the JSON body of GET /events.
type eventsResponse struct {
	Events []calendar.Event `json:"events"`
}

// listEventsLimit is how many upcoming events GET /events returns.
const listEventsLimit = 5

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a lifecycle error onto its HTTP status and code.
// Errors outside the taxonomy become an opaque 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := auth.StatusOf(err)
	code := auth.CodeOf(err)
	message := "internal server error"

	var lifecycleErr *auth.Error
	if errors.As(err, &lifecycleErr) {
		message = lifecycleErr.Description
	} else {
		code = "internal_error"
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			logging.Operation(r.Method+" "+r.URL.Path),
			logging.Err(err),
		)
	} else {
		s.logger.Warn("request rejected",
			logging.Operation(r.Method+" "+r.URL.Path),
			logging.Err(err),
		)
	}

	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// handleAuthInit starts a login by redirecting the browser to the
// provider's consent screen.
func (s *Server) handleAuthInit(w http.ResponseWriter, r *http.Request) {
	authURL, err := s.auth.BeginLogin(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleAuthCallback completes a login: code-for-token exchange,
// persistence, then a redirect to the landing page.
func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if errCode := query.Get("error"); errCode != "" {
		s.metrics.ObserveLogin("denied")
		s.writeError(w, r, auth.ErrStateMismatch("provider returned error: "+errCode))
		return
	}

	code := query.Get("code")
	if code == "" {
		s.metrics.ObserveLogin("failure")
		s.writeError(w, r, auth.ErrStateMismatch("missing authorization code"))
		return
	}

	if _, err := s.auth.CompleteLogin(w, r, code, query.Get("state")); err != nil {
		s.metrics.ObserveLogin("failure")
		s.writeError(w, r, err)
		return
	}

	s.metrics.ObserveLogin("success")
	http.Redirect(w, r, s.cfg.LandingURL, http.StatusFound)
}

// handleLogout clears the session. Stored credentials are kept.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(w, r); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out."})
}

// handleListEvents returns the next upcoming events on the user's
// primary calendar.
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	cred, err := s.auth.ResolveCredentials(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	client, err := s.newCalendar(r.Context(), cred.Token, s.cfg.EventTimeZone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	events, err := client.ListUpcoming(r.Context(), listEventsLimit)
	if err != nil {
		s.logger.Error("calendar list failed", logging.UserHash(cred.Email), logging.Err(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "calendar_unavailable",
			Message: "failed to list upcoming events",
		})
		return
	}

	if len(events) == 0 {
		writeJSON(w, http.StatusOK, messageResponse{Message: "No upcoming events found."})
		return
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: events})
}

// createEventRequest is the JSON body of POST /events. Times are local
// ISO-8601 without an offset; the configured time zone is applied.
type createEventRequest struct {
	Summary     string `json:"summary"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

// handleCreateEvent inserts an event into the user's primary calendar.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	cred, err := s.auth.ResolveCredentials(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "request body must be valid JSON",
		})
		return
	}

	input := calendar.EventInput{
		Summary:     req.Summary,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Description: req.Description,
		Location:    req.Location,
	}
	if err := input.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	client, err := s.newCalendar(r.Context(), cred.Token, s.cfg.EventTimeZone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	event, err := client.CreateEvent(r.Context(), input)
	if err != nil {
		s.logger.Error("calendar create failed", logging.UserHash(cred.Email), logging.Err(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:   "calendar_unavailable",
			Message: "failed to create event",
		})
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message:   "Event created successfully.",
		EventLink: event.HTMLLink,
	})
}
