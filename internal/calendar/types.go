package calendar

import (
	"fmt"
	"time"
)

// LocalTimeLayout is the expected format for event start and end times:
// local ISO-8601 without an explicit offset. The time zone is supplied
// separately when the event is created.
const LocalTimeLayout = "2006-01-02T15:04:05"

// Event is the subset of a calendar event surfaced by this service.
type Event struct {
	ID          string `json:"id,omitempty"`
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	HTMLLink    string `json:"html_link,omitempty"`
}

// EventInput describes a new event to create on the user's primary
// calendar. StartTime and EndTime use LocalTimeLayout.
type EventInput struct {
	Summary     string
	StartTime   string
	EndTime     string
	Description string
	Location    string
}

// Validate checks required fields and time formats before any network call.
func (in EventInput) Validate() error {
	if in.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	start, err := time.Parse(LocalTimeLayout, in.StartTime)
	if err != nil {
		return fmt.Errorf("start_time must match %s: %w", LocalTimeLayout, err)
	}
	end, err := time.Parse(LocalTimeLayout, in.EndTime)
	if err != nil {
		return fmt.Errorf("end_time must match %s: %w", LocalTimeLayout, err)
	}
	if !end.After(start) {
		return fmt.Errorf("end_time must be after start_time")
	}
	return nil
}
