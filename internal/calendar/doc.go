// Package calendar wraps the Google Calendar API for listing upcoming
// events and creating new ones on a user's primary calendar.
//
// The API interface is the boundary used by the HTTP layer; provider
// failures surface as errors so an empty event list always means "no
// upcoming events", never a swallowed failure.
package calendar
