package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// DefaultCalendarID is the authenticated user's primary calendar.
const DefaultCalendarID = "primary"

// DefaultMaxResults bounds ListEvents when no limit is given.
const DefaultMaxResults = 50

const dateLayout = "2006-01-02"

// EventInput represents the input for creating or updating a calendar event.
// On update, zero fields keep their current value.
type EventInput struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	AllDay      bool
	Attendees   []string
	Recurrence  []string // RRULE, EXRULE, RDATE, EXDATE

	// Update only: attendees to add to or remove from the current list.
	AddAttendees    []string
	RemoveAttendees []string

	// SendUpdates is "all", "externalOnly" or "none".
	SendUpdates string
}

// EventSummary represents a simplified calendar event
type EventSummary struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description,omitempty"`
	Location    string         `json:"location,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
	AllDay      bool           `json:"all_day,omitempty"`
	Creator     string         `json:"creator,omitempty"`
	Organizer   string         `json:"organizer,omitempty"`
	Status      string         `json:"status,omitempty"`
	Attendees   []AttendeeInfo `json:"attendees,omitempty"`
	MeetLink    string         `json:"meet_link,omitempty"`
	HTMLLink    string         `json:"html_link,omitempty"`
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string `json:"email"`
	DisplayName    string `json:"display_name,omitempty"`
	ResponseStatus string `json:"response_status,omitempty"` // "needsAction", "declined", "tentative", "accepted"
	Optional       bool   `json:"optional,omitempty"`
	Organizer      bool   `json:"organizer,omitempty"`
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}
	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	summary.Start, summary.AllDay = parseEventTime(event.Start)
	summary.End, _ = parseEventTime(event.End)

	// Creator and organizer
	if event.Creator != nil {
		summary.Creator = event.Creator.Email
	}
	if event.Organizer != nil {
		summary.Organizer = event.Organizer.Email
	}

	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			DisplayName:    att.DisplayName,
			ResponseStatus: att.ResponseStatus,
			Optional:       att.Optional,
			Organizer:      att.Organizer,
		})
	}

	// Google Meet link
	if event.HangoutLink != "" {
		summary.MeetLink = event.HangoutLink
	}
	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				summary.MeetLink = ep.Uri
				break
			}
		}
	}

	return summary
}

// parseEventTime reads a timed or all-day event boundary.
func parseEventTime(dt *calendar.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t, false
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse(dateLayout, dt.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// eventTime builds an event boundary. Timed boundaries default to UTC.
func eventTime(t time.Time, allDay bool, timeZone string) *calendar.EventDateTime {
	if allDay {
		return &calendar.EventDateTime{Date: t.Format(dateLayout)}
	}
	if timeZone == "" {
		timeZone = "UTC"
	}
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: timeZone}
}

func attendeeList(emails []string) []*calendar.EventAttendee {
	attendees := make([]*calendar.EventAttendee, 0, len(emails))
	for _, email := range emails {
		attendees = append(attendees, &calendar.EventAttendee{Email: email})
	}
	return attendees
}
