package google

import (
	calendar "google.golang.org/api/calendar/v3"
	gmail "google.golang.org/api/gmail/v1"
)

// DefaultOAuthScopes are the scopes a stored token must carry for the
// Gmail label and Calendar event tools.
var DefaultOAuthScopes = []string{
	gmail.GmailLabelsScope,
	gmail.GmailModifyScope,
	calendar.CalendarEventsScope,
}
