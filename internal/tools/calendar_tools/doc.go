// Package calendar_tools provides MCP tools for Google Calendar events.
//
//   - calendar_list_events: List or search events in a time range
//   - calendar_create_event: Create an event, optionally all-day or recurring
//   - calendar_update_event: Change the provided fields of an event
//   - calendar_delete_event: Delete an event
//
// Times are RFC 3339, or local date-times (YYYY-MM-DDTHH:MM:SS) interpreted
// in the timeZone argument, which defaults to $AURA_TIMEZONE or UTC.
// In read-only mode only calendar_list_events is registered.
package calendar_tools
