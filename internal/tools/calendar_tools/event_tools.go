package calendar_tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/aura-assistant/aura/internal/calendar"
	"github.com/aura-assistant/aura/internal/server"
	"github.com/aura-assistant/aura/internal/tools/common"
)

// defaultListWindow is the range listed when timeMax is omitted.
const defaultListWindow = 7 * 24 * time.Hour

const timeFormatHint = "RFC3339 (e.g., '2025-01-15T14:00:00Z') or local time in timeZone (e.g., '2025-01-15T14:00:00')"

// RegisterEventTools registers event-related tools with the MCP server
func RegisterEventTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	// List events tool (read-only, always available)
	listEventsTool := mcp.NewTool("calendar_list_events",
		mcp.WithDescription("List/search calendar events within a time range"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("timeMin",
			mcp.Description("Start of the range, "+timeFormatHint+". Defaults to now."),
		),
		mcp.WithString("timeMax",
			mcp.Description("End of the range, "+timeFormatHint+". Defaults to one week after timeMin."),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone for local times and the output (e.g., 'America/New_York')"),
		),
		mcp.WithString("query",
			mcp.Description("Optional free text search query to filter events"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description(fmt.Sprintf("Maximum number of events to return (default: %d)", calendar.DefaultMaxResults)),
		),
	)
	s.AddTool(listEventsTool, common.InstrumentedToolHandler("calendar_list_events", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListEvents(ctx, request, sc)
		}))

	if readOnly {
		return nil
	}

	createEventTool := mcp.NewTool("calendar_create_event",
		mcp.WithDescription("Create a new calendar event (supports all-day and recurring events)"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("location",
			mcp.Description("Event location"),
		),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start time, "+timeFormatHint),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("End time, "+timeFormatHint),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g., 'America/New_York'). Defaults to $AURA_TIMEZONE or UTC."),
		),
		mcp.WithString("attendees",
			mcp.Description("Comma-separated list of attendee email addresses"),
		),
		mcp.WithString("recurrence",
			mcp.Description("Recurrence rule (e.g., 'RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR')"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Create as all-day event (ignores time portion of start/end)"),
		),
		mcp.WithString("sendUpdates",
			mcp.Description("Who receives notifications: 'all', 'externalOnly' or 'none'"),
			mcp.Enum("all", "externalOnly", "none"),
		),
	)
	s.AddTool(createEventTool, common.InstrumentedToolHandler("calendar_create_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateEvent(ctx, request, sc)
		}))

	updateEventTool := mcp.NewTool("calendar_update_event",
		mcp.WithDescription("Update an existing calendar event. Only the provided fields change."),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to update"),
		),
		mcp.WithString("summary",
			mcp.Description("New event title/summary"),
		),
		mcp.WithString("description",
			mcp.Description("New event description"),
		),
		mcp.WithString("location",
			mcp.Description("New event location"),
		),
		mcp.WithString("start",
			mcp.Description("New start time, "+timeFormatHint),
		),
		mcp.WithString("end",
			mcp.Description("New end time, "+timeFormatHint),
		),
		mcp.WithString("timeZone",
			mcp.Description("Time zone (e.g., 'America/New_York')"),
		),
		mcp.WithString("attendees",
			mcp.Description("Replace the attendee list with this comma-separated list of email addresses"),
		),
		mcp.WithString("addAttendees",
			mcp.Description("Comma-separated email addresses to invite in addition to the current attendees"),
		),
		mcp.WithString("removeAttendees",
			mcp.Description("Comma-separated email addresses to remove from the attendees"),
		),
		mcp.WithString("recurrence",
			mcp.Description("New recurrence rule"),
		),
		mcp.WithBoolean("allDay",
			mcp.Description("Treat the new start/end as all-day dates"),
		),
		mcp.WithString("sendUpdates",
			mcp.Description("Who receives notifications: 'all', 'externalOnly' or 'none'"),
			mcp.Enum("all", "externalOnly", "none"),
		),
	)
	s.AddTool(updateEventTool, common.InstrumentedToolHandler("calendar_update_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateEvent(ctx, request, sc)
		}))

	deleteEventTool := mcp.NewTool("calendar_delete_event",
		mcp.WithDescription("Delete a calendar event"),
		mcp.WithString("account",
			mcp.Description(accountDescription),
		),
		mcp.WithString("calendarId",
			mcp.Description("Calendar ID (use 'primary' for primary calendar)"),
		),
		mcp.WithString("eventId",
			mcp.Required(),
			mcp.Description("The ID of the event to delete"),
		),
	)
	s.AddTool(deleteEventTool, common.InstrumentedToolHandler("calendar_delete_event", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleDeleteEvent(ctx, request, sc)
		}))

	return nil
}

func calendarIDArg(args map[string]any) string {
	if id := common.StringArg(args, "calendarId"); id != "" {
		return id
	}
	return calendar.DefaultCalendarID
}

// optionalTime parses args[key] in loc. A missing key yields the zero time.
func optionalTime(args map[string]any, key string, loc *time.Location) (time.Time, error) {
	value := strings.TrimSpace(common.StringArg(args, key))
	if value == "" {
		return time.Time{}, nil
	}
	t, err := common.ParseTime(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

func formatEvent(result *strings.Builder, event calendar.EventSummary, loc *time.Location) {
	if event.AllDay {
		fmt.Fprintf(result, "   When: %s (all day)\n", event.Start.Format("2006-01-02"))
	} else {
		fmt.Fprintf(result, "   Start: %s\n", event.Start.In(loc).Format(time.RFC3339))
		fmt.Fprintf(result, "   End: %s\n", event.End.In(loc).Format(time.RFC3339))
	}
	if event.Location != "" {
		fmt.Fprintf(result, "   Location: %s\n", event.Location)
	}
	if event.MeetLink != "" {
		fmt.Fprintf(result, "   Meet: %s\n", event.MeetLink)
	}
	if len(event.Attendees) > 0 {
		emails := make([]string, len(event.Attendees))
		for i, a := range event.Attendees {
			emails[i] = a.Email
		}
		fmt.Fprintf(result, "   Attendees: %s\n", strings.Join(emails, ", "))
	}
}

func handleListEvents(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	loc, err := common.LoadLocation(common.StringArg(args, "timeZone"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeMin, err := optionalTime(args, "timeMin", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeMin.IsZero() {
		timeMin = time.Now().In(loc)
	}
	timeMax, err := optionalTime(args, "timeMax", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if timeMax.IsZero() {
		timeMax = timeMin.Add(defaultListWindow)
	}
	maxResults, err := common.IntArg(args, "maxResults", calendar.DefaultMaxResults)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	events, err := client.ListEvents(ctx, calendarIDArg(args), timeMin, timeMax,
		common.StringArg(args, "query"), int64(maxResults))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
	}
	if len(events) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No events found between %s and %s.",
			timeMin.Format(time.RFC3339), timeMax.Format(time.RFC3339))), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Found %d events:\n\n", len(events))
	for i, event := range events {
		fmt.Fprintf(&result, "%d. %s\n", i+1, event.Summary)
		fmt.Fprintf(&result, "   ID: %s\n", event.ID)
		formatEvent(&result, event, loc)
		result.WriteString("\n")
	}
	return mcp.NewToolResultText(result.String()), nil
}

func handleCreateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	summary, err := common.RequiredStringArg(args, "summary")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	loc, err := common.LoadLocation(common.StringArg(args, "timeZone"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := optionalTime(args, "start", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := optionalTime(args, "end", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if start.IsZero() || end.IsZero() {
		return mcp.NewToolResultError("start and end are required"), nil
	}
	attendees, err := common.StringListArg(args, "attendees")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	input := calendar.EventInput{
		Summary:     summary,
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Start:       start,
		End:         end,
		TimeZone:    loc.String(),
		AllDay:      common.BoolArg(args, "allDay", false),
		Attendees:   attendees,
		SendUpdates: common.StringArg(args, "sendUpdates"),
	}
	if rule := common.StringArg(args, "recurrence"); rule != "" {
		input.Recurrence = []string{rule}
	}

	client, err := getCalendarClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.CreateEvent(ctx, calendarIDArg(args), input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Event created successfully!\n\n%s\n   ID: %s\n", event.Summary, event.ID)
	formatEvent(&result, *event, loc)
	if event.HTMLLink != "" {
		fmt.Fprintf(&result, "   Link: %s\n", event.HTMLLink)
	}
	return mcp.NewToolResultText(result.String()), nil
}

func handleUpdateEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequiredStringArg(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	timeZone := common.StringArg(args, "timeZone")
	loc, err := common.LoadLocation(timeZone)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	start, err := optionalTime(args, "start", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := optionalTime(args, "end", loc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return mcp.NewToolResultError("end must not be before start"), nil
	}

	input := calendar.EventInput{
		Summary:     common.StringArg(args, "summary"),
		Description: common.StringArg(args, "description"),
		Location:    common.StringArg(args, "location"),
		Start:       start,
		End:         end,
		TimeZone:    timeZone,
		AllDay:      common.BoolArg(args, "allDay", false),
		SendUpdates: common.StringArg(args, "sendUpdates"),
	}
	if input.TimeZone == "" && (!start.IsZero() || !end.IsZero()) {
		input.TimeZone = loc.String()
	}
	if rule := common.StringArg(args, "recurrence"); rule != "" {
		input.Recurrence = []string{rule}
	}
	for key, dst := range map[string]*[]string{
		"attendees":       &input.Attendees,
		"addAttendees":    &input.AddAttendees,
		"removeAttendees": &input.RemoveAttendees,
	} {
		list, err := common.StringListArg(args, key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		*dst = list
	}

	client, err := getCalendarClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	event, err := client.UpdateEvent(ctx, calendarIDArg(args), eventID, input)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update event: %v", err)), nil
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Event updated successfully!\n\n%s\n   ID: %s\n", event.Summary, event.ID)
	formatEvent(&result, *event, loc)
	return mcp.NewToolResultText(result.String()), nil
}

func handleDeleteEvent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	eventID, err := common.RequiredStringArg(args, "eventId")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := getCalendarClient(args, sc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := client.DeleteEvent(ctx, calendarIDArg(args), eventID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete event: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Event %s deleted successfully", eventID)), nil
}
