package calendar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/aura-assistant/aura/internal/google"
	"github.com/aura-assistant/aura/internal/instrumentation"
)

// Client wraps the Google Calendar service
type Client struct {
	svc     *calendar.Service
	account string // The account this client is associated with
	metrics *instrumentation.Metrics
}

// NewClient creates a Calendar client from explicit API options.
func NewClient(ctx context.Context, account string, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}
	return &Client{svc: svc, account: account}, nil
}

// NewClientForAccount creates a Calendar client authorized with the stored token of account.
func NewClientForAccount(ctx context.Context, config google.Config, provider google.TokenProvider, account string) (*Client, error) {
	opts, err := google.ClientOptions(ctx, config, provider, account)
	if err != nil {
		return nil, err
	}
	return NewClient(ctx, account, opts...)
}

// Account returns the account name this client is associated with
func (c *Client) Account() string {
	return c.account
}

// SetMetrics enables Google API metrics for the client.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

func (c *Client) track(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := instrumentation.StartClientSpan(ctx, instrumentation.ServiceCalendar, op)
	start := time.Now()
	return ctx, func(err error) {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
		}
		c.metrics.RecordGoogleAPIOperation(ctx, instrumentation.ServiceCalendar, op, status, time.Since(start))
		instrumentation.EndSpan(span, err)
	}
}

// ListEvents lists single events of a calendar that overlap [timeMin, timeMax),
// ordered by start time. maxResults <= 0 means DefaultMaxResults.
func (c *Client) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, query string, maxResults int64) (_ []EventSummary, err error) {
	ctx, done := c.track(ctx, "list_events")
	defer func() { done(err) }()

	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if !timeMax.After(timeMin) {
		return nil, fmt.Errorf("time range end %s must be after start %s",
			timeMax.Format(time.RFC3339), timeMin.Format(time.RFC3339))
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	call := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxResults)
	if query != "" {
		call = call.Q(query)
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	summaries := make([]EventSummary, 0, len(events.Items))
	for _, event := range events.Items {
		summaries = append(summaries, toEventSummary(event))
	}
	return summaries, nil
}

// CreateEvent creates a new calendar event
func (c *Client) CreateEvent(ctx context.Context, calendarID string, input EventInput) (_ *EventSummary, err error) {
	ctx, done := c.track(ctx, "create_event")
	defer func() { done(err) }()

	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if input.Summary == "" {
		return nil, fmt.Errorf("event summary is required")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return nil, fmt.Errorf("event start and end are required")
	}
	if input.End.Before(input.Start) {
		return nil, fmt.Errorf("event end must not be before its start")
	}

	event := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start:       eventTime(input.Start, input.AllDay, input.TimeZone),
		End:         eventTime(input.End, input.AllDay, input.TimeZone),
		Recurrence:  input.Recurrence,
	}
	if len(input.Attendees) > 0 {
		event.Attendees = attendeeList(input.Attendees)
	}

	call := c.svc.Events.Insert(calendarID, event)
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}
	created, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}

// UpdateEvent applies the non-zero fields of input to an existing event.
func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, input EventInput) (_ *EventSummary, err error) {
	ctx, done := c.track(ctx, "update_event")
	defer func() { done(err) }()

	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if eventID == "" {
		return nil, fmt.Errorf("event ID is required")
	}

	existing, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get existing event: %w", err)
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if !input.Start.IsZero() {
		existing.Start = eventTime(input.Start, input.AllDay, input.TimeZone)
	}
	if !input.End.IsZero() {
		existing.End = eventTime(input.End, input.AllDay, input.TimeZone)
	}
	if len(input.Recurrence) > 0 {
		existing.Recurrence = input.Recurrence
	}
	if len(input.Attendees) > 0 {
		existing.Attendees = attendeeList(input.Attendees)
	}
	existing.Attendees = mergeAttendees(existing.Attendees, input.AddAttendees, input.RemoveAttendees)

	call := c.svc.Events.Update(calendarID, eventID, existing)
	if input.SendUpdates != "" {
		call = call.SendUpdates(input.SendUpdates)
	}
	updated, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	summary := toEventSummary(updated)
	return &summary, nil
}

// DeleteEvent deletes a calendar event
func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) (err error) {
	ctx, done := c.track(ctx, "delete_event")
	defer func() { done(err) }()

	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	if eventID == "" {
		return fmt.Errorf("event ID is required")
	}
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// mergeAttendees adds and removes attendees by case-insensitive email,
// keeping the response state of attendees that stay.
func mergeAttendees(current []*calendar.EventAttendee, add, remove []string) []*calendar.EventAttendee {
	if len(add) == 0 && len(remove) == 0 {
		return current
	}

	drop := make(map[string]bool, len(remove))
	for _, email := range remove {
		drop[strings.ToLower(email)] = true
	}

	out := make([]*calendar.EventAttendee, 0, len(current)+len(add))
	seen := make(map[string]bool, len(current)+len(add))
	for _, a := range current {
		key := strings.ToLower(a.Email)
		if drop[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}

	extra := make([]string, 0, len(add))
	for _, email := range add {
		key := strings.ToLower(email)
		if drop[key] || seen[key] {
			continue
		}
		seen[key] = true
		extra = append(extra, email)
	}
	sort.Strings(extra)
	return append(out, attendeeList(extra)...)
}
