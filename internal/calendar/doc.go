// Package calendar provides a client for Google Calendar events.
//
// It lists events in a time range and creates, partially updates and deletes
// single events. Calls are traced and recorded as Google API metrics.
//
// Example usage:
//
//	client, err := calendar.NewClientForAccount(ctx, google.DefaultConfig(), provider, "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// List events of the coming week
//	events, err := client.ListEvents(ctx, "primary", time.Now(), time.Now().AddDate(0, 0, 7), "", 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
package calendar
