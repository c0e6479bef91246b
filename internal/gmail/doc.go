// Package gmail manages Gmail labels and the labels applied to messages.
//
// The client covers the label surface of the Gmail API: listing, creating,
// partially updating and deleting user labels, and adding or removing labels
// on a single message. Calls are traced and recorded as Google API metrics.
//
// Example usage:
//
//	client, err := gmail.NewClientForAccount(ctx, google.DefaultConfig(), provider, "default")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	labels, err := client.ListLabels(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
package gmail
