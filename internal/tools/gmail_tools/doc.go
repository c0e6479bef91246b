// Package gmail_tools provides MCP (Model Context Protocol) tools for managing
// Gmail labels.
//
// Label Management:
//   - gmail_list_labels: List all labels with their IDs and visibility
//   - gmail_create_label: Create a user label
//   - gmail_edit_label: Rename a label or change its visibility
//   - gmail_delete_label: Delete a user label
//   - gmail_modify_message_labels: Add or remove labels on a message
//   - gmail_batch_modify_message_labels: Apply the same change to many messages
//
// In read-only mode only gmail_list_labels is registered.
//
// Every tool takes an optional account argument naming the Google account
// whose stored token is used. Clients are created lazily through the server
// context.
//
// Example usage:
//
//	// Create a label and apply it to a message
//	gmail_create_label(name: "Receipts")
//	gmail_modify_message_labels(messageId: "18c2...", addLabelIds: ["Label_12"], removeLabelIds: ["INBOX"])
package gmail_tools
