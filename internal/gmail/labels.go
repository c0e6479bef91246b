package gmail

import (
	"context"
	"fmt"
	"sort"

	gmail "google.golang.org/api/gmail/v1"
)

// ListLabels lists all labels of the mailbox, system labels included, sorted by name.
func (c *Client) ListLabels(ctx context.Context) (_ []LabelInfo, err error) {
	ctx, done := c.track(ctx, "list_labels")
	defer func() { done(err) }()

	resp, err := c.svc.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	labels := make([]LabelInfo, 0, len(resp.Labels))
	for _, l := range resp.Labels {
		labels = append(labels, toLabelInfo(l))
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	return labels, nil
}

// CreateLabel creates a user label. Empty visibilities default to show and labelShow.
func (c *Client) CreateLabel(ctx context.Context, name, messageListVisibility, labelListVisibility string) (_ *LabelInfo, err error) {
	ctx, done := c.track(ctx, "create_label")
	defer func() { done(err) }()

	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}
	if messageListVisibility == "" {
		messageListVisibility = MessageListShow
	}
	if labelListVisibility == "" {
		labelListVisibility = LabelListShow
	}
	if err := validateVisibility(messageListVisibility, labelListVisibility); err != nil {
		return nil, err
	}

	created, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		MessageListVisibility: messageListVisibility,
		LabelListVisibility:   labelListVisibility,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	info := toLabelInfo(created)
	return &info, nil
}

// UpdateLabel changes only the fields set in update.
func (c *Client) UpdateLabel(ctx context.Context, labelID string, update LabelUpdate) (_ *LabelInfo, err error) {
	ctx, done := c.track(ctx, "update_label")
	defer func() { done(err) }()

	if labelID == "" {
		return nil, fmt.Errorf("label ID is required")
	}
	if update.IsEmpty() {
		return nil, fmt.Errorf("nothing to update for label %s", labelID)
	}

	patch := &gmail.Label{}
	if update.Name != nil {
		if *update.Name == "" {
			return nil, fmt.Errorf("label name cannot be empty")
		}
		patch.Name = *update.Name
	}
	var msgVis, listVis string
	if update.MessageListVisibility != nil {
		msgVis = *update.MessageListVisibility
		patch.MessageListVisibility = msgVis
	}
	if update.LabelListVisibility != nil {
		listVis = *update.LabelListVisibility
		patch.LabelListVisibility = listVis
	}
	if err := validateVisibility(msgVis, listVis); err != nil {
		return nil, err
	}

	updated, err := c.svc.Labels.Patch("me", labelID, patch).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	info := toLabelInfo(updated)
	return &info, nil
}

// DeleteLabel permanently deletes a user label and removes it from all messages.
func (c *Client) DeleteLabel(ctx context.Context, labelID string) (err error) {
	ctx, done := c.track(ctx, "delete_label")
	defer func() { done(err) }()

	if labelID == "" {
		return fmt.Errorf("label ID is required")
	}
	if err := c.svc.Labels.Delete("me", labelID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete label: %w", err)
	}
	return nil
}

// ModifyMessageLabels adds and removes labels on a message and returns the
// label IDs the message carries afterwards.
func (c *Client) ModifyMessageLabels(ctx context.Context, messageID string, add, remove []string) (_ []string, err error) {
	ctx, done := c.track(ctx, "modify_message_labels")
	defer func() { done(err) }()

	if messageID == "" {
		return nil, fmt.Errorf("message ID is required")
	}
	if len(add) == 0 && len(remove) == 0 {
		return nil, fmt.Errorf("at least one label to add or remove is required")
	}
	if len(add) > MaxLabelsPerModify || len(remove) > MaxLabelsPerModify {
		return nil, fmt.Errorf("at most %d labels can be added or removed at once", MaxLabelsPerModify)
	}

	msg, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels of message %s: %w", messageID, err)
	}
	return msg.LabelIds, nil
}

// validateVisibility checks non-empty visibility values.
func validateVisibility(messageList, labelList string) error {
	switch messageList {
	case "", MessageListShow, MessageListHide:
	default:
		return fmt.Errorf("invalid message list visibility %q: must be %s or %s", messageList, MessageListShow, MessageListHide)
	}
	switch labelList {
	case "", LabelListShow, LabelListShowIfUnread, LabelListHide:
	default:
		return fmt.Errorf("invalid label list visibility %q: must be %s, %s or %s",
			labelList, LabelListShow, LabelListShowIfUnread, LabelListHide)
	}
	return nil
}
