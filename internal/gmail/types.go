package gmail

import (
	gmail "google.golang.org/api/gmail/v1"
)

// MaxLabelsPerModify is the Gmail limit on label IDs added or removed per request.
const MaxLabelsPerModify = 100

// Visibility values accepted by Gmail.
const (
	MessageListShow = "show"
	MessageListHide = "hide"

	LabelListShow         = "labelShow"
	LabelListShowIfUnread = "labelShowIfUnread"
	LabelListHide         = "labelHide"
)

// LabelInfo is a simplified Gmail label.
type LabelInfo struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Type                  string `json:"type,omitempty"`
	MessageListVisibility string `json:"message_list_visibility,omitempty"`
	LabelListVisibility   string `json:"label_list_visibility,omitempty"`
	MessagesTotal         int64  `json:"messages_total,omitempty"`
	MessagesUnread        int64  `json:"messages_unread,omitempty"`
}

// LabelUpdate lists the label fields to change. Nil fields are left as they are.
type LabelUpdate struct {
	Name                  *string
	MessageListVisibility *string
	LabelListVisibility   *string
}

// IsEmpty reports whether the update changes nothing.
func (u LabelUpdate) IsEmpty() bool {
	return u.Name == nil && u.MessageListVisibility == nil && u.LabelListVisibility == nil
}

func toLabelInfo(l *gmail.Label) LabelInfo {
	if l == nil {
		return LabelInfo{}
	}
	return LabelInfo{
		ID:                    l.Id,
		Name:                  l.Name,
		Type:                  l.Type,
		MessageListVisibility: l.MessageListVisibility,
		LabelListVisibility:   l.LabelListVisibility,
		MessagesTotal:         l.MessagesTotal,
		MessagesUnread:        l.MessagesUnread,
	}
}
