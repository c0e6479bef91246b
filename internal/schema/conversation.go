package schema

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a Conversation.
type Message struct {
	Role    Role
	Content string
}

// Conversation is an immutable, ordered list of messages. The zero value is
// an empty conversation.
type Conversation struct {
	messages []Message
}

// NewConversation returns a conversation holding msgs.
func NewConversation(msgs ...Message) Conversation {
	return Conversation{}.With(msgs...)
}

// With returns a new conversation with msgs appended. c is left unchanged.
func (c Conversation) With(msgs ...Message) Conversation {
	next := make([]Message, 0, len(c.messages)+len(msgs))
	next = append(next, c.messages...)
	next = append(next, msgs...)
	return Conversation{messages: next}
}

// Messages returns a copy of the messages in order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c Conversation) Len() int {
	return len(c.messages)
}
