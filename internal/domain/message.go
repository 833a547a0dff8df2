// Package domain contains core domain types for the GSC hearing application.
package domain

// Role identifies the author of a transcript message.
type Role string

const (
	// RoleUser marks a message written by the researcher.
	RoleUser Role = "user"
	// RoleAssistant marks a message generated by the hearing assistant.
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry. Messages are immutable once created;
// the ordered sequence of messages forms the transcript and is fed verbatim
// to the completion boundary.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates an assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
