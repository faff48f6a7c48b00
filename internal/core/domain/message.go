package domain

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ChatMessage is one transcript entry. IDs come from a session-local
// monotonic counter, so two messages created in the same instant still have
// distinct ids and a stable relative order.
type ChatMessage struct {
	ID      int64       `json:"id"`
	Role    MessageRole `json:"role"`
	Text    string      `json:"text"`
	Sources []string    `json:"sources,omitempty"`
}

// Answer is the remote service's response to a question.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []string `json:"sources"`
}
