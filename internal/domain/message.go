package domain

import "strings"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message — одна реплика диалога, формат совпадает с /api/gpt.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ValidateMessages проверяет запрос к /api/gpt до похода в апстрим.
func ValidateMessages(messages []Message) error {
	if len(messages) == 0 {
		return ErrInvalidRequest
	}
	for _, m := range messages {
		if !m.Role.Valid() {
			return InvalidRequestf("unknown role %q", m.Role)
		}
	}
	return nil
}

// CloneMessages returns a copy that callers may append to freely.
func CloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
