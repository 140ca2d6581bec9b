package conversation

import (
	"fmt"

	"github.com/Vovarama1992/speak_genie/internal/domain"
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// служебные токены на каждое сообщение в chat-формате
const perMessageTokens = 4

type TokenCounter func(text string) int

// NewTiktokenCounter counts with cl100k_base. The encoding is fetched on first
// use, so callers should fall back to ApproxTokens when it is unavailable.
func NewTiktokenCounter() (TokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("tokenizer init: %w", err)
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}

// ApproxTokens — грубая оценка ~4 символа на токен.
func ApproxTokens(text string) int {
	return (len([]rune(text)) + 3) / 4
}

// HistoryFitter trims the oldest turns so a completion request stays under a
// token budget. The system prompt and the newest message are always kept.
type HistoryFitter struct {
	Budget int
	Count  TokenCounter
}

func (f *HistoryFitter) cost(m domain.Message) int {
	return f.Count(m.Content) + perMessageTokens
}

// Fit returns a new slice; history is not modified.
func (f *HistoryFitter) Fit(system *domain.Message, history []domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(history)+1)
	if system != nil {
		out = append(out, *system)
	}
	if len(history) == 0 {
		return out
	}
	if f == nil || f.Budget <= 0 || f.Count == nil {
		return append(out, history...)
	}

	used := 0
	if system != nil {
		used = f.cost(*system)
	}

	first := len(history) - 1
	used += f.cost(history[first])
	for i := first - 1; i >= 0; i-- {
		c := f.cost(history[i])
		if used+c > f.Budget {
			break
		}
		used += c
		first = i
	}

	return append(out, history[first:]...)
}
