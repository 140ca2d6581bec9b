package error_notificator

import "context"

type Notificator interface {
	// Notify — сообщает об ошибке апстрима (source = transcribe/gpt/speak)
	Notify(ctx context.Context, source string, err error, details string) error
}
