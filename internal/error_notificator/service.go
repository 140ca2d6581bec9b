package error_notificator

import "context"

// Service рассылает ошибку во все подключённые каналы.
type Service struct {
	infras []Notificator
}

func NewService(infras ...Notificator) *Service {
	return &Service{infras: infras}
}

func (s *Service) Notify(ctx context.Context, source string, err error, details string) error {
	var firstErr error
	for _, in := range s.infras {
		if nerr := in.Notify(ctx, source, err, details); nerr != nil && firstErr == nil {
			firstErr = nerr
		}
	}
	return firstErr
}
