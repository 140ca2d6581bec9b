package error_notificator

import (
	"context"
	"log"
	"time"
)

// AlertTimeout — сколько максимум живёт отправка одного алерта.
const AlertTimeout = 10 * time.Second

// Dispatch шлёт алерт в фоне, ответ клиенту его не ждёт.
// Отмена запроса алерт не обрывает, но время отправки ограничено AlertTimeout.
func Dispatch(ctx context.Context, n Notificator, source string, err error, details string) {
	if n == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), AlertTimeout)
	go func() {
		defer cancel()
		if nerr := n.Notify(alertCtx, source, err, details); nerr != nil {
			log.Printf("[error_notificator] %s alert failed: %v", source, nerr)
		}
	}()
}
