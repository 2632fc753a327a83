package idempotency

import "context"

// Record — сохранённый результат операции, привязанный к идемпотентному ключу.
type Record struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// Store хранит результаты операций по идемпотентному ключу.
// Put возвращает false, если ключ уже занят другим результатом.
type Store interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Put(ctx context.Context, key string, record Record) (bool, error)
}
