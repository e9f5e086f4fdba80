package domain

import (
	"errors"
	"time"
)

// IdempotencyStatus описывает жизненный цикл ключа идемпотентности.
type IdempotencyStatus string

const (
	// IdempotencyStatusProcessing: первый запрос с ключом ещё выполняется.
	IdempotencyStatusProcessing IdempotencyStatus = "processing"
	// IdempotencyStatusCompleted: ответ сохранён и будет отдан повторно.
	IdempotencyStatusCompleted IdempotencyStatus = "completed"
)

var (
	ErrIdempotencyKeyRequired      = errors.New("idempotency key is required")
	ErrIdempotencyKeyNotFound      = errors.New("idempotency key not found")
	ErrIdempotencyKeyAlreadyExists = errors.New("idempotency key already exists")
	ErrIdempotencyHashMismatch     = errors.New("idempotency key reused with different payload")
)

// IdempotencyRecord хранит результат первого запроса с данным ключом.
type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	Status       IdempotencyStatus
	HTTPStatus   int
	ResponseBody []byte
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Replayable сообщает, можно ли отдать сохранённый ответ повторно.
func (r IdempotencyRecord) Replayable() bool {
	return r.Status == IdempotencyStatusCompleted && r.HTTPStatus > 0
}

// Expired сообщает, истёк ли срок хранения записи к моменту now.
func (r IdempotencyRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
