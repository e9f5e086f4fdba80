package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

type idempotencyRepository struct {
	db    *sql.DB
	table string
}

// NewIdempotencyRepository создаёт PostgreSQL-реализацию IdempotencyRepository
// поверх таблицы ключей указанной схемы.
func NewIdempotencyRepository(store *Store, schema Schema) domain.IdempotencyRepository {
	return &idempotencyRepository{db: store.DB(), table: schema.idempotencyTable}
}

func (r *idempotencyRepository) Begin(key, requestHash string, expiresAt time.Time) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	now := time.Now().UTC()
	if expiresAt.IsZero() {
		expiresAt = now.Add(defaultIdempotencyTTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	// Просроченная запись перезаписывается, живая остаётся как есть.
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %[1]s (key, request_hash, status, http_status, response_body, expires_at, created_at)
		VALUES ($1, $2, $3, NULL, NULL, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET request_hash = EXCLUDED.request_hash,
		    status = EXCLUDED.status,
		    http_status = NULL,
		    response_body = NULL,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
		WHERE %[1]s.expires_at <= EXCLUDED.created_at
	`, r.table), key, requestHash, string(domain.IdempotencyStatusProcessing), expiresAt, now)
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("begin idempotency record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.IdempotencyRecord{}, fmt.Errorf("idempotency rows affected: %w", err)
	}
	if affected == 0 {
		existing, getErr := r.Get(key)
		if getErr != nil {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyAlreadyExists
		}
		if existing.RequestHash != requestHash {
			return existing, domain.ErrIdempotencyHashMismatch
		}
		return existing, domain.ErrIdempotencyKeyAlreadyExists
	}

	return domain.IdempotencyRecord{
		Key:         key,
		RequestHash: requestHash,
		Status:      domain.IdempotencyStatusProcessing,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}, nil
}

func (r *idempotencyRepository) Get(key string) (domain.IdempotencyRecord, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyRequired
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		record       domain.IdempotencyRecord
		statusRaw    string
		responseBody []byte
		httpStatus   sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT key, request_hash, status, http_status, response_body, expires_at, created_at
		FROM %s
		WHERE key = $1
	`, r.table), key).Scan(
		&record.Key,
		&record.RequestHash,
		&statusRaw,
		&httpStatus,
		&responseBody,
		&record.ExpiresAt,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IdempotencyRecord{}, domain.ErrIdempotencyKeyNotFound
		}
		return domain.IdempotencyRecord{}, fmt.Errorf("get idempotency record: %w", err)
	}

	record.Status = domain.IdempotencyStatus(statusRaw)
	record.ResponseBody = append([]byte(nil), responseBody...)
	if httpStatus.Valid {
		record.HTTPStatus = int(httpStatus.Int64)
	}

	return record, nil
}

func (r *idempotencyRepository) Complete(key string, httpStatus int, responseBody []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET status = $1,
		    http_status = $2,
		    response_body = $3
		WHERE key = $4
	`, r.table), string(domain.IdempotencyStatusCompleted), httpStatus, responseBody, strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("complete idempotency record: %w", err)
	}

	return requireAffected(res, domain.ErrIdempotencyKeyNotFound)
}

func (r *idempotencyRepository) Release(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, r.table), strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("release idempotency record: %w", err)
	}

	return requireAffected(res, domain.ErrIdempotencyKeyNotFound)
}

func (r *idempotencyRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		res sql.Result
		err error
	)

	if limit > 0 {
		res, err = r.db.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM %[1]s
			WHERE key IN (
				SELECT key
				FROM %[1]s
				WHERE expires_at <= $1
				ORDER BY expires_at ASC
				LIMIT $2
			)
		`, r.table), before, limit)
	} else {
		res, err = r.db.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM %s
			WHERE expires_at <= $1
		`, r.table), before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired idempotency records: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("idempotency rows affected: %w", err)
	}

	return int(affected), nil
}

var _ domain.IdempotencyRepository = (*idempotencyRepository)(nil)
