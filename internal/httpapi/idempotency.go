package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shoplab/internal/domain"
	"github.com/vladislavdragonenkov/shoplab/internal/service/idempotency"
)

const (
	// HeaderIdempotencyKey — ключ идемпотентности POST-запроса.
	HeaderIdempotencyKey = "Idempotency-Key"
	// HeaderIdempotentReplay выставляется на повторно отданном ответе.
	HeaderIdempotentReplay = "Idempotent-Replayed"

	// DefaultIdempotencyTTL — срок хранения ответа по ключу.
	DefaultIdempotencyTTL = 24 * time.Hour

	maxBodyBytes = 1 << 20
)

// Idempotency отдаёт сохранённый ответ на повторный POST с тем же ключом.
type Idempotency struct {
	repo   domain.IdempotencyRepository
	ttl    time.Duration
	now    func() time.Time
	logger *log.Entry
}

// NewIdempotency создаёт middleware поверх repo. ttl <= 0 заменяется на DefaultIdempotencyTTL.
func NewIdempotency(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) *Idempotency {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if logger == nil {
		logger = log.WithField("component", "idempotency")
	}
	return &Idempotency{repo: repo, ttl: ttl, now: time.Now, logger: logger}
}

type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *captureWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Wrap применяет ключ идемпотентности к next. Запросы без ключа проходят как есть.
func (m *Idempotency) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderIdempotencyKey)
		if key == "" || r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			WriteJSONError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		hash := idempotency.RequestHash(r.Method, r.URL.Path, body)
		logger := m.logger.WithFields(log.Fields{
			"idempotency_key": key,
			"request_id":      RequestIDFromContext(r.Context()),
		})

		record, err := m.repo.Begin(key, hash, m.now().Add(m.ttl))
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrIdempotencyKeyRequired):
			WriteJSONError(w, http.StatusBadRequest, domain.ErrIdempotencyKeyRequired.Error())
			return
		case errors.Is(err, domain.ErrIdempotencyHashMismatch):
			WriteJSONError(w, http.StatusUnprocessableEntity, domain.ErrIdempotencyHashMismatch.Error())
			return
		case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
			if record.Replayable() {
				logger.Debug("replaying stored response")
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set(HeaderIdempotentReplay, "true")
				w.WriteHeader(record.HTTPStatus)
				_, _ = w.Write(record.ResponseBody)
				return
			}
			WriteJSONError(w, http.StatusConflict, "request with this idempotency key is still processing")
			return
		default:
			logger.WithError(err).Error("failed to reserve idempotency key")
			WriteJSONError(w, http.StatusInternalServerError, internalErrorMessage)
			return
		}

		cw := &captureWriter{ResponseWriter: w}
		completed := false
		defer func() {
			if !completed {
				if releaseErr := m.repo.Release(key); releaseErr != nil {
					logger.WithError(releaseErr).Warn("failed to release idempotency key")
				}
			}
		}()

		next.ServeHTTP(cw, r)

		if cw.status == 0 || cw.status >= http.StatusInternalServerError {
			return
		}
		if err := m.repo.Complete(key, cw.status, cw.body.Bytes()); err != nil {
			logger.WithError(err).Warn("failed to store idempotent response")
			return
		}
		completed = true
	})
}
