package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/geocoder89/campushub/internal/storage"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
)

func (p *Prom) ObserveSlot(backend, op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		status = "miss"
	default:
		status = "error"
		p.SlotErrors.WithLabelValues(backend, op, classifySlotErr(err)).Inc()
	}
	p.SlotOpDuration.WithLabelValues(backend, op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifySlotErr(err error) string {
	if errors.Is(err, storage.ErrCircuitOpen) {
		return "circuit_open"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		case "42P01":
			return "undefined_table"
		default:
			return "pg_" + pgErr.Code
		}
	}

	var redisErr redis.Error
	if errors.As(err, &redisErr) {
		kind, _, _ := strings.Cut(redisErr.Error(), " ")
		return "redis_" + strings.ToLower(kind)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
