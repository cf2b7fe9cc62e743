package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hakan-sariman/webhook-inbox/internal/model"
	"github.com/hakan-sariman/webhook-inbox/internal/signature"
	"github.com/hakan-sariman/webhook-inbox/internal/storage"
	"go.uber.org/zap"
)

// Result is the terminal outcome of a successful ingestion. Created and
// duplicate answer the caller identically; the distinction only feeds
// metrics and logs.
type Result string

const (
	ResultCreated   Result = "created"
	ResultDuplicate Result = "duplicate"
)

// ErrInvalidSignature covers a missing header, an unconfigured secret and
// a plain mismatch; the caller cannot tell which.
var ErrInvalidSignature = errors.New("invalid signature")

// ErrSecretNotConfigured makes readiness fail until a secret is set.
var ErrSecretNotConfigured = errors.New("webhook secret not configured")

// ValidationError wraps a payload parse or field validation failure; it
// maps to a 422 at the API boundary.
type ValidationError struct{ Err error }

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// SeenCache is the advisory duplicate cache. A nil cache is valid; the
// storage constraint alone decides correctness.
type SeenCache interface {
	SeenRecently(ctx context.Context, messageID string) (bool, error)
	MarkSeen(ctx context.Context, messageID string, ttl time.Duration) error
}

// Config holds the ingest parameters.
type Config struct {
	Secret   string
	CacheTTL time.Duration
}

// MessageService orchestrates signature check, validation, idempotent
// persistence and the read paths.
type MessageService struct {
	cfg    Config
	store  storage.Storage
	cache  SeenCache
	logger *zap.Logger
}

func NewMessageService(cfg Config, store storage.Storage, cache SeenCache, logger *zap.Logger) *MessageService {
	return &MessageService{
		cfg:    cfg,
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Ingest runs one webhook call through signature check, validation and
// insert. The signature is verified over the exact raw body bytes before
// any parsing.
func (s *MessageService) Ingest(ctx context.Context, rawBody []byte, providedSig string) (Result, error) {
	if !signature.Verify(s.cfg.Secret, rawBody, providedSig) {
		return "", ErrInvalidSignature
	}

	var p model.WebhookPayload
	if err := json.Unmarshal(rawBody, &p); err != nil {
		return "", &ValidationError{Err: fmt.Errorf("invalid json: %w", err)}
	}
	msg, err := model.NewMessage(&p)
	if err != nil {
		return "", &ValidationError{Err: err}
	}

	if s.cache != nil {
		seen, err := s.cache.SeenRecently(ctx, msg.MessageID)
		if err != nil {
			// advisory only; fall through to the storage constraint
			s.logger.Warn("Ingest: cache lookup failed", zap.Error(err))
		} else if seen {
			s.logger.Debug("Ingest: duplicate via cache", zap.String("message_id", msg.MessageID))
			return ResultDuplicate, nil
		}
	}

	res, err := s.store.InsertMessage(ctx, msg)
	if err != nil {
		s.logger.Error("Ingest: store error", zap.String("message_id", msg.MessageID), zap.Error(err))
		return "", fmt.Errorf("store message: %w", err)
	}
	if res == storage.Duplicate {
		s.logger.Info("Ingest: duplicate", zap.String("message_id", msg.MessageID))
		return ResultDuplicate, nil
	}

	if s.cache != nil {
		if err := s.cache.MarkSeen(ctx, msg.MessageID, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("Ingest: cache mark failed", zap.String("message_id", msg.MessageID), zap.Error(err))
		}
	}
	s.logger.Info("Ingest: stored", zap.String("message_id", msg.MessageID), zap.String("from", msg.From))
	return ResultCreated, nil
}

// ListMessages is a read-through to the store with clamping applied there.
func (s *MessageService) ListMessages(ctx context.Context, q storage.Query) (*model.Page, error) {
	page, err := s.store.QueryMessages(ctx, q)
	if err != nil {
		s.logger.Error("ListMessages: db error", zap.Error(err))
		return nil, err
	}
	s.logger.Debug("ListMessages: fetched", zap.Int("count", len(page.Data)), zap.Int64("total", page.Total))
	return page, nil
}

// Stats is a read-through to the aggregate summary.
func (s *MessageService) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Error("Stats: db error", zap.Error(err))
		return nil, err
	}
	return st, nil
}

// Ready reports whether the service can accept webhooks: secret configured
// and storage reachable.
func (s *MessageService) Ready(ctx context.Context) error {
	if s.cfg.Secret == "" {
		return ErrSecretNotConfigured
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("storage unreachable: %w", err)
	}
	return nil
}
