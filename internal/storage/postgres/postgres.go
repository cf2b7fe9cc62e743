package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/hakan-sariman/webhook-inbox/internal/model"
	"github.com/hakan-sariman/webhook-inbox/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Ensure Postgres implements Storage interface
var _ storage.Storage = (*Postgres)(nil)

// Postgres is the postgres storage implementation
type Postgres struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// New creates a new postgres storage
func New(ctx context.Context, url string, maxOpen int, logger *zap.Logger) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		logger.Error("pgx parse config error", zap.Error(err))
		return nil, err
	}
	cfg.MaxConns = int32(maxOpen)
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		logger.Error("pgx pool error", zap.Error(err))
		return nil, err
	}
	return &Postgres{pool: pool, logger: logger}, nil
}

// Close closes the postgres storage
func (p *Postgres) Close() { p.pool.Close() }

// Ping checks that the database is reachable.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// InsertMessage inserts a message, relying on the message_id primary key
// for idempotency. A conflict leaves the stored row untouched and is
// reported as Duplicate, not as an error.
func (p *Postgres) InsertMessage(ctx context.Context, m *model.Message) (storage.InsertResult, error) {
	ct, err := p.pool.Exec(ctx, `
		INSERT INTO messages (message_id, from_msisdn, to_msisdn, ts, text, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (message_id) DO NOTHING
	`, m.MessageID, m.From, m.To, m.TS, m.Text, m.CreatedAt)
	if err != nil {
		p.logger.Error("InsertMessage fail", zap.String("message_id", m.MessageID), zap.Error(err))
		return 0, fmt.Errorf("insert message: %w", err)
	}
	if ct.RowsAffected() == 0 {
		p.logger.Debug("InsertMessage duplicate", zap.String("message_id", m.MessageID))
		return storage.Duplicate, nil
	}
	return storage.Inserted, nil
}

// buildWhere turns the query filters into a WHERE clause with positional
// args, AND-combined.
func buildWhere(q storage.Query) (string, []any) {
	var conds []string
	var args []any
	if q.From != "" {
		args = append(args, q.From)
		conds = append(conds, fmt.Sprintf("from_msisdn = $%d", len(args)))
	}
	if q.Since != "" {
		args = append(args, q.Since)
		conds = append(conds, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if q.Text != "" {
		args = append(args, "%"+strings.ToLower(q.Text)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(text) LIKE $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// QueryMessages returns matching rows ordered by ts then message_id, a
// total order that keeps pagination stable under duplicate timestamps.
func (p *Postgres) QueryMessages(ctx context.Context, q storage.Query) (*model.Page, error) {
	q.Clamp()
	where, args := buildWhere(q)

	var total int64
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM messages "+where, args...).Scan(&total); err != nil {
		p.logger.Error("QueryMessages count fail", zap.Error(err))
		return nil, fmt.Errorf("count messages: %w", err)
	}

	sel := fmt.Sprintf(`
		SELECT message_id, from_msisdn, to_msisdn, ts, COALESCE(text, ''), created_at
		FROM messages %s
		ORDER BY ts ASC, message_id ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	rows, err := p.pool.Query(ctx, sel, append(args, q.Limit, q.Offset)...)
	if err != nil {
		p.logger.Error("QueryMessages query fail", zap.Error(err))
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	data := make([]model.Message, 0, q.Limit)
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.MessageID, &m.From, &m.To, &m.TS, &m.Text, &m.CreatedAt); err != nil {
			p.logger.Error("QueryMessages scan fail", zap.Error(err))
			return nil, fmt.Errorf("scan message: %w", err)
		}
		data = append(data, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	return &model.Page{Data: data, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// Stats aggregates totals, per-sender counts and the ts range.
// Per-sender ties break on from_msisdn ascending so the top-10 is stable.
func (p *Postgres) Stats(ctx context.Context) (*model.Stats, error) {
	st := &model.Stats{MessagesPerSender: []model.SenderCount{}}

	if err := p.pool.QueryRow(ctx, "SELECT COUNT(*) FROM messages").Scan(&st.TotalMessages); err != nil {
		p.logger.Error("Stats total fail", zap.Error(err))
		return nil, fmt.Errorf("stats total: %w", err)
	}
	if err := p.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT from_msisdn) FROM messages").Scan(&st.SendersCount); err != nil {
		p.logger.Error("Stats senders fail", zap.Error(err))
		return nil, fmt.Errorf("stats senders: %w", err)
	}

	rows, err := p.pool.Query(ctx, `
		SELECT from_msisdn, COUNT(*) AS cnt
		FROM messages
		GROUP BY from_msisdn
		ORDER BY cnt DESC, from_msisdn ASC
		LIMIT 10
	`)
	if err != nil {
		p.logger.Error("Stats per-sender fail", zap.Error(err))
		return nil, fmt.Errorf("stats per sender: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc model.SenderCount
		if err := rows.Scan(&sc.From, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan sender count: %w", err)
		}
		st.MessagesPerSender = append(st.MessagesPerSender, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stats per sender: %w", err)
	}

	if err := p.pool.QueryRow(ctx, "SELECT MIN(ts), MAX(ts) FROM messages").Scan(&st.FirstMessageTS, &st.LastMessageTS); err != nil {
		p.logger.Error("Stats range fail", zap.Error(err))
		return nil, fmt.Errorf("stats range: %w", err)
	}
	return st, nil
}
