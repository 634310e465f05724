package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the sessions table (sid, payload,
// expires_at). Expired rows are treated as absent on read and swept
// periodically by a background reaper.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PostgresStore{pool: pool, ttl: ttl}
}

func (s *PostgresStore) Create(ctx context.Context, p Payload) (string, error) {
	sid := newToken()
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (sid, payload, expires_at) VALUES ($1, $2, $3)`,
		sid, string(raw), time.Now().Add(s.ttl),
	)
	if err != nil {
		return "", err
	}
	return sid, nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*Payload, error) {
	var raw string
	var expiresAt time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT payload, expires_at FROM sessions WHERE sid = $1`, token,
	).Scan(&raw, &expiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p, err := decodeRow(raw, expiresAt, time.Now())
	if err != nil {
		return nil, err
	}
	if p == nil {
		// Lazy delete; the reaper also sweeps these.
		_, _ = s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, token)
		return nil, nil
	}
	return p, nil
}

// decodeRow turns a stored session row into its payload, or (nil, nil) when
// the row expired before now.
func decodeRow(raw string, expiresAt, now time.Time) (*Payload, error) {
	if now.After(expiresAt) {
		return nil, nil
	}
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, token)
	return err
}

// StartReaper deletes expired session rows every interval until ctx is done.
func (s *PostgresStore) StartReaper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`); err != nil {
					log.Printf("session reaper: %v", err)
				}
			}
		}
	}()
}
