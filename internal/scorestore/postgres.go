package scorestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore is a ScoreStore backed directly by lib/pq, modeled on
// database_service.go's sql.Open("postgres", ...)/Ping pairing and
// result_repository.go's RETURNING-based insert and ranking query,
// generalized from the teacher's Deck/Contribution-entangled schema to
// the plain (player, room, score, won) shape this spec's persistence
// surface actually needs (SPEC_FULL.md §3).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens and pings a Postgres connection at
// databaseURL, matching database_service.go's NewDatabaseService.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("scorestore: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("scorestore: ping: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveScore inserts a single match result row, mirroring
// result_repository.go's CreateResult's RETURNING-id insert.
func (s *PostgresStore) SaveScore(ctx context.Context, result Result) error {
	const q = `
		INSERT INTO match_results (player_id, room_id, score, won)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	var id int64
	err := s.db.QueryRowContext(ctx, q, result.PlayerID, result.RoomID, result.Score, result.Won).Scan(&id)
	if err != nil {
		return fmt.Errorf("scorestore: save score: %w", err)
	}
	return nil
}

// TopScores returns the limit highest individual match scores, mirroring
// result_repository.go's GetTopResults.
func (s *PostgresStore) TopScores(ctx context.Context, limit int) ([]TopEntry, error) {
	const q = `
		SELECT player_id, score
		FROM match_results
		ORDER BY score DESC
		LIMIT $1`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("scorestore: top scores: %w", err)
	}
	defer rows.Close()

	var out []TopEntry
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.PlayerID, &e.Score); err != nil {
			return nil, fmt.Errorf("scorestore: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
