// Package scorestore implements the optional persistence surface named
// in spec.md §6's closing paragraph: recording match results and
// serving a leaderboard, independent of the in-memory game core.
package scorestore

import "context"

// Result is one player's outcome from a finished room, the unit saved
// by ScoreStore.SaveScore.
type Result struct {
	PlayerID string
	RoomID   string
	Score    int
	Won      bool
}

// TopEntry is one row of a leaderboard query.
type TopEntry struct {
	PlayerID string
	Score    int
}

// ScoreStore is the optional persistence contract for match results
// that should outlive the room itself (spec.md §6). The tetris Registry
// and Rooms hold no ScoreStore and never call SaveScore; in this server
// a configured store backs only the results HTTP route (TopScores). A
// nil ScoreStore is a legitimate configuration: the server runs fully
// in-memory without it.
type ScoreStore interface {
	SaveScore(ctx context.Context, result Result) error
	TopScores(ctx context.Context, limit int) ([]TopEntry, error)
}
