package store

import (
	"context"
	"errors"
	"sort"
)

var (
	ErrNotFound = errors.New("document not found")
)

// TournamentRepository holds the one tournament document.
type TournamentRepository interface {
	// Get returns ErrNotFound when the document has never been written.
	Get(ctx context.Context) (*Tournament, error)
	// Replace overwrites the whole document. There is no version check.
	Replace(ctx context.Context, t *Tournament) error
	// CreateIfAbsent writes t only when no document exists yet and reports
	// whether it did.
	CreateIfAbsent(ctx context.Context, t *Tournament) (bool, error)
	// Watch calls fn with the full document on every change, starting with
	// the current one, until ctx is cancelled.
	Watch(ctx context.Context, fn func(*Tournament)) error
}

// BetRepository is the single authoritative bet collection.
type BetRepository interface {
	Add(ctx context.Context, bet Bet) error
	ListByUser(ctx context.Context, userID string) ([]Bet, error)
	ListAll(ctx context.Context) ([]Bet, error)
	// Watch calls fn with every bet on every change, starting with the
	// current contents, until ctx is cancelled.
	Watch(ctx context.Context, fn func([]Bet)) error
}

// SortNewestFirst orders bets by timestamp descending.
func SortNewestFirst(bets []Bet) {
	sort.SliceStable(bets, func(i, j int) bool {
		return bets[i].Timestamp.After(bets[j].Timestamp)
	})
}

// FilterByUser returns the bets placed by userID, keeping their order.
func FilterByUser(bets []Bet, userID string) []Bet {
	out := []Bet{}
	for _, b := range bets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out
}
