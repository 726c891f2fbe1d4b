package bets

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samborkent/uuidv7"
	"golang.org/x/xerrors"

	"github.com/nvbf/torneo/pkg/metrics"
	"github.com/nvbf/torneo/repos/store"
)

var ErrInvalidBet = errors.New("invalid bet")

type subscriber struct {
	userID string
	all    bool
	fn     func([]store.Bet)

	// key of the last view handed to fn, guarded by BetsService.mu
	last      string
	delivered bool
}

// BetsService keeps every bet once, in a single collection. The per-user list
// and the admin list are both read from it, so they cannot drift apart.
type BetsService struct {
	repo store.BetRepository
	now  func() time.Time

	mu          sync.RWMutex
	latest      []store.Bet
	loaded      bool
	subscribers map[int]*subscriber
	nextID      int
}

func NewBetsService(repo store.BetRepository) *BetsService {
	return &BetsService{
		repo:        repo,
		now:         time.Now,
		subscribers: make(map[int]*subscriber),
	}
}

// PlaceBet records a prediction. betOn must name one of the two teams and
// match must read "team1 vs team2". The same user may bet on a match any
// number of times.
func (s *BetsService) PlaceBet(ctx context.Context, userID, match, team1, team2, betOn string) (store.Bet, error) {
	if err := validate(userID, match, team1, team2, betOn); err != nil {
		metrics.BetFailures.Inc()
		return store.Bet{}, err
	}

	bet := store.Bet{
		ID:        uuidv7.New().String(),
		Match:     match,
		Team1:     team1,
		Team2:     team2,
		BetOn:     betOn,
		Timestamp: s.now().UTC(),
		UserID:    userID,
	}
	if err := s.repo.Add(ctx, bet); err != nil {
		metrics.BetFailures.Inc()
		return store.Bet{}, xerrors.Errorf("place bet: %w", err)
	}
	metrics.BetsPlaced.Inc()
	log.Info().Str("userId", userID).Str("match", match).Str("betOn", betOn).Msg("Bet placed")
	return bet, nil
}

func validate(userID, match, team1, team2, betOn string) error {
	switch {
	case userID == "":
		return xerrors.Errorf("%w: user is required", ErrInvalidBet)
	case team1 == "" || team2 == "":
		return xerrors.Errorf("%w: both teams are required", ErrInvalidBet)
	case match != team1+" vs "+team2:
		return xerrors.Errorf("%w: match %q does not name %s and %s", ErrInvalidBet, match, team1, team2)
	case betOn != team1 && betOn != team2:
		return xerrors.Errorf("%w: %q is not playing in %s", ErrInvalidBet, betOn, match)
	}
	return nil
}

// ListForUser returns userID's bets, newest first.
func (s *BetsService) ListForUser(ctx context.Context, userID string) ([]store.Bet, error) {
	bets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, xerrors.Errorf("list bets of %s: %w", userID, err)
	}
	store.SortNewestFirst(bets)
	return bets, nil
}

// ListAll returns every bet, newest first.
func (s *BetsService) ListAll(ctx context.Context) ([]store.Bet, error) {
	bets, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, xerrors.Errorf("list bets: %w", err)
	}
	store.SortNewestFirst(bets)
	return bets, nil
}

// SubscribeUser calls fn with userID's bets whenever they change. Bets of
// other users do not wake fn.
func (s *BetsService) SubscribeUser(userID string, fn func([]store.Bet)) func() {
	return s.subscribe(&subscriber{userID: userID, fn: fn})
}

// SubscribeAll calls fn with every bet on every change.
func (s *BetsService) SubscribeAll(fn func([]store.Bet)) func() {
	return s.subscribe(&subscriber{all: true, fn: fn})
}

func (s *BetsService) subscribe(sub *subscriber) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = sub
	var current []store.Bet
	if s.loaded {
		current = view(sub, s.latest)
		sub.last, sub.delivered = viewKey(current), true
	}
	loaded := s.loaded
	s.mu.Unlock()

	if loaded {
		sub.fn(current)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Run follows the bet collection until ctx is cancelled.
func (s *BetsService) Run(ctx context.Context) error {
	err := s.repo.Watch(ctx, func(all []store.Bet) {
		metrics.SnapshotsReceived.WithLabelValues("bets").Inc()
		store.SortNewestFirst(all)

		type delivery struct {
			fn   func([]store.Bet)
			bets []store.Bet
		}

		s.mu.Lock()
		s.latest, s.loaded = all, true
		deliveries := make([]delivery, 0, len(s.subscribers))
		for _, sub := range s.subscribers {
			v := view(sub, all)
			key := viewKey(v)
			if sub.delivered && key == sub.last {
				continue
			}
			sub.last, sub.delivered = key, true
			deliveries = append(deliveries, delivery{fn: sub.fn, bets: v})
		}
		s.mu.Unlock()

		for _, d := range deliveries {
			d.fn(d.bets)
		}
	})
	if err != nil {
		log.Error().Err(err).Msg("Bets subscription stopped")
	}
	return nil
}

func view(sub *subscriber, all []store.Bet) []store.Bet {
	if sub.all {
		return append([]store.Bet{}, all...)
	}
	return store.FilterByUser(all, sub.userID)
}

// viewKey identifies a view by its bet ids. Bets are never edited, so equal
// ids mean an equal view.
func viewKey(bets []store.Bet) string {
	ids := make([]string, 0, len(bets))
	for _, b := range bets {
		ids = append(ids, b.ID)
	}
	return strings.Join(ids, ",")
}
