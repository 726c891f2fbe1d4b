package tournament

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/xerrors"

	"github.com/nvbf/torneo/pkg/metrics"
	"github.com/nvbf/torneo/repos/store"
)

// TournamentService is the single source of truth for tournament content.
// Save replaces the whole document with no version check: when two admins
// save concurrently the last write committed by the store wins and nothing is
// merged.
type TournamentService struct {
	repo store.TournamentRepository

	mu          sync.RWMutex
	current     *store.Tournament
	subscribers map[int]func(*store.Tournament)
	nextID      int
}

func NewTournamentService(repo store.TournamentRepository) *TournamentService {
	return &TournamentService{
		repo:        repo,
		subscribers: make(map[int]func(*store.Tournament)),
	}
}

// Initialize writes the default tournament when the store has none. Calling
// it again is a no-op.
func (s *TournamentService) Initialize(ctx context.Context) error {
	created, err := s.repo.CreateIfAbsent(ctx, Default())
	if err != nil {
		return xerrors.Errorf("initialize tournament: %w", err)
	}
	if created {
		log.Info().Msg("Created default tournament document")
	}
	return nil
}

// Load initializes the document if needed and returns the stored one.
func (s *TournamentService) Load(ctx context.Context) (*store.Tournament, error) {
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx)
	if err != nil {
		return nil, xerrors.Errorf("load tournament: %w", err)
	}
	s.setCurrent(t)
	return t.Clone(), nil
}

// Save normalises scores and replaces the stored document.
func (s *TournamentService) Save(ctx context.Context, t *store.Tournament) error {
	if t == nil {
		return errors.New("tournament is required")
	}
	doc := t.Clone()
	Normalize(doc)

	if err := s.repo.Replace(ctx, doc); err != nil {
		metrics.TournamentSaves.WithLabelValues("error").Inc()
		return xerrors.Errorf("save tournament: %w", err)
	}
	metrics.TournamentSaves.WithLabelValues("ok").Inc()
	s.setCurrent(doc)
	return nil
}

// Current returns a copy of the latest known document.
func (s *TournamentService) Current() (*store.Tournament, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// Subscribe registers fn for every document change. fn receives the current
// document right away when one is known. Call the returned func to stop.
func (s *TournamentService) Subscribe(fn func(*store.Tournament)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn
	current := s.current.Clone()
	s.mu.Unlock()

	if current != nil {
		fn(current)
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

// Run follows the stored document until ctx is cancelled. A failing watch is
// logged and not retried; the last known document stays in place.
func (s *TournamentService) Run(ctx context.Context) error {
	err := s.repo.Watch(ctx, func(t *store.Tournament) {
		metrics.SnapshotsReceived.WithLabelValues("tournament").Inc()
		s.setCurrent(t)
		s.publish(t)
	})
	if err != nil {
		log.Error().Err(err).Msg("Tournament subscription stopped")
	}
	return nil
}

func (s *TournamentService) setCurrent(t *store.Tournament) {
	s.mu.Lock()
	s.current = t.Clone()
	s.mu.Unlock()
}

func (s *TournamentService) publish(t *store.Tournament) {
	s.mu.RLock()
	fns := make([]func(*store.Tournament), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(t.Clone())
	}
}

// Normalize clamps negative scores to zero.
func Normalize(t *store.Tournament) {
	clamp := func(matches []store.Match) {
		for i := range matches {
			if matches[i].Score1 < 0 {
				matches[i].Score1 = 0
			}
			if matches[i].Score2 < 0 {
				matches[i].Score2 = 0
			}
		}
	}
	for i := range t.Groups {
		clamp(t.Groups[i].Matches)
	}
	for i := range t.KnockoutStage {
		clamp(t.KnockoutStage[i].Matches)
	}
}
