package store

import (
	"context"
	"sync"

	"golang.org/x/xerrors"
)

// notifier wakes watchers after a write. A watcher that has not consumed its
// previous signal reads the newest state once, so bursts of writes collapse.
type notifier struct {
	mu       sync.Mutex
	watchers map[chan struct{}]struct{}
}

func (n *notifier) add() chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.watchers == nil {
		n.watchers = make(map[chan struct{}]struct{})
	}
	ch := make(chan struct{}, 1)
	n.watchers[ch] = struct{}{}
	return ch
}

func (n *notifier) remove(ch chan struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.watchers, ch)
}

func (n *notifier) notify() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// MemoryTournaments keeps the tournament document in process. It backs local
// runs and tests.
type MemoryTournaments struct {
	mu  sync.RWMutex
	doc *Tournament
	n   notifier
}

func NewMemoryTournaments() *MemoryTournaments {
	return &MemoryTournaments{}
}

func (s *MemoryTournaments) Get(ctx context.Context) (*Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return nil, ErrNotFound
	}
	return s.doc.Clone(), nil
}

func (s *MemoryTournaments) Replace(ctx context.Context, t *Tournament) error {
	if t == nil {
		return xerrors.New("replace tournament: nil document")
	}
	s.mu.Lock()
	s.doc = t.Clone()
	s.mu.Unlock()
	s.n.notify()
	return nil
}

func (s *MemoryTournaments) CreateIfAbsent(ctx context.Context, t *Tournament) (bool, error) {
	if t == nil {
		return false, xerrors.New("create tournament: nil document")
	}
	s.mu.Lock()
	if s.doc != nil {
		s.mu.Unlock()
		return false, nil
	}
	s.doc = t.Clone()
	s.mu.Unlock()
	s.n.notify()
	return true, nil
}

func (s *MemoryTournaments) Watch(ctx context.Context, fn func(*Tournament)) error {
	ch := s.n.add()
	defer s.n.remove(ch)

	emit := func() {
		if t, err := s.Get(ctx); err == nil {
			fn(t)
		}
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			emit()
		}
	}
}

// MemoryBets keeps bets in process.
type MemoryBets struct {
	mu   sync.RWMutex
	bets []Bet
	n    notifier
}

func NewMemoryBets() *MemoryBets {
	return &MemoryBets{}
}

func (s *MemoryBets) Add(ctx context.Context, bet Bet) error {
	s.mu.Lock()
	for _, b := range s.bets {
		if b.ID == bet.ID {
			s.mu.Unlock()
			return xerrors.Errorf("add bet %s: already exists", bet.ID)
		}
	}
	s.bets = append(s.bets, bet)
	s.mu.Unlock()
	s.n.notify()
	return nil
}

func (s *MemoryBets) ListByUser(ctx context.Context, userID string) ([]Bet, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FilterByUser(all, userID), nil
}

func (s *MemoryBets) ListAll(ctx context.Context) ([]Bet, error) {
	s.mu.RLock()
	bets := append([]Bet{}, s.bets...)
	s.mu.RUnlock()
	SortNewestFirst(bets)
	return bets, nil
}

func (s *MemoryBets) Watch(ctx context.Context, fn func([]Bet)) error {
	ch := s.n.add()
	defer s.n.remove(ch)

	emit := func() {
		bets, _ := s.ListAll(ctx)
		fn(bets)
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ch:
			emit()
		}
	}
}
