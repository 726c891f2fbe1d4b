package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTournament(news string) *Tournament {
	return &Tournament{
		Groups:     []Group{{Name: "Grupo A", Matches: []Match{{Team1: "A1", Team2: "A2", Score1: 1}}}},
		LatestNews: news,
	}
}

func TestMemoryTournamentsGetMissing(t *testing.T) {
	_, err := NewMemoryTournaments().Get(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTournamentsCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTournaments()

	created, err := s.CreateIfAbsent(ctx, sampleTournament("first"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.CreateIfAbsent(ctx, sampleTournament("second"))
	require.NoError(t, err)
	assert.False(t, created, "An existing document must not be overwritten")

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", got.LatestNews)
}

func TestMemoryTournamentsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTournaments()

	require.NoError(t, s.Replace(ctx, sampleTournament("one")))
	second := &Tournament{LatestNews: "two", LiveStreamURL: "https://stream"}
	require.NoError(t, s.Replace(ctx, second))

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Empty(t, got.Groups, "Fields of the first payload must not survive")
}

func TestMemoryTournamentsIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryTournaments()
	doc := sampleTournament("news")
	require.NoError(t, s.Replace(ctx, doc))

	doc.Groups[0].Matches[0].Score1 = 9
	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Groups[0].Matches[0].Score1)
}

func TestMemoryTournamentsWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemoryTournaments()
	require.NoError(t, s.Replace(ctx, sampleTournament("initial")))

	updates := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func(t *Tournament) { updates <- t.LatestNews })
	}()

	assert.Equal(t, "initial", receive(t, updates))
	require.NoError(t, s.Replace(ctx, sampleTournament("changed")))
	assert.Equal(t, "changed", receive(t, updates))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

func TestMemoryBets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryBets()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Add(ctx, Bet{ID: "1", UserID: "u1", Timestamp: base}))
	require.NoError(t, s.Add(ctx, Bet{ID: "2", UserID: "u2", Timestamp: base.Add(time.Minute)}))
	require.NoError(t, s.Add(ctx, Bet{ID: "3", UserID: "u1", Timestamp: base.Add(2 * time.Minute)}))
	assert.Error(t, s.Add(ctx, Bet{ID: "3", UserID: "u1"}))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "2", "1"}, ids(all))

	mine, err := s.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, ids(mine))
}

func TestMemoryBetsWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewMemoryBets()

	counts := make(chan int, 10)
	go s.Watch(ctx, func(b []Bet) { counts <- len(b) })

	assert.Equal(t, 0, receive(t, counts))
	require.NoError(t, s.Add(ctx, Bet{ID: "1", UserID: "u1"}))
	assert.Equal(t, 1, receive(t, counts))
}

func TestTournamentClone(t *testing.T) {
	var nilDoc *Tournament
	assert.Nil(t, nilDoc.Clone())

	doc := sampleTournament("x")
	doc.TopScorers = []PlayerStat{{Name: "Messi", Goals: 2}}
	c := doc.Clone()
	c.TopScorers[0].Goals = 5
	c.Groups[0].Name = "Otro"
	assert.Equal(t, 2, doc.TopScorers[0].Goals)
	assert.Equal(t, "Grupo A", doc.Groups[0].Name)
}

func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for watch update")
	}
	var zero T
	return zero
}

func ids(bets []Bet) []string {
	out := make([]string, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.ID)
	}
	return out
}
