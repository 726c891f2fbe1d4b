package bets

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/repos/store"
)

type failingRepo struct {
	store.BetRepository
}

func (failingRepo) Add(ctx context.Context, bet store.Bet) error {
	return errors.New("unavailable")
}

func TestPlaceBetVisibleToUserAndAdmin(t *testing.T) {
	ctx := context.Background()
	s := NewBetsService(store.NewMemoryBets())

	_, err := s.PlaceBet(ctx, "u", "A vs B", "A", "B", "A")
	require.NoError(t, err)

	mine, err := s.ListForUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].BetOn)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "u", all[0].UserID)
	assert.Equal(t, mine[0].ID, all[0].ID, "Both views must read the same record")
}

func TestPlaceBetStampsRecord(t *testing.T) {
	ctx := context.Background()
	s := NewBetsService(store.NewMemoryBets())
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	bet, err := s.PlaceBet(ctx, "u", "A vs B", "A", "B", "B")
	require.NoError(t, err)
	assert.NotEmpty(t, bet.ID)
	assert.Equal(t, fixed, bet.Timestamp)
	assert.Equal(t, "A vs B", bet.Match)
}

func TestPlaceBetAllowsRepeats(t *testing.T) {
	ctx := context.Background()
	s := NewBetsService(store.NewMemoryBets())

	for i := 0; i < 3; i++ {
		_, err := s.PlaceBet(ctx, "u", "A vs B", "A", "B", "A")
		require.NoError(t, err)
	}
	mine, err := s.ListForUser(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, mine, 3)
}

func TestPlaceBetValidation(t *testing.T) {
	cases := []struct {
		name                             string
		user, match, team1, team2, betOn string
	}{
		{"missing user", "", "A vs B", "A", "B", "A"},
		{"missing team", "u", "A vs ", "A", "", "A"},
		{"match mismatch", "u", "A vs C", "A", "B", "A"},
		{"bet on outsider", "u", "A vs B", "A", "B", "C"},
	}

	s := NewBetsService(store.NewMemoryBets())
	for _, c := range cases {
		_, err := s.PlaceBet(context.Background(), c.user, c.match, c.team1, c.team2, c.betOn)
		assert.ErrorIs(t, err, ErrInvalidBet, c.name)
	}

	all, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPlaceBetStoreFailure(t *testing.T) {
	s := NewBetsService(failingRepo{})
	_, err := s.PlaceBet(context.Background(), "u", "A vs B", "A", "B", "A")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidBet)
}

func TestListsAreNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewBetsService(store.NewMemoryBets())
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	for i, betOn := range []string{"A", "B", "A"} {
		ts := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return ts }
		_, err := s.PlaceBet(ctx, "u", "A vs B", "A", "B", betOn)
		require.NoError(t, err)
	}

	mine, err := s.ListForUser(ctx, "u")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.True(t, mine[0].Timestamp.After(mine[1].Timestamp))
	assert.True(t, mine[1].Timestamp.After(mine[2].Timestamp))
}

func TestSubscriptions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewBetsService(store.NewMemoryBets())

	userUpdates := make(chan []store.Bet, 10)
	allUpdates := make(chan []store.Bet, 10)
	stopUser := s.SubscribeUser("u1", func(b []store.Bet) { userUpdates <- b })
	defer s.SubscribeAll(func(b []store.Bet) { allUpdates <- b })()

	go s.Run(ctx)
	assert.Empty(t, receive(t, userUpdates))
	assert.Empty(t, receive(t, allUpdates))

	_, err := s.PlaceBet(ctx, "u2", "A vs B", "A", "B", "B")
	require.NoError(t, err)
	assert.Len(t, receive(t, allUpdates), 1)

	_, err = s.PlaceBet(ctx, "u1", "A vs B", "A", "B", "A")
	require.NoError(t, err)
	mine := receive(t, userUpdates)
	require.Len(t, mine, 1, "u2's bet must not produce an update for u1")
	assert.Equal(t, "u1", mine[0].UserID)
	assert.Len(t, receive(t, allUpdates), 2)

	stopUser()
	late := make(chan []store.Bet, 1)
	defer s.SubscribeUser("u1", func(b []store.Bet) { late <- b })()
	assert.Len(t, receive(t, late), 1, "New subscribers get the latest view immediately")
}

func TestOtherUsersBetsDoNotWakeSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := NewBetsService(store.NewMemoryBets())

	var mu sync.Mutex
	var calls [][]store.Bet
	defer s.SubscribeUser("alice", func(b []store.Bet) {
		mu.Lock()
		calls = append(calls, b)
		mu.Unlock()
	})()
	all := make(chan []store.Bet, 10)
	defer s.SubscribeAll(func(b []store.Bet) { all <- b })()

	go s.Run(ctx)
	receive(t, all)

	for i := 0; i < 3; i++ {
		_, err := s.PlaceBet(ctx, "bob", "A vs B", "A", "B", "A")
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool {
		select {
		case b := <-all:
			return len(b) == 3
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	_, err := s.PlaceBet(ctx, "alice", "A vs B", "A", "B", "B")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, calls[0], "First delivery is the initial empty view")
	require.Len(t, calls[1], 1)
	assert.Equal(t, "alice", calls[1][0].UserID)
}

func TestHTTPHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewBetsService(store.NewMemoryBets())
	sessions := auth.NewSessions([]byte("secret"), time.Hour, false)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(auth.IdentityMiddleware(auth.LocalIdentity{}, sessions), auth.RequireIdentity())
	NewHTTPHandler(HTTPOptions{Service: s, Router: api})

	w := httptest.NewRecorder()
	body := `{"match":"A vs B","team1":"A","team2":"B","betOn":"A"}`
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bets", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := w.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bets", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"betOn":"A"`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bets", bytes.NewBufferString(`{"match":"A vs B","team1":"A","team2":"B","betOn":"Z"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/bets", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func receive[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
	var zero T
	return zero
}
