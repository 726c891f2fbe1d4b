package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/repos/store"
	"github.com/nvbf/torneo/services/bets"
	"github.com/nvbf/torneo/services/tournament"
)

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type fixture struct {
	server      *httptest.Server
	sessions    *auth.Sessions
	tournaments *tournament.TournamentService
	bets        *bets.BetsService
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	tournaments := tournament.NewTournamentService(store.NewMemoryTournaments())
	_, err := tournaments.Load(ctx)
	require.NoError(t, err)
	ledger := bets.NewBetsService(store.NewMemoryBets())
	go ledger.Run(ctx)
	go tournaments.Run(ctx)

	sessions := auth.NewSessions([]byte("test-secret"), time.Hour, false)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(auth.IdentityMiddleware(auth.LocalIdentity{}, sessions), auth.AdminMiddleware(sessions))
	NewHTTPHandler(HTTPOptions{Tournaments: tournaments, Bets: ledger, Router: router})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return fixture{server: server, sessions: sessions, tournaments: tournaments, bets: ledger}
}

func (f fixture) dial(t *testing.T, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads until a message of type want arrives.
func next(t *testing.T, conn *websocket.Conn, want string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

func TestPushesTournamentAndUserBets(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, nil)

	msg := next(t, conn, TypeTournament)
	var doc store.Tournament
	require.NoError(t, json.Unmarshal(msg.Payload, &doc))
	assert.Len(t, doc.Groups, 4)

	msg = next(t, conn, TypeUserBets)
	assert.JSONEq(t, `[]`, string(msg.Payload))

	doc.LatestNews = "Gol!"
	require.NoError(t, f.tournaments.Save(context.Background(), &doc))
	for doc.LatestNews = ""; doc.LatestNews != "Gol!"; {
		msg = next(t, conn, TypeTournament)
		require.NoError(t, json.Unmarshal(msg.Payload, &doc))
	}
}

func TestAllBetsOnlyForAdmins(t *testing.T) {
	f := newFixture(t)
	token, err := f.sessions.IssueAdmin()
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Cookie", auth.AdminCookie+"="+token)
	admin := f.dial(t, header)
	next(t, admin, TypeAllBets)

	_, err = f.bets.PlaceBet(context.Background(), "someone", "A vs B", "A", "B", "A")
	require.NoError(t, err)

	var all []store.Bet
	for len(all) == 0 {
		msg := next(t, admin, TypeAllBets)
		require.NoError(t, json.Unmarshal(msg.Payload, &all))
	}
	require.Len(t, all, 1)
	assert.Equal(t, "someone", all[0].UserID)
}

func TestClientPushAfterClose(t *testing.T) {
	c := &Client{Send: make(chan []byte, 1)}
	c.Close()
	c.Close()
	assert.NotPanics(t, func() { c.Push(Message{Type: TypeTournament}) })
}
