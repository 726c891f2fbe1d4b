package live

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/pkg/metrics"
	"github.com/nvbf/torneo/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Tournaments interface {
	Subscribe(fn func(*store.Tournament)) func()
}

type Bets interface {
	SubscribeUser(userID string, fn func([]store.Bet)) func()
	SubscribeAll(fn func([]store.Bet)) func()
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// Sources of the pushed data.
	Tournaments Tournaments
	Bets        Bets

	// The router instance to configure the HTTP routes.
	Router Router

	// CheckOrigin overrides the same-origin check of the upgrader.
	CheckOrigin func(r *http.Request) bool
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	h := &httpHandler{
		HTTPOptions: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
	opts.Router.GET("/ws", h.serveWS)
}

type httpHandler struct {
	HTTPOptions
	upgrader websocket.Upgrader
}

// serveWS pushes the tournament document and the caller's bets, plus every
// bet for admin sessions, each time they change.
func (h *httpHandler) serveWS(c *gin.Context) {
	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity not available"})
		c.Abort()
		return
	}
	admin := auth.IsAdmin(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := NewClient(conn, userID)
	metrics.LiveClients.Inc()
	defer metrics.LiveClients.Dec()

	go client.WritePump()

	unsubscribe := []func(){
		h.Tournaments.Subscribe(func(t *store.Tournament) {
			client.Push(Message{Type: TypeTournament, Payload: t})
		}),
		h.Bets.SubscribeUser(userID, func(bets []store.Bet) {
			client.Push(Message{Type: TypeUserBets, Payload: bets})
		}),
	}
	if admin {
		unsubscribe = append(unsubscribe, h.Bets.SubscribeAll(func(bets []store.Bet) {
			client.Push(Message{Type: TypeAllBets, Payload: bets})
		}))
	}

	log.Debug().Str("userID", userID).Bool("admin", admin).Msg("Live client connected")
	client.ReadPump()

	for _, fn := range unsubscribe {
		fn()
	}
	client.Close()
	log.Debug().Str("userID", userID).Msg("Live client disconnected")
}
