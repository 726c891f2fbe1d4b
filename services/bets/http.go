package bets

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Ledger is the interface for the bet ledger.
type Ledger interface {
	PlaceBet(ctx context.Context, userID, match, team1, team2, betOn string) (store.Bet, error)
	ListForUser(ctx context.Context, userID string) ([]store.Bet, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Ledger

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/bets", h.listHandler)
	r.POST("/bets", h.placeHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) listHandler(c *gin.Context) {
	uid, _ := auth.UserID(c)
	bets, err := h.Service.ListForUser(c, uid)
	if err != nil {
		log.Error().Err(err).Msg("Could not list bets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}

func (h *httpHandler) placeHandler(c *gin.Context) {
	var request BetRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	uid, _ := auth.UserID(c)
	bet, err := h.Service.PlaceBet(c, uid, request.Match, request.Team1, request.Team2, request.BetOn)
	if err != nil {
		if errors.Is(err, ErrInvalidBet) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Error().Err(err).Msg("Could not place bet")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bet": bet})
}
