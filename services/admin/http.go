package admin

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
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PATCH(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Admin is the interface for the admin service.
type Admin interface {
	Login(password string) (string, error)
	ApplyDraft(ctx context.Context, draft Draft) (*store.Tournament, error)
	ReplaceTournament(ctx context.Context, t *store.Tournament) error
	AllBets(ctx context.Context) ([]store.Bet, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Admin

	// The router instance to configure the HTTP routes.
	Router Router

	// Sessions writes the admin cookie.
	Sessions *auth.Sessions

	// LoginGuard runs before the login handler, typically a rate limiter.
	LoginGuard gin.HandlerFunc
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}

	login := []gin.HandlerFunc{h.loginHandler}
	if opts.LoginGuard != nil {
		login = append([]gin.HandlerFunc{opts.LoginGuard}, login...)
	}
	r.POST("/login", login...)
	r.POST("/logout", h.logoutHandler)

	protected := r.Group("", auth.RequireAdmin())
	protected.PUT("/tournament", h.replaceHandler)
	protected.PATCH("/tournament", h.draftHandler)
	protected.GET("/bets", h.betsHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) loginHandler(c *gin.Context) {
	var request LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	token, err := h.Service.Login(request.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid password"})
		c.Abort()
		return
	}
	h.Sessions.SetAdminCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"result": "Access granted"})
}

func (h *httpHandler) logoutHandler(c *gin.Context) {
	h.Sessions.ClearAdminCookie(c)
	c.JSON(http.StatusOK, gin.H{"result": "Logged out"})
}

func (h *httpHandler) replaceHandler(c *gin.Context) {
	var request store.Tournament
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	if err := h.Service.ReplaceTournament(c, &request); err != nil {
		log.Error().Err(err).Msg("Could not replace tournament")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournament": request})
}

func (h *httpHandler) draftHandler(c *gin.Context) {
	var draft Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}
	doc, err := h.Service.ApplyDraft(c, draft)
	if err != nil {
		if errors.Is(err, ErrNotLoaded) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		log.Error().Err(err).Msg("Could not apply draft")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournament": doc})
}

func (h *httpHandler) betsHandler(c *gin.Context) {
	bets, err := h.Service.AllBets(c)
	if err != nil {
		log.Error().Err(err).Msg("Could not list bets")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"bets": bets})
}
