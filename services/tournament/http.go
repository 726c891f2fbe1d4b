package tournament

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nvbf/torneo/repos/store"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Tournaments is the read side exposed over HTTP.
type Tournaments interface {
	Current() (*store.Tournament, bool)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Tournaments

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/tournament", h.tournamentHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) tournamentHandler(c *gin.Context) {
	t, ok := h.Service.Current()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tournament not loaded"})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"tournament": t})
}
