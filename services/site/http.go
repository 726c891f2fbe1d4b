package site

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog/log"
	"github.com/xorcare/pointer"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/repos/store"
	"github.com/nvbf/torneo/services/admin"
	"github.com/nvbf/torneo/services/bets"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
}

type Tournaments interface {
	Current() (*store.Tournament, bool)
}

type Ledger interface {
	PlaceBet(ctx context.Context, userID, match, team1, team2, betOn string) (store.Bet, error)
	ListForUser(ctx context.Context, userID string) ([]store.Bet, error)
	ListAll(ctx context.Context) ([]store.Bet, error)
}

type Admin interface {
	Login(password string) (string, error)
	ApplyDraft(ctx context.Context, draft admin.Draft) (*store.Tournament, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {
	Tournaments Tournaments
	Bets        Ledger
	Admin       Admin
	Sessions    *auth.Sessions

	// The router instance to configure the HTTP routes.
	Router Router

	// SiteURL is the address shared from the home page.
	SiteURL string

	// Location bet timestamps are shown in.
	Location *time.Location

	// LoginGuard runs before the admin login form handler.
	LoginGuard gin.HandlerFunc
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) error {
	pages, err := parseTemplates()
	if err != nil {
		return err
	}
	h := &httpHandler{HTTPOptions: opts, pages: pages}
	r := opts.Router

	r.GET("/", h.ready(h.homeHandler))
	r.GET("/fixture", h.ready(h.fixtureHandler))
	r.GET("/stats", h.ready(h.statsHandler))
	r.GET("/media", h.ready(h.mediaHandler))
	r.GET("/bets", h.ready(h.betsHandler))
	r.POST("/bets", h.ready(h.placeBetHandler))
	r.GET("/admin", h.ready(h.adminHandler))

	login := []gin.HandlerFunc{h.loginHandler}
	if opts.LoginGuard != nil {
		login = append([]gin.HandlerFunc{opts.LoginGuard}, login...)
	}
	r.POST("/admin/login", login...)
	r.POST("/admin/logout", h.logoutHandler)
	r.POST("/admin/save", h.ready(h.saveHandler))
	return nil
}

type httpHandler struct {
	HTTPOptions
	pages map[string]*template.Template
}

type pageHandler func(c *gin.Context, userID string, t *store.Tournament)

// ready renders the loading page until both the visitor's identity and the
// first tournament snapshot are available.
func (h *httpHandler) ready(next pageHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.UserID(c)
		if !ok {
			h.render(c, http.StatusOK, pageLoading, LoadingPage())
			return
		}
		t, ok := h.Tournaments.Current()
		if !ok {
			h.render(c, http.StatusOK, pageLoading, LoadingPage())
			return
		}
		next(c, userID, t)
	}
}

func (h *httpHandler) render(c *gin.Context, status int, name string, page Page) {
	c.Render(status, render.HTML{Template: h.pages[name], Name: "layout", Data: page})
}

func (h *httpHandler) page(c *gin.Context, content interface{}, live bool) Page {
	return Page{Title: "Torneo de Fútbol", Nav: Nav(c.FullPath()), Live: live, Content: content}
}

func (h *httpHandler) homeHandler(c *gin.Context, _ string, t *store.Tournament) {
	h.render(c, http.StatusOK, pageHome, h.page(c, HomePage(t, h.SiteURL), true))
}

func (h *httpHandler) fixtureHandler(c *gin.Context, _ string, t *store.Tournament) {
	h.render(c, http.StatusOK, pageFixture, h.page(c, FixturePage(t), true))
}

func (h *httpHandler) statsHandler(c *gin.Context, _ string, t *store.Tournament) {
	h.render(c, http.StatusOK, pageStats, h.page(c, StatsPage(t), true))
}

func (h *httpHandler) mediaHandler(c *gin.Context, _ string, _ *store.Tournament) {
	h.render(c, http.StatusOK, pageMedia, h.page(c, MediaPage(), false))
}

func (h *httpHandler) betsHandler(c *gin.Context, userID string, t *store.Tournament) {
	message := ""
	if c.Query("placed") != "" {
		message = msgBetPlaced
	}
	h.renderBets(c, http.StatusOK, userID, t, c.Query("match"), message, false)
}

func (h *httpHandler) placeBetHandler(c *gin.Context, userID string, t *store.Tournament) {
	label, winner := c.PostForm("match"), c.PostForm("winner")
	m, found := FindGroupMatch(t, label)
	if label == "" || winner == "" || !found {
		h.renderBets(c, http.StatusBadRequest, userID, t, label, msgPickBet, true)
		return
	}

	_, err := h.Bets.PlaceBet(c, userID, label, m.Team1, m.Team2, winner)
	switch {
	case errors.Is(err, bets.ErrInvalidBet):
		h.renderBets(c, http.StatusBadRequest, userID, t, label, msgPickBet, true)
	case err != nil:
		log.Error().Err(err).Str("userID", userID).Msg("Could not place bet")
		h.renderBets(c, http.StatusInternalServerError, userID, t, label, msgBetFailed, true)
	default:
		c.Redirect(http.StatusSeeOther, "/bets?placed=1")
	}
}

func (h *httpHandler) renderBets(c *gin.Context, status int, userID string, t *store.Tournament, selected, message string, failed bool) {
	mine, err := h.Bets.ListForUser(c, userID)
	if err != nil {
		log.Error().Err(err).Str("userID", userID).Msg("Could not list bets")
	}
	v := BettingPage(t, selected, mine, h.Location)
	v.Message, v.Failed = message, failed
	// A reload of a form result would post the bet again.
	live := c.Request.Method == http.MethodGet
	h.render(c, status, pageBets, h.page(c, v, live))
}

func (h *httpHandler) adminHandler(c *gin.Context, _ string, t *store.Tournament) {
	if !auth.IsAdmin(c) {
		h.render(c, http.StatusOK, pageAdmin, h.page(c, AdminLoginPage(""), false))
		return
	}
	v := h.adminView(c, t, c.Query("tab"))
	if c.Query("saved") != "" {
		v.Notice = msgSaved
	}
	h.render(c, http.StatusOK, pageAdmin, h.page(c, v, false))
}

func (h *httpHandler) adminView(c *gin.Context, t *store.Tournament, tab string) AdminView {
	var all []store.Bet
	if tab == tabBets {
		var err error
		if all, err = h.Bets.ListAll(c); err != nil {
			log.Error().Err(err).Msg("Could not list bets")
		}
	}
	return AdminPage(t, tab, all, h.Location)
}

func (h *httpHandler) loginHandler(c *gin.Context) {
	var request admin.LoginRequest
	if err := c.ShouldBind(&request); err != nil {
		log.Debug().Err(err).Msg("Unreadable admin login form")
		h.render(c, http.StatusBadRequest, pageAdmin, Page{
			Title:   "Torneo de Fútbol",
			Nav:     Nav("/admin"),
			Content: AdminLoginPage(msgWrongPass),
		})
		return
	}

	token, err := h.Admin.Login(request.Password)
	if err != nil {
		c.Header("Cache-Control", "no-store")
		h.render(c, http.StatusUnauthorized, pageAdmin, Page{
			Title:   "Torneo de Fútbol",
			Nav:     Nav("/admin"),
			Content: AdminLoginPage(msgWrongPass),
		})
		return
	}
	h.Sessions.SetAdminCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *httpHandler) logoutHandler(c *gin.Context) {
	h.Sessions.ClearAdminCookie(c)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *httpHandler) saveHandler(c *gin.Context, _ string, t *store.Tournament) {
	if !auth.IsAdmin(c) {
		h.render(c, http.StatusForbidden, pageAdmin, h.page(c, AdminLoginPage(""), false))
		return
	}

	if _, err := h.Admin.ApplyDraft(c, DraftFromForm(c, t)); err != nil {
		log.Error().Err(err).Msg("Could not save admin draft")
		v := h.adminView(c, t, tabContent)
		v.Error = msgSaveFailed
		h.render(c, http.StatusInternalServerError, pageAdmin, h.page(c, v, false))
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin?saved=1")
}

// DraftFromForm reads the admin form laid out by AdminPage for t. Team names
// left blank keep their stored value; scores that are not numbers become 0.
func DraftFromForm(c *gin.Context, t *store.Tournament) admin.Draft {
	doc := t.Clone()
	for gi := range doc.Groups {
		readMatches(c, groupFieldStem, gi, doc.Groups[gi].Matches)
	}
	for si := range doc.KnockoutStage {
		readMatches(c, stageFieldStem, si, doc.KnockoutStage[si].Matches)
	}
	return admin.Draft{
		Groups:             doc.Groups,
		KnockoutStage:      doc.KnockoutStage,
		TopScorers:         pointer.String(c.PostForm("topScorers")),
		LeastBeatenKeepers: pointer.String(c.PostForm("leastBeatenKeepers")),
		LatestNews:         pointer.String(c.PostForm("latestNews")),
		LiveStreamURL:      pointer.String(c.PostForm("liveStreamUrl")),
	}
}

func readMatches(c *gin.Context, stem string, stage int, matches []store.Match) {
	for mi := range matches {
		field := matchField(stem, stage, mi)
		if team := strings.TrimSpace(c.PostForm(field + "-team1")); team != "" {
			matches[mi].Team1 = team
		}
		if team := strings.TrimSpace(c.PostForm(field + "-team2")); team != "" {
			matches[mi].Team2 = team
		}
		matches[mi].Score1 = formInt(c.PostForm(field + "-score1"))
		matches[mi].Score2 = formInt(c.PostForm(field + "-score2"))
	}
}

func formInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
