package site

import (
	"fmt"
	"strings"
	"time"

	"github.com/nvbf/torneo/pkg/share"
	"github.com/nvbf/torneo/pkg/statsCodec"
	"github.com/nvbf/torneo/pkg/ticket"
	timehelper "github.com/nvbf/torneo/pkg/timeHelper"
	"github.com/nvbf/torneo/repos/store"
)

const (
	HomeShareText = "¡Mira la transmisión en vivo del torneo de fútbol! No te pierdas la acción."

	msgNoStream    = "Transmisión no disponible en este momento."
	msgNoNews      = "No hay noticias recientes."
	msgNoScorers   = "No hay datos de goleadores aún."
	msgNoKeepers   = "No hay datos de vallas aún."
	msgNoUserBets  = "No has realizado ninguna apuesta aún."
	msgNoBets      = "No se han realizado apuestas aún."
	msgPickBet     = "Por favor, selecciona un partido y un ganador."
	msgBetPlaced   = "¡Apuesta realizada con éxito! Tu boleto ha sido guardado."
	msgBetFailed   = "Ocurrió un error al realizar la apuesta."
	msgWrongPass   = "Contraseña incorrecta."
	msgSaved       = "Información actualizada con éxito."
	msgSaveFailed  = "Error al guardar."
	msgLoading     = "Cargando..."
	tabContent     = "main"
	tabBets        = "bets"
	groupFieldStem = "group"
	stageFieldStem = "ko"
)

type NavItem struct {
	Path   string
	Label  string
	Active bool
}

var destinations = []NavItem{
	{Path: "/", Label: "Inicio"},
	{Path: "/fixture", Label: "Fixture"},
	{Path: "/stats", Label: "Goleadores y Vallas"},
	{Path: "/media", Label: "Fotos y Videos"},
	{Path: "/bets", Label: "Apuestas"},
	{Path: "/admin", Label: "Admin"},
}

// Nav returns the navigation bar with the entry for path marked active.
func Nav(path string) []NavItem {
	items := make([]NavItem, len(destinations))
	copy(items, destinations)
	for i := range items {
		items[i].Active = items[i].Path == path
	}
	return items
}

// Page is what the layout template renders.
type Page struct {
	Title   string
	Nav     []NavItem
	Live    bool
	Refresh bool
	Content interface{}
}

type LoadingView struct {
	Message string
}

func LoadingPage() Page {
	return Page{Title: "Torneo de Fútbol", Refresh: true, Content: LoadingView{Message: msgLoading}}
}

type HomeView struct {
	StreamURL     string
	StreamMissing string
	News          string
	Shares        []share.Link
}

func HomePage(t *store.Tournament, siteURL string) HomeView {
	v := HomeView{
		StreamURL: t.LiveStreamURL,
		News:      t.LatestNews,
		Shares:    share.SiteLinks(HomeShareText, siteURL),
	}
	if v.StreamURL == "" {
		v.StreamMissing = msgNoStream
	}
	if v.News == "" {
		v.News = msgNoNews
	}
	return v
}

type MatchRow struct {
	Label string
	Score string
}

type StageView struct {
	Name    string
	Matches []MatchRow
}

type FixtureView struct {
	Groups   []StageView
	Knockout []StageView
}

func FixturePage(t *store.Tournament) FixtureView {
	var v FixtureView
	for _, g := range t.Groups {
		v.Groups = append(v.Groups, stageView(g.Name, g.Matches))
	}
	for _, s := range t.KnockoutStage {
		v.Knockout = append(v.Knockout, stageView(s.Name, s.Matches))
	}
	return v
}

func stageView(name string, matches []store.Match) StageView {
	rows := make([]MatchRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, MatchRow{
			Label: m.Label(),
			Score: fmt.Sprintf("%d - %d", m.Score1, m.Score2),
		})
	}
	return StageView{Name: name, Matches: rows}
}

type StatRow struct {
	Rank  int
	Name  string
	Value string
}

type StatsView struct {
	Scorers   []StatRow
	Keepers   []StatRow
	NoScorers string
	NoKeepers string
}

// StatsPage lists scorers and keepers in stored order.
func StatsPage(t *store.Tournament) StatsView {
	v := StatsView{}
	for i, p := range t.TopScorers {
		v.Scorers = append(v.Scorers, StatRow{Rank: i + 1, Name: p.Name, Value: fmt.Sprintf("%d goles", p.Goals)})
	}
	for i, k := range t.LeastBeatenKeepers {
		v.Keepers = append(v.Keepers, StatRow{Rank: i + 1, Name: k.Name, Value: fmt.Sprintf("%d goles en contra", k.GoalsConceded)})
	}
	if len(v.Scorers) == 0 {
		v.NoScorers = msgNoScorers
	}
	if len(v.Keepers) == 0 {
		v.NoKeepers = msgNoKeepers
	}
	return v
}

type Photo struct {
	URL         string
	Description string
}

func unsplash(id string) string {
	return "https://images.unsplash.com/" + id + "?q=80&w=2940&auto=format&fit=crop"
}

// Photos is the fixed gallery.
var Photos = []Photo{
	{URL: unsplash("photo-1517466801968-3e421043325e"), Description: "Celebración del equipo ganador"},
	{URL: unsplash("photo-1510425330882-628d4e9d727b"), Description: "Jugadores en el campo"},
	{URL: unsplash("photo-1549480111-e25f82216a9a"), Description: "Foto del equipo finalista"},
	{URL: unsplash("photo-1506180327318-62d08a562470"), Description: "Entrada de los equipos"},
}

type PhotoView struct {
	Photo
	Shares []share.Link
}

type MediaView struct {
	Photos []PhotoView
}

func MediaPage() MediaView {
	v := MediaView{Photos: make([]PhotoView, 0, len(Photos))}
	for _, p := range Photos {
		v.Photos = append(v.Photos, PhotoView{Photo: p, Shares: share.PhotoLinks(p.Description, p.URL)})
	}
	return v
}

type MatchOption struct {
	Value    string
	Selected bool
}

type TicketRow struct {
	Ticket string
	Time   string
	Match  string
	BetOn  string
	UserID string
}

type BettingView struct {
	Matches   []MatchOption
	Selected  string
	Winners   []string
	Message   string
	Failed    bool
	Tickets   []TicketRow
	NoTickets string
}

// BettingPage builds the bet form from the group matches. Knockout matches
// are not offered. selected is the label of the chosen match, if any.
func BettingPage(t *store.Tournament, selected string, bets []store.Bet, loc *time.Location) BettingView {
	v := BettingView{}
	for _, g := range t.Groups {
		for _, m := range g.Matches {
			label := m.Label()
			v.Matches = append(v.Matches, MatchOption{Value: label, Selected: label == selected})
			if label == selected {
				v.Selected = label
				v.Winners = []string{m.Team1, m.Team2}
			}
		}
	}
	v.Tickets = ticketRows(bets, loc)
	if len(v.Tickets) == 0 {
		v.NoTickets = msgNoUserBets
	}
	return v
}

// FindGroupMatch returns the group match whose label is label.
func FindGroupMatch(t *store.Tournament, label string) (store.Match, bool) {
	for _, g := range t.Groups {
		for _, m := range g.Matches {
			if m.Label() == label {
				return m, true
			}
		}
	}
	return store.Match{}, false
}

func ticketRows(bets []store.Bet, loc *time.Location) []TicketRow {
	rows := make([]TicketRow, 0, len(bets))
	for _, b := range bets {
		rows = append(rows, TicketRow{
			Ticket: ticket.ID(b.Timestamp),
			Time:   timehelper.FormatTimestamp(b.Timestamp, loc),
			Match:  b.Match,
			BetOn:  b.BetOn,
			UserID: b.UserID,
		})
	}
	return rows
}

type AdminMatch struct {
	Field  string
	Team1  string
	Team2  string
	Score1 int
	Score2 int
}

type AdminStage struct {
	Name    string
	Matches []AdminMatch
}

type AdminView struct {
	LoggedIn  bool
	Error     string
	Notice    string
	Tab       string
	Groups    []AdminStage
	Knockout  []AdminStage
	Scorers   string
	Keepers   string
	News      string
	StreamURL string
	Bets      []TicketRow
	NoBets    string
}

// AdminLoginPage is the logged out admin panel.
func AdminLoginPage(errMsg string) AdminView {
	return AdminView{Error: errMsg}
}

// AdminPage is the logged in admin panel. The form starts from the stored
// document and is only written back when submitted.
func AdminPage(t *store.Tournament, tab string, bets []store.Bet, loc *time.Location) AdminView {
	if tab != tabBets {
		tab = tabContent
	}
	v := AdminView{
		LoggedIn:  true,
		Tab:       tab,
		Scorers:   statsCodec.EncodeScorers(t.TopScorers),
		Keepers:   statsCodec.EncodeKeepers(t.LeastBeatenKeepers),
		News:      t.LatestNews,
		StreamURL: t.LiveStreamURL,
		Bets:      ticketRows(bets, loc),
	}
	for gi, g := range t.Groups {
		v.Groups = append(v.Groups, adminStage(groupFieldStem, gi, g.Name, g.Matches))
	}
	for si, s := range t.KnockoutStage {
		v.Knockout = append(v.Knockout, adminStage(stageFieldStem, si, s.Name, s.Matches))
	}
	if len(v.Bets) == 0 {
		v.NoBets = msgNoBets
	}
	return v
}

func adminStage(stem string, index int, name string, matches []store.Match) AdminStage {
	stage := AdminStage{Name: name}
	for mi, m := range matches {
		stage.Matches = append(stage.Matches, AdminMatch{
			Field:  matchField(stem, index, mi),
			Team1:  m.Team1,
			Team2:  m.Team2,
			Score1: m.Score1,
			Score2: m.Score2,
		})
	}
	return stage
}

func matchField(stem string, stage, match int) string {
	return strings.Join([]string{stem, fmt.Sprint(stage), fmt.Sprint(match)}, "-")
}
