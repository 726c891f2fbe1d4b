package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BetsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "bets_placed_total",
		Help:      "Bets written to the ledger.",
	})

	BetFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "bet_failures_total",
		Help:      "Bets rejected or failed to persist.",
	})

	TournamentSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "tournament_saves_total",
		Help:      "Tournament document replacements by result.",
	}, []string{"result"})

	AdminLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "admin_logins_total",
		Help:      "Admin login attempts by result.",
	}, []string{"result"})

	IdentitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "identities_created_total",
		Help:      "Anonymous identities minted for cookieless requests, by result.",
	}, []string{"result"})

	LiveClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "torneo",
		Name:      "live_clients",
		Help:      "Open websocket connections.",
	})

	SnapshotsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "torneo",
		Name:      "snapshots_received_total",
		Help:      "Store change notifications by source.",
	}, []string{"source"})
)

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
