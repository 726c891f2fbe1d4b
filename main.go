package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/nvbf/torneo/pkg/auth"
	"github.com/nvbf/torneo/pkg/config"
	"github.com/nvbf/torneo/pkg/logging"
	"github.com/nvbf/torneo/pkg/metrics"
	"github.com/nvbf/torneo/repos/store"

	"github.com/nvbf/torneo/services/admin"
	"github.com/nvbf/torneo/services/bets"
	"github.com/nvbf/torneo/services/live"
	"github.com/nvbf/torneo/services/site"
	"github.com/nvbf/torneo/services/tournament"
)

type backend struct {
	tournaments store.TournamentRepository
	bets        store.BetRepository
	identity    auth.IdentityProvider
	close       func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := newBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to set up store")
	}
	defer b.close()

	sessions := auth.NewSessions([]byte(cfg.SessionSecret), cfg.AdminSessionTTL, cfg.SecureCookies)

	tournamentService := tournament.NewTournamentService(b.tournaments)
	if _, err := tournamentService.Load(ctx); err != nil {
		// The watch below still delivers the document once the store answers.
		log.Error().Err(err).Msg("Failed to load tournament")
	}
	betsService := bets.NewBetsService(b.bets)

	adminService, err := admin.NewAdminService(cfg.AdminPassword, sessions, tournamentService, betsService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up admin")
	}
	limiter := auth.NewLoginLimiter(cfg.LoginRate, cfg.LoginBurst)

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSHosts
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Access-Control-Allow-Origin"}

	router := gin.New()
	router.Use(logging.RequestLogger(), gin.Recovery(), cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		if _, ok := tournamentService.Current(); !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	identity := auth.IdentityMiddleware(b.identity, sessions)
	adminSession := auth.AdminMiddleware(sessions)

	apiRouter := router.Group("/api/v1", identity, auth.RequireIdentity())
	tournament.NewHTTPHandler(tournament.HTTPOptions{
		Service: tournamentService,
		Router:  apiRouter,
	})
	bets.NewHTTPHandler(bets.HTTPOptions{
		Service: betsService,
		Router:  apiRouter,
	})

	adminRouter := router.Group("/admin/v1", adminSession)
	admin.NewHTTPHandler(admin.HTTPOptions{
		Service:    adminService,
		Router:     adminRouter,
		Sessions:   sessions,
		LoginGuard: limiter.Middleware(),
	})

	pageRouter := router.Group("", identity, adminSession)
	live.NewHTTPHandler(live.HTTPOptions{
		Tournaments: tournamentService,
		Bets:        betsService,
		Router:      pageRouter,
	})
	err = site.NewHTTPHandler(site.HTTPOptions{
		Tournaments: tournamentService,
		Bets:        betsService,
		Admin:       adminService,
		Sessions:    sessions,
		Router:      pageRouter,
		SiteURL:     cfg.ShareURL,
		Location:    cfg.Location(),
		LoginGuard:  limiter.Middleware(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up pages")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tournamentService.Run(gctx) })
	g.Go(func() error { return betsService.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("Listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
	log.Info().Msg("Shut down")
}

func newBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn().Msg("Using the in-memory store, data is lost on restart")
		return &backend{
			tournaments: store.NewMemoryTournaments(),
			bets:        store.NewMemoryBets(),
			identity:    auth.LocalIdentity{},
			close:       func() {},
		}, nil
	}

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProjectID, opts...)
	if err != nil {
		return nil, err
	}

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		firestoreClient.Close()
		return nil, err
	}
	identity, err := auth.NewFirebaseIdentity(ctx, firebaseApp)
	if err != nil {
		firestoreClient.Close()
		return nil, err
	}

	return &backend{
		tournaments: store.NewFirestoreTournaments(firestoreClient),
		bets:        store.NewFirestoreBets(firestoreClient, cfg.AppID),
		identity:    identity,
		close:       func() { firestoreClient.Close() },
	}, nil
}
