package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"competition-service/internal/app"
	"competition-service/internal/config"
	"competition-service/internal/domain"
	"competition-service/internal/infra/memory"
	pgstore "competition-service/internal/infra/postgres"
	redisstore "competition-service/internal/infra/redis"
	"competition-service/internal/logger"
	transport "competition-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the draw server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New(level, cfg.Log.Format)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var (
		loader      memory.CompetitionLoader
		submissions app.SubmissionRepository
		results     app.ResultStore
	)
	if cfg.Postgres.URL != "" {
		db, err := openBunDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrateDB(ctx, db, log); err != nil {
			return err
		}

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		loader = pgstore.NewCompetitionLoader(pool)
		submissions = pgstore.NewSubmissionRepository(pool)
		results = pgstore.NewResultStore(db)
		log.Info("using postgres storage")
	} else {
		competitions, subs := sampleData()
		loader = memory.NewStaticCompetitionLoader(competitions)
		store := memory.NewSubmissionStore()
		store.Add(subs...)
		submissions = store
		log.Warn("postgres not configured, serving sample competitions from memory")
	}

	competitionTTL := config.TTLDuration(cfg.Competition.TTL, 10*time.Minute)
	var competitions app.CompetitionRepository
	var feeds app.FeedRepository
	if redisClient != nil {
		competitions = redisstore.NewCompetitionRepository(redisClient, loader, competitionTTL)
		feedStore := redisstore.NewFeedStore(redisClient, log)
		stopRelay, err := feedStore.Relay(ctx)
		if err != nil {
			return err
		}
		defer stopRelay()
		feeds = feedStore
		if results == nil {
			results = redisstore.NewResultStore(redisClient)
		}
	} else {
		competitions = memory.NewCompetitionRepository(loader, competitionTTL)
		feeds = memory.NewFeedStore()
	}
	if results == nil {
		results = memory.NewResultStore()
	}

	service := app.NewDrawService(competitions, submissions, results, feeds, app.DrawSettings{
		EarlyBonus:     cfg.Draw.EarlyBonus,
		DefaultWinners: cfg.Draw.DefaultWinners,
	}, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	transport.NewDrawHandler(service, log).Register(mux)
	mux.HandleFunc("/ws", transport.NewWSHandler(service, log).ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting competition service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleData seeds one open competition so the memory mode has something to draw.
func sampleData() (map[string]domain.Competition, []domain.Submission) {
	endsAt := time.Now().UTC().Truncate(time.Hour)
	startsAt := endsAt.Add(-7 * 24 * time.Hour)
	competitions := map[string]domain.Competition{
		"demo": {
			ID:                "demo",
			Title:             "Demo Quiz",
			StartsAt:          startsAt,
			EndsAt:            endsAt,
			WeightMode:        domain.WeightTicketsWithBonus,
			MinCorrectAnswers: 1,
			WinnerCount:       2,
			EarlyBonus:        domain.EarlyBonusConfig{MaxMultiplier: 2, DecayFunction: domain.DecayLinear},
		},
	}
	submissions := []domain.Submission{
		{ID: "demo-1", CompetitionID: "demo", ParticipantName: "Alice", CorrectAnswers: 5, Tickets: 3, SubmittedAt: startsAt.Add(6 * time.Hour)},
		{ID: "demo-2", CompetitionID: "demo", ParticipantName: "Bob", CorrectAnswers: 4, Tickets: 1, SubmittedAt: startsAt.Add(3 * 24 * time.Hour)},
		{ID: "demo-3", CompetitionID: "demo", ParticipantName: "Chen", CorrectAnswers: 2, Tickets: 2, SubmittedAt: endsAt.Add(-2 * time.Hour)},
		{ID: "demo-4", CompetitionID: "demo", ParticipantName: "Dara", CorrectAnswers: 0, Tickets: 5, SubmittedAt: startsAt.Add(time.Hour)},
	}
	return competitions, submissions
}
