package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edunova-quiz-service/internal/app"
	"edunova-quiz-service/internal/config"
	"edunova-quiz-service/internal/domain"
	"edunova-quiz-service/internal/infra/memory"
	"edunova-quiz-service/internal/infra/postgres"
	infraredis "edunova-quiz-service/internal/infra/redis"
	"edunova-quiz-service/internal/logger"
	"edunova-quiz-service/internal/tracing"
	transport "edunova-quiz-service/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

const serviceName = "edunova-quiz-service"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// storage groups the write and read side ports; both backends provide all of them.
type storage interface {
	app.UnitOfWork
	app.QuizWriter
	app.SubmissionReader
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Tracing.Enabled {
		shutdownTracing, err := tracing.Setup(os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Warn("tracer shutdown failed", "error", err)
			}
		}()
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var (
		store  storage
		loader memory.QuizLoader
		db     *bun.DB
		pool   *pgxpool.Pool
	)
	if cfg.Postgres.URL != "" {
		db, err = openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrateDB(ctx, db, log); err != nil {
			return err
		}

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()

		store = postgres.NewStore(db)
		loader = postgres.NewQuizLoader(pool)
		log.Info("using postgres storage")
	} else {
		mem := memory.NewStore(domain.DefaultBadgeCatalog())
		store = mem
		loader = mem
		log.Warn("postgres url not configured, using in-memory storage")
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		quizRepo = infraredis.NewQuizRepository(redisClient, loader, quizTTL, log)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	quizService := app.NewQuizService(store, quizRepo, log)
	submissionService := app.NewSubmissionService(store, store, log,
		app.WithStrictOptions(cfg.Grading.StrictOptions),
	)

	if cfg.Log.Mode == "prod" || cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(
		transport.NewHandler(quizService, submissionService, log),
		transport.RouterConfig{
			ServiceName:    serviceName,
			JWTSecret:      cfg.Auth.JWTSecret,
			AllowedOrigins: cfg.CORS.AllowedOrigins,
		},
	)
	if cfg.Auth.JWTSecret == "" {
		log.Warn("auth.jwt_secret not set, trusting X-User-ID and X-User-Role headers")
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz service", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", "error", err)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.TTLDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
