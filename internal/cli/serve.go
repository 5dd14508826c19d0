package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anacarcan/prueba/internal/config"
	"github.com/anacarcan/prueba/internal/game"
	"github.com/anacarcan/prueba/internal/infra/memory"
	pgstore "github.com/anacarcan/prueba/internal/infra/postgres"
	redisinfra "github.com/anacarcan/prueba/internal/infra/redis"
	sqlitestore "github.com/anacarcan/prueba/internal/infra/sqlite"
	"github.com/anacarcan/prueba/internal/transport/tcpserv"
	"github.com/anacarcan/prueba/internal/transport/wsbridge"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "65001"
	}

	gameCfg := gameConfig(cfg)

	players, games, loader, cleanup, err := buildStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	source := buildQuestionSource(cfg, loader)

	service := game.NewService(gameCfg, players, games, source)

	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go service.Run(serveCtx)

	errCh := make(chan error, 2)

	server := tcpserv.NewServer(service)
	go func() {
		errCh <- server.ListenAndServe(serveCtx, ":"+finalPort)
	}()

	var httpServer *http.Server
	if cfg.Server.WSPort != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("ok"))
		})
		mux.HandleFunc("/play", wsbridge.NewHandler(service).ServePlay)
		httpServer = &http.Server{Addr: ":" + cfg.Server.WSPort, Handler: mux}
		go func() {
			log.Printf("websocket bridge listening on :%s", cfg.Server.WSPort)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	case err := <-errCh:
		return err
	}

	cancel()
	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}
	return nil
}

func gameConfig(cfg config.Config) game.Config {
	out := game.DefaultConfig()
	out.AnswerTimeout = config.Duration(cfg.Game.AnswerTimeout, out.AnswerTimeout)
	out.RoundPause = config.Duration(cfg.Game.RoundPause, out.RoundPause)
	out.AnnouncePause = config.Duration(cfg.Game.AnnouncePause, out.AnnouncePause)
	out.MatchFoundPause = config.Duration(cfg.Game.MatchFoundPause, out.MatchFoundPause)
	out.TickInterval = config.Duration(cfg.Game.TickInterval, out.TickInterval)
	out.WaitThreshold = config.Duration(cfg.Game.WaitThreshold, out.WaitThreshold)
	if cfg.Game.QuestionsPerGame > 0 {
		out.QuestionsPerGame = cfg.Game.QuestionsPerGame
	}
	return out
}

// buildStorage picks the record store: Postgres when configured, otherwise
// the embedded sqlite file, otherwise memory.
func buildStorage(ctx context.Context, cfg config.Config) (game.PlayerStore, game.GameRecorder, memory.CategoryLoader, func(), error) {
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, nil, nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		store := pgstore.NewStore(pool)
		log.Printf("using postgres storage")
		return store, store, store, pool.Close, nil
	}

	if cfg.SQLite.Path != "" {
		store, err := sqlitestore.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		log.Printf("using sqlite storage at %s", cfg.SQLite.Path)
		return store, store, store, func() { _ = store.Close() }, nil
	}

	store := memory.NewStore()
	loader, err := memory.NewBundledLoader()
	if err != nil {
		return nil, nil, nil, nil, err
	}
	log.Printf("using in-memory storage")
	return store, store, loader, func() {}, nil
}

func buildQuestionSource(cfg config.Config, loader memory.CategoryLoader) game.QuestionSource {
	ttl := config.Duration(cfg.Redis.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Printf("using redis question cache at %s", cfg.Redis.Addr)
		return redisinfra.NewQuestionCache(client, loader, ttl)
	}
	return memory.NewQuestionCache(loader, ttl)
}
