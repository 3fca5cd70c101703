package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/suggestion-board/internal/auth"
	"github.com/evcraddock/suggestion-board/internal/board"
	"github.com/evcraddock/suggestion-board/internal/config"
	"github.com/evcraddock/suggestion-board/internal/events"
	"github.com/evcraddock/suggestion-board/internal/events/natspub"
	"github.com/evcraddock/suggestion-board/internal/logging"
	"github.com/evcraddock/suggestion-board/internal/notify"
	"github.com/evcraddock/suggestion-board/internal/storage/postgres"
	"github.com/evcraddock/suggestion-board/internal/storage/sqlite"
	"github.com/evcraddock/suggestion-board/internal/web"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API server. Configuration comes from SB_* environment variables and an optional .env file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			cfg = storeConfig(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default: SB_ADDR or :3001)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional .env file to load")

	return cmd
}

// storeHandle is the opened store with the database/sql handle that the
// API key store shares.
type storeHandle struct {
	store board.Store
	db    *sql.DB
	close func() error
}

func openStore(ctx context.Context, cfg config.Config) (*storeHandle, error) {
	if cfg.DatabaseURL != "" {
		s, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return &storeHandle{store: s, db: s.DB(), close: s.Close}, nil
	}

	s, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite store: %w", err)
	}
	return &storeHandle{store: s, db: s.DB(), close: s.Close}, nil
}

func runServe(ctx context.Context, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.DevMode, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	reportErrors := false
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: "sb@" + Version,
		}); err != nil {
			log.Warn("sentry disabled", zap.Error(err))
		} else {
			reportErrors = true
			defer sentry.Flush(2 * time.Second)
		}
	}

	h, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := h.close(); cerr != nil {
			log.Warn("closing store", zap.Error(cerr))
		}
	}()

	bus := events.NewBus(log)
	if cfg.NATSURL != "" {
		pub, nc, err := natspub.Connect(cfg.NATSURL, log)
		if err != nil {
			return err
		}
		defer nc.Close()
		bus.Subscribe("nats", pub.Handle)
	}
	var contactSender web.ContactSender
	if cfg.TelegramEnabled() {
		bot, err := notify.NewBot(cfg.TelegramToken)
		if err != nil {
			return err
		}
		tg := notify.NewTelegram(bot, cfg.TelegramChatIDs, log)
		bus.Subscribe("telegram", tg.Handle)
		contactSender = tg
	}

	svc := board.NewService(h.store,
		board.WithAuthorizer(auth.ContextAuthorizer{}),
		board.WithPublisher(bus),
		board.WithLogger(log),
		board.WithTimeout(cfg.StoreTimeout),
	)

	var tokens *auth.Tokens
	if cfg.JWTSecret != "" {
		tokens = &auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	}

	srv := web.NewServer(web.Options{
		Service:      svc,
		Tokens:       tokens,
		Admin:        auth.AdminLogin{Login: cfg.AdminLogin, PasswordHash: cfg.AdminPasswordHash},
		Keys:         auth.NewAPIKeyStore(h.db),
		Contact:      contactSender,
		CORSOrigins:  cfg.CORSOrigins,
		Logger:       log,
		ReportErrors: reportErrors,
	})

	backend := "sqlite"
	if cfg.DatabaseURL != "" {
		backend = "postgres"
	}
	log.Info("suggestion board starting",
		zap.String("addr", cfg.Addr),
		zap.String("store", backend),
		zap.Bool("admin_login", cfg.AdminLoginEnabled()),
		zap.Bool("nats", cfg.NATSURL != ""),
		zap.Bool("telegram", cfg.TelegramEnabled()),
	)

	// The bus worker and the HTTP server run side by side. When the server
	// stops, because ctx ended or it failed, it closes the bus so the
	// worker drains what is queued. A drain that overruns its deadline is
	// abandoned, which fails the group.
	runCtx, abandon := context.WithCancel(context.WithoutCancel(ctx))
	defer abandon()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bus.Run(runCtx)
	})
	g.Go(func() error {
		err := srv.ListenAndServe(gctx, cfg.Addr)

		closeCtx, cancel := context.WithTimeout(runCtx, 10*time.Second)
		defer cancel()
		if cerr := bus.Close(closeCtx); cerr != nil {
			log.Warn("event bus did not drain", zap.Error(cerr))
			abandon()
		}
		return err
	})
	serveErr := g.Wait()

	if serveErr != nil {
		return fmt.Errorf("serving: %w", serveErr)
	}
	log.Info("suggestion board stopped")
	return nil
}
