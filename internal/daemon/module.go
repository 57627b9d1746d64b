package daemon

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/disa/internal/actions"
	"github.com/matheus3301/disa/internal/api"
	"github.com/matheus3301/disa/internal/auth"
	"github.com/matheus3301/disa/internal/bus"
	"github.com/matheus3301/disa/internal/chats"
	"github.com/matheus3301/disa/internal/config"
	"github.com/matheus3301/disa/internal/credstore"
	"github.com/matheus3301/disa/internal/disa"
	"github.com/matheus3301/disa/internal/lock"
	"github.com/matheus3301/disa/internal/logging"
	"github.com/matheus3301/disa/internal/messages"
	"github.com/matheus3301/disa/internal/profile"
	"github.com/matheus3301/disa/internal/query"
	"github.com/matheus3301/disa/internal/store"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	SocketPath string         // optional override for testing; empty = use default
	Config     *config.Config // optional; nil = read ~/.disa/config.toml
}

// Module returns the fx module for the daemon, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("daemon",
		fx.Supply(p),
		fx.Provide(
			provideConfig,
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideCredStore,
			provideSessionManager,
			provideRegistry,
			provideQueryClient,
			provideDisaClient,
			provideChats,
			provideMessages,
			provideActions,
			provideSessionService,
			provideChatService,
			provideMessageService,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideConfig(p Params) (*config.Config, error) {
	if p.Config != nil {
		return p.Config, nil
	}
	return config.LoadOrDefault(profile.ConfigPath())
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(profile.LogPath(p.Profile), p.Profile)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore takes the lock so the database is never opened by a second daemon.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.AppDBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	if n, err := db.PurgeExpired(time.Now()); err != nil {
		logger.Warn("purge expired credentials", zap.Error(err))
	} else if n > 0 {
		logger.Info("expired credentials purged", zap.Int64("rows", n))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideCredStore(db *store.DB, logger *zap.Logger) *credstore.Store {
	return credstore.New(db, logger)
}

func provideSessionManager(creds *credstore.Store, b *bus.Bus, cfg *config.Config, logger *zap.Logger) *auth.Manager {
	return auth.NewManager(creds, b, cfg.CredentialTTL.Duration, logger)
}

func provideRegistry(b *bus.Bus) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "disa",
			Name:      "bus_dropped_events_total",
			Help:      "Events not delivered to a subscriber whose buffer was full.",
		}, func() float64 { return float64(b.Dropped()) }),
	)
	return reg
}

func provideQueryClient(reg *prometheus.Registry, logger *zap.Logger) *query.Client {
	return query.NewClient(query.NewMetrics(reg), logger)
}

func provideDisaClient(cfg *config.Config, logger *zap.Logger) *disa.Client {
	return disa.NewClient(cfg.APIURL, cfg.RequestTimeout.Duration,
		disa.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		disa.WithLogger(logger),
	)
}

func provideChats(client *disa.Client, cache *query.Client, cfg *config.Config, b *bus.Bus, logger *zap.Logger) *chats.Service {
	return chats.NewService(client, cache, chats.Config{
		StaleTime:            cfg.ChatListStale.Duration,
		Retries:              cfg.ChatListRetries,
		Backoff:              query.DefaultBackoff,
		PlaceholderAvatarURL: cfg.PlaceholderAvatarURL,
	}, b, logger)
}

func provideMessages(client *disa.Client, cache *query.Client, lists *chats.Service, cfg *config.Config, b *bus.Bus, logger *zap.Logger) *messages.Service {
	return messages.NewService(client, cache, lists, cfg.MessagesStale.Duration, b, logger)
}

func provideActions(client *disa.Client, cache *query.Client, lists *chats.Service, b *bus.Bus, logger *zap.Logger) *actions.Service {
	return actions.NewService(client, cache, lists, b, logger)
}

func provideSessionService(p Params, m *auth.Manager, client *disa.Client, cache *query.Client, b *bus.Bus, reg *prometheus.Registry, logger *zap.Logger) *api.SessionService {
	return api.NewSessionService(p.Profile, m, client, cache, b, reg, logger)
}

func provideChatService(m *auth.Manager, c *chats.Service, a *actions.Service, b *bus.Bus, logger *zap.Logger) *api.ChatService {
	return api.NewChatService(m, c, a, b, logger)
}

func provideMessageService(m *auth.Manager, msgs *messages.Service, b *bus.Bus, logger *zap.Logger) *api.MessageService {
	return api.NewMessageService(m, msgs, b, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *Server, lk *lock.Lock, db *store.DB, m *auth.Manager, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// The session must be restored before the first request is served.
			st := m.Load()
			if st.IsAuthenticated() {
				logger.Info("credentials restored", zap.String("user_id", st.User.ID))
			} else {
				logger.Info("no credentials found, sign-in required")
			}

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("gRPC server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("daemon stopped")
			return nil
		},
	})
}
