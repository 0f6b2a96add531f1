package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warden/internal/audit"
	"warden/internal/identity/events"
	"warden/internal/identity/handler"
	"warden/internal/identity/metrics"
	"warden/internal/identity/password"
	"warden/internal/identity/service"
	"warden/internal/identity/store/authaccount"
	"warden/internal/identity/store/directory"
	"warden/internal/identity/store/memtx"
	"warden/internal/identity/store/session"
	"warden/internal/identity/store/user"
	"warden/internal/identity/store/verification"
	"warden/internal/mail"
	"warden/internal/platform/config"
	"warden/internal/platform/database"
	"warden/internal/platform/health"
	"warden/internal/platform/kafka/producer"
	redisplatform "warden/internal/platform/redis"
	"warden/internal/token"
	id "warden/pkg/domain"
	"warden/pkg/platform/circuit"
	"warden/pkg/platform/middleware/caller"
	"warden/pkg/platform/middleware/request"
)

var (
	_ handler.Service            = (*service.Service)(nil)
	_ caller.APIKeyAuthenticator = (*service.Service)(nil)
)

// app owns the process-wide dependencies and releases them in reverse order.
type app struct {
	cfg      config.Server
	log      *slog.Logger
	registry *prometheus.Registry
	health   *health.Handler
	closers  []func() error
}

func newApp(cfg config.Server, log *slog.Logger) *app {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		health:   health.New(cfg.Environment),
	}
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("failed to release dependency", "error", err)
		}
	}
}

func (a *app) build(ctx context.Context) (http.Handler, error) {
	svc, err := a.identity(ctx)
	if err != nil {
		return nil, err
	}
	proxies, err := a.cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Clock)
	r.Use(request.ClientMetadata(proxies))
	r.Use(request.Logger(a.log))
	r.Use(request.Recovery(a.log))
	r.Use(request.Latency(request.NewMetrics(a.registry)))
	r.Use(request.BodyLimit(a.cfg.MaxBodyBytes))
	r.Use(request.Timeout(a.cfg.RequestTimeout))

	a.health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(caller.Require(svc, a.serviceTokens(), a.log))
		handler.New(svc, a.log).Register(r)
	})
	return r, nil
}

// serviceTokens is nil when no signing secret is configured, which leaves
// API keys as the only credential.
func (a *app) serviceTokens() *caller.ServiceTokens {
	if a.cfg.Security.ServiceTokenSecret == "" {
		return nil
	}
	return caller.NewServiceTokens([]byte(a.cfg.Security.ServiceTokenSecret), a.cfg.Security.ServiceTokenIssuer)
}

func (a *app) identity(ctx context.Context) (*service.Service, error) {
	deps, auditStore, err := a.stores(ctx)
	if err != nil {
		return nil, err
	}
	publisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(a.log))

	subscribers := []events.Subscriber{events.NewAuditSubscriber(publisher)}
	if len(a.cfg.Kafka.Brokers) > 0 {
		kafkaCfg := producer.DefaultConfig(strings.Join(a.cfg.Kafka.Brokers, ","))
		kafkaCfg.DeliveryTimeout = a.cfg.Kafka.ProduceTimeout
		p, err := producer.New(kafkaCfg, a.log)
		if err != nil {
			return nil, err
		}
		a.onClose(p.Close)
		a.health.RegisterCheck("kafka", p.Health)
		subscribers = append(subscribers, events.NewKafkaSubscriber(p, a.cfg.Kafka.UserEventsTopic))
	}
	deps.Events = events.NewDispatcher(events.WithLogger(a.log), events.WithSubscribers(subscribers...))

	if a.cfg.Rabbit.URL != "" {
		mailer, err := mail.DialRabbit(a.cfg.Rabbit.URL, a.cfg.Rabbit.MailExchange)
		if err != nil {
			return nil, err
		}
		a.onClose(mailer.Close)
		a.health.RegisterCheck("rabbitmq", mailer.Health)
		deps.Mailer = mail.NewResilientMailer(mailer, circuit.New("rabbitmq_mail"), a.log)
	} else {
		deps.Mailer = mail.NewLogMailer(a.log)
	}

	secret, err := a.cfg.TokenSecret()
	if err != nil {
		return nil, err
	}
	tokens, err := token.New(secret)
	if err != nil {
		return nil, fmt.Errorf("init tokens: %w", err)
	}
	deps.Tokens = tokens
	deps.Passwords = password.NewHasher(a.cfg.Identity.PasswordMinLength)

	return service.New(deps, service.Config{
		DefaultEntity:     id.EntityID(a.cfg.Identity.DefaultEntity),
		BaseUserGroup:     id.GroupID(a.cfg.Identity.BaseUserGroupID),
		Origin:            a.cfg.Identity.Origin,
		DefaultRights:     a.cfg.Identity.DefaultRights,
		DefaultEmailFrom:  a.cfg.Identity.DefaultEmailFrom,
		ResetSenderUserID: id.UserID(a.cfg.Identity.ResetSenderUserID),
	},
		service.WithLogger(a.log),
		service.WithMetrics(metrics.New(a.registry)),
		service.WithAuditEmitter(publisher),
	)
}

// stores selects the persistence backends. Sessions may live in Redis while
// everything else stays in Postgres.
func (a *app) stores(ctx context.Context) (service.Deps, audit.Store, error) {
	var deps service.Deps
	var auditStore audit.Store

	switch a.cfg.StoreBackend {
	case config.StoreBackendMemory:
		var groups []id.GroupID
		if a.cfg.Identity.BaseUserGroupID > 0 {
			groups = append(groups, id.GroupID(a.cfg.Identity.BaseUserGroupID))
		}
		deps.Users = user.NewInMemoryUserStore(groups...)
		deps.Directory = directory.NewInMemory()
		deps.Accounts = authaccount.NewInMemory()
		deps.Verification = verification.NewInMemory()
		deps.Tx = memtx.New()
		auditStore = audit.NewInMemoryStore()
		if a.cfg.MemorySessions() {
			deps.Sessions = session.NewInMemory()
		}
		a.log.Warn("using in-memory stores; data is lost on restart")

	default:
		pool, err := database.New(ctx, a.cfg.Database)
		if err != nil {
			return deps, nil, err
		}
		a.onClose(pool.Close)
		a.health.RegisterCheck("database", pool.Health)
		a.registry.MustRegister(pool.Collector())
		if err := database.Migrate(ctx, pool.DB()); err != nil {
			return deps, nil, err
		}
		db := pool.DB()
		deps.Users = user.NewPostgres(db)
		deps.Directory = directory.NewPostgres(db)
		deps.Accounts = authaccount.NewPostgres(db)
		deps.Verification = verification.NewPostgres(db)
		deps.Sessions = session.NewPostgres(db)
		deps.Tx = database.NewTx(db).WithTimeout(a.cfg.RequestTimeout)
		auditStore = audit.NewPostgresStore(db)
	}

	if a.cfg.SessionBackend == config.SessionBackendRedis {
		client, err := redisplatform.New(ctx, a.cfg.Redis)
		if err != nil {
			return deps, nil, err
		}
		a.onClose(client.Close)
		a.health.RegisterCheck("redis", client.Health)
		a.registry.MustRegister(client.PoolCollector())
		deps.Sessions = session.NewRedis(client.Client)
	}
	return deps, auditStore, nil
}
