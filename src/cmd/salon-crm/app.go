package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	checkinapp "github.com/jackyeh168/salon_crm/src/internal/application/checkin"
	customerapp "github.com/jackyeh168/salon_crm/src/internal/application/customer"
	"github.com/jackyeh168/salon_crm/src/internal/application/discount"
	"github.com/jackyeh168/salon_crm/src/internal/config"
	"github.com/jackyeh168/salon_crm/src/internal/domain/checkin"
	"github.com/jackyeh168/salon_crm/src/internal/domain/customer"
	"github.com/jackyeh168/salon_crm/src/internal/domain/shared"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/logging"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/metrics"
	"github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence"
	checkinstore "github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence/checkin"
	customerstore "github.com/jackyeh168/salon_crm/src/internal/infrastructure/persistence/customer"
	"github.com/jackyeh168/salon_crm/src/internal/interfaces/httpapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================
// fx 模組
// ===========================

var configModule = fx.Module("config",
	fx.Provide(
		func() *config.Loader { return config.NewLoader() },
		func(l *config.Loader) (config.Config, error) { return l.Load() },
		config.NewHolder,
	),
)

var infrastructureModule = fx.Module("infrastructure",
	fx.Provide(
		newLogger,
		newDatabase,
		newMetrics,
		fx.Annotate(persistence.NewGORMTransactionManager, fx.As(new(shared.TransactionManager))),
		fx.Annotate(logging.NewEventPublisher, fx.As(new(shared.EventPublisher))),
		func() shared.Clock { return shared.SystemClock{} },

		fx.Annotate(customerstore.NewCustomerRepository, fx.As(new(customer.CustomerRepository))),
		fx.Annotate(customerstore.NewSalonRepository, fx.As(new(customer.SalonRepository))),
		fx.Annotate(checkinstore.NewVisitTokenRepository, fx.As(new(checkin.VisitTokenRepository))),
		fx.Annotate(checkinstore.NewVisitRepository, fx.As(new(checkin.VisitRepository))),
		fx.Annotate(checkinstore.NewReferralRewardRepository, fx.As(new(checkin.ReferralRewardRepository))),
	),
)

var applicationModule = fx.Module("application",
	fx.Provide(
		checkinapp.NewAccrualCascade,
		checkinapp.NewGetVisitTokenStatusUseCase,
		discount.NewClaimDiscountUseCase,
		customerapp.NewRegisterCustomerUseCase,
		newIssueVisitTokenUseCase,
		newRedeemVisitTokenUseCase,
	),
)

var httpModule = fx.Module("http",
	fx.Provide(
		httpapi.NewEnforcer,
		newAuthenticator,
		newRouter,
	),
	fx.Invoke(runHTTPServer),
)

func appOptions() []fx.Option {
	return []fx.Option{
		configModule,
		infrastructureModule,
		applicationModule,
		httpModule,
		fx.Invoke(watchConfig),
	}
}

func newApp() *fx.App {
	opts := append(appOptions(), fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log.Named("fx")}
	}))
	return fx.New(opts...)
}

// ===========================
// Providers
// ===========================

// newLogger 建立 logger；設定檔重新載入時調整日誌層級
func newLogger(lc fx.Lifecycle, cfg config.Config, holder *config.Holder) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	log, err := logging.New(lc, logging.Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.Version,
		Level:         cfg.Log.Level,
		Format:        cfg.Log.Format,
		IncludeCaller: !cfg.IsProduction(),
		AtomicLevel:   &level,
	})
	if err != nil {
		return nil, err
	}

	holder.OnChange(func(updated config.Config) {
		if err := level.UnmarshalText([]byte(updated.Log.Level)); err != nil {
			log.Warn("ignore invalid log level", zap.String("level", updated.Log.Level), zap.Error(err))
			return
		}
		log.Info("log level changed", zap.String("level", level.String()))
	})
	return log, nil
}

func newDatabase(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	models := append(customerstore.Models(), checkinstore.Models()...)
	db, err := persistence.Open(persistence.DatabaseConfig{
		Type:            cfg.Database.Type,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logging.NewGormLogger(log, logging.DefaultGormLoggerConfig()), models...)
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled && cfg.Metrics.DBStats {
		if err := persistence.EnableDBStats(db, cfg.AppName, 15*time.Second); err != nil {
			log.Warn("db stats disabled", zap.Error(err))
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return persistence.Close(db)
		},
	})
	return db, nil
}

type metricsOut struct {
	fx.Out

	Checkin  checkinapp.Metrics
	Discount discount.Metrics
	Handler  http.Handler `name:"metrics_handler"`
}

func newMetrics(cfg config.Config) metricsOut {
	if !cfg.Metrics.Enabled {
		return metricsOut{
			Checkin:  checkinapp.NopMetrics{},
			Discount: discount.NopMetrics{},
			Handler:  http.NotFoundHandler(),
		}
	}

	m := metrics.NewCheckinMetrics(prometheus.DefaultRegisterer, metrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
	return metricsOut{Checkin: m, Discount: m, Handler: promhttp.Handler()}
}

func newIssueVisitTokenUseCase(
	tokens checkin.VisitTokenRepository,
	customers customer.CustomerRepository,
	clock shared.Clock,
	m checkinapp.Metrics,
	log *zap.Logger,
	cfg config.Config,
) *checkinapp.IssueVisitTokenUseCase {
	return checkinapp.NewIssueVisitTokenUseCase(tokens, customers, clock, m, log, checkinapp.IssueConfig{
		BaseURL:  cfg.Checkin.PublicBaseURL,
		TokenTTL: cfg.Checkin.TokenTTL,
	})
}

func newRedeemVisitTokenUseCase(
	tokens checkin.VisitTokenRepository,
	visits checkin.VisitRepository,
	customers customer.CustomerRepository,
	txManager shared.TransactionManager,
	cascade *checkinapp.AccrualCascade,
	publisher shared.EventPublisher,
	clock shared.Clock,
	m checkinapp.Metrics,
	log *zap.Logger,
	cfg config.Config,
) *checkinapp.RedeemVisitTokenUseCase {
	return checkinapp.NewRedeemVisitTokenUseCase(tokens, visits, customers, txManager, cascade,
		publisher, clock, m, log, checkinapp.RedeemConfig{AtomicClaim: cfg.Checkin.AtomicClaim})
}

func newAuthenticator(cfg config.Config, enforcer *casbin.SyncedEnforcer, log *zap.Logger) *httpapi.Authenticator {
	return httpapi.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, enforcer, log)
}

type routerParams struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	DB       *gorm.DB
	Auth     *httpapi.Authenticator
	Redeem   *checkinapp.RedeemVisitTokenUseCase
	Issue    *checkinapp.IssueVisitTokenUseCase
	Status   *checkinapp.GetVisitTokenStatusUseCase
	Claim    *discount.ClaimDiscountUseCase
	Register *customerapp.RegisterCustomerUseCase
	Metrics  http.Handler `name:"metrics_handler"`
}

func newRouter(p routerParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	deps := httpapi.Dependencies{
		Redeemer:    p.Redeem,
		Issuer:      p.Issue,
		StatusQuery: p.Status,
		Claimer:     p.Claim,
		Registrar:   p.Register,
		Auth:        p.Auth,
		Health: func(ctx context.Context) error {
			sqlDB, err := p.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if p.Config.Metrics.Enabled {
		deps.Metrics = p.Metrics
	}

	return httpapi.NewRouter(httpapi.RouterConfig{
		Version:     p.Config.Version,
		CORSOrigins: p.Config.HTTP.CORSOrigins,
		QRCode: httpapi.QRCodeConfig{
			Endpoint: p.Config.QRCode.Endpoint,
			Size:     p.Config.QRCode.Size,
		},
	}, deps, p.Log)
}

// ===========================
// Invokers
// ===========================

func runHTTPServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg config.Config, engine *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

func watchConfig(loader *config.Loader, holder *config.Holder, log *zap.Logger) {
	loader.Watch(holder, log.Named("config"))
}
