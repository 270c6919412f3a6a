package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	httpadp "civic-backoffice/internal/adapter/http"
	civicmw "civic-backoffice/internal/adapter/middleware"
	"civic-backoffice/internal/adapter/repository/mysql"
	"civic-backoffice/internal/infrastructure/cache"
	dbinfra "civic-backoffice/internal/infrastructure/db"
	"civic-backoffice/internal/infrastructure/logging"
	"civic-backoffice/internal/infrastructure/metrics"
	"civic-backoffice/internal/usecase/application"
	auditUC "civic-backoffice/internal/usecase/audit"
	"civic-backoffice/internal/usecase/identifier"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	db, err := dbinfra.Open(a.cfg)
	if err != nil {
		return err
	}
	if migrate {
		if err := dbinfra.Migrate(db); err != nil {
			return err
		}
	}
	rdb, err := cache.OpenRedis(ctx, a.cfg.RedisAddr, a.cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	e := a.newServer(db, metrics.New(), civicmw.IdempotencyMiddleware(rdb, a.cfg.IdempotencyTTL()))

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + a.cfg.AppPort
		a.log.WithField("addr", addr).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer wires repositories, usecases and handlers on db. extra runs after
// the identity middleware on business routes.
func (a *app) newServer(db *gorm.DB, m *metrics.Metrics, extra ...echo.MiddlewareFunc) *echo.Echo {
	auditRepo := mysql.NewAuditRepository(db)
	recorder := auditUC.NewRecorder(auditRepo, a.log, m, a.cfg.AuditTimeout)
	uc := application.NewUsecase(
		mysql.NewApplicationRepository(db),
		mysql.NewGormUoW(db),
		identifier.NewAllocator(a.cfg.CodePrefix, a.cfg.CodeWidth, m),
		recorder,
		m,
	)

	ping := func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		middleware.Recover(),
		middleware.RequestID(),
		logging.RequestLogger(a.log),
		civicmw.Provenance(),
	)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	business := append([]echo.MiddlewareFunc{civicmw.Identity()}, extra...)
	httpadp.Register(e, httpadp.Routes{
		Health:       httpadp.NewHandler(ping),
		Applications: httpadp.NewApplicationHandler(uc),
		Audit:        httpadp.NewAuditHandler(auditUC.NewReader(auditRepo)),
	}, business...)
	return e
}
