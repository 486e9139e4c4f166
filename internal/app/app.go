package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/beautymart/internal/adapter/gateway"
	"github.com/polkiloo/beautymart/internal/config"
	"github.com/polkiloo/beautymart/internal/domain/model"
	"github.com/polkiloo/beautymart/internal/worker"
)

const readHeaderTimeout = 10 * time.Second

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewStorefrontFacade,
		newHTTPServer,
		newPendingSweeper,
		func(r *gateway.Registry) PaymentReadiness { return r },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.RunAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

type workerParams struct {
	fx.In

	Facade *StorefrontFacade
	Config *config.Config
	Logger *slog.Logger
}

func newPendingSweeper(p workerParams) *worker.PendingSweeper {
	return worker.NewPendingSweeper(
		p.Facade,
		p.Config.Sweeper.PendingTTL,
		p.Config.Sweeper.Interval,
		p.Config.Sweeper.BatchSize,
		p.Config.Sweeper.Workers,
		p.Logger,
	)
}

// PaymentReadiness reports which payment gateways can take orders.
type PaymentReadiness interface {
	Readiness() map[model.PaymentMethod]error
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Sweeper    *worker.PendingSweeper
	Gateways   PaymentReadiness
	Config     *config.Config
}

var listen = net.Listen

// registerLifecycle binds the listener up front so a busy address fails start.
// On stop the server drains first so in-flight callbacks settle before the
// sweeper goes away.
func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			methods := reportPayments(p.Logger, p.Gateways, p.Config.ClientURL)

			ln, err := listen("tcp", p.Server.Addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", p.Server.Addr, err)
			}
			p.Logger.Info("starting beautymart",
				slog.String("addr", ln.Addr().String()),
				slog.Any("payment_methods", methods),
				slog.Duration("pending_ttl", p.Config.Sweeper.PendingTTL),
			)

			p.Sweeper.Start(ctx)
			go func() {
				if err := p.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Sweeper.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("beautymart stopped")
			return nil
		},
	})
}

// reportPayments logs gateway availability and returns the methods customers
// can check out with. Cash on delivery is always available.
func reportPayments(logger *slog.Logger, gateways PaymentReadiness, clientURL string) []string {
	methods := []string{string(model.PaymentCOD)}
	if gateways == nil {
		return methods
	}

	readiness := gateways.Readiness()
	names := make([]string, 0, len(readiness))
	for method := range readiness {
		names = append(names, string(method))
	}
	sort.Strings(names)

	for _, name := range names {
		if err := readiness[model.PaymentMethod(name)]; err != nil {
			logger.Warn("payment gateway disabled", slog.String("method", name), slog.String("reason", err.Error()))
			continue
		}
		methods = append(methods, name)
	}

	if len(methods) > 1 && clientURL == "" {
		logger.Warn("client url not set, payment redirects follow the request origin")
	}
	return methods
}
