// Command walletwatch is a wallet monitoring dashboard. It authenticates against the
// wallet backend, shows the wallet's transactions and overlays CoinGecko market data,
// either in the browser or in the terminal.
//
// Usage:
//
//	walletwatch --config config.yaml
//	walletwatch --mode tui --backend http://localhost:5001
//
// Optional environment variables (also read from .env):
//
//	COINGECKO_API_KEY, WALLETWATCH_BACKEND_URL, COINGECKO_REQUESTS_PER_MINUTE
package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cryptoguard/walletwatch/config"
	"github.com/cryptoguard/walletwatch/internal/clients"
	"github.com/cryptoguard/walletwatch/internal/gateway"
	"github.com/cryptoguard/walletwatch/internal/orchestrator"
	"github.com/cryptoguard/walletwatch/internal/session"
	"github.com/cryptoguard/walletwatch/internal/tui"
	"github.com/cryptoguard/walletwatch/internal/web"
	"github.com/cryptoguard/walletwatch/pkg/retrier"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := newGateway(cfg, logger)
	dashboardOpts := []orchestrator.Option{
		orchestrator.WithTopCoins(cfg.TopCoins),
		orchestrator.WithHistoryDays(cfg.HistoryDays),
		orchestrator.WithComparisonSize(cfg.ComparisonSize),
	}
	if cfg.SyntheticComparison {
		dashboardOpts = append(dashboardOpts, orchestrator.WithSyntheticComparison(rand.New(rand.NewSource(time.Now().UnixNano()))))
	}

	switch cfg.Mode {
	case config.ModeTUI:
		holder := session.NewHolder(session.NewStore(), gw, logger)
		app := tui.New(
			holder,
			orchestrator.NewDashboard(gw, holder, logger, dashboardOpts...),
			orchestrator.NewLogs(gw, logger),
			logger,
		)
		if err := app.Run(ctx); err != nil {
			logger.Fatal("terminal ui", zap.Error(err))
		}
	default:
		srv := web.NewServer(cfg.Listen, gw, logger,
			web.WithDashboardOptions(dashboardOpts...),
			web.WithIdleTTL(cfg.SessionTTL),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if cfg.AutoTLS {
				return srv.StartWithAutoTLS(gctx, cfg.Domains, cfg.CertCache)
			}
			return srv.Start(gctx)
		})
		logger.Info("started",
			zap.String("listen", cfg.Listen),
			zap.String("backend", cfg.BackendURL),
			zap.Bool("auto_tls", cfg.AutoTLS),
		)
		if err := g.Wait(); err != nil {
			logger.Fatal("web server", zap.Error(err))
		}
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.LogLevel == "debug" {
		return zap.NewDevelopment()
	}

	zc := zap.NewProductionConfig()
	if err := zc.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, err
	}
	if cfg.Mode == config.ModeTUI {
		// keep the terminal clean for the forms
		zc.OutputPaths = []string{"walletwatch.log"}
	}
	return zc.Build()
}

func newGateway(cfg config.Config, logger *zap.Logger) *gateway.Gateway {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	backend := clients.NewBackendClient(cfg.BackendURL, httpClient)
	market := clients.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.CoinGeckoAPIKey, cfg.RequestsPerMinute, httpClient)

	return gateway.New(backend, market, logger,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithRetrier(retrier.New(
			retrier.WithMaxRetries(cfg.MaxRetries),
			retrier.WithRetryIf(clients.IsRetryable),
			retrier.WithOnRetry(func(attempt int, err error) {
				logger.Debug("retrying market data request", zap.Int("attempt", attempt), zap.Error(err))
			}),
		)),
	)
}
