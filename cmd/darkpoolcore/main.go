// Command darkpoolcore is the process entrypoint wiring the durable store,
// the external-session coordinator, the matching engine, and the
// settlement worker behind the thin HTTP gateway, following spec §9's
// startup order: durable pool, coordinator connection, asset map load,
// matcher start, settlement worker start, gateway open. Grounded on the
// teacher's cmd/gateway/main.go fx.New/fx.Supply/fx.Invoke shape.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/book"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/chain"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/commitment"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/coordinator"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/gateway"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/matching"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/metrics"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/notify"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/settlement"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/store"
	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/zkproof"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration directory")
	flag.Parse()

	app := fx.New(
		fx.Provide(func() (*config.Config, error) {
			return config.Load(*configPath)
		}),
		fx.Provide(newLogger),
		fx.Provide(newStore),
		fx.Provide(newChainClient),
		fx.Provide(newHasher),
		fx.Provide(newProofGenerator),
		fx.Provide(newBookSet),
		fx.Provide(newMetricsCollector),
		fx.Provide(newNotifySink),
		fx.Provide(newAssetMap),
		fx.Provide(newCoordinator),
		fx.Provide(newEngine),
		fx.Provide(newSettlementWorker),
		gateway.Module,
		fx.Invoke(registerCoreLifecycle),
		fx.Invoke(func(server *gateway.Server, logger *zap.Logger) {
			logger.Info("darkpoolcore gateway started")
		}),
	)

	app.Run()
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

func newStore(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	return store.Open(cfg.Store.DSN, logger)
}

func newChainClient(cfg *config.Config) chain.Client {
	return chain.NewJSONRPCClient(cfg.Chain.RPCURL, cfg.Chain.RouterAddress, cfg.Chain.CustodyAddress, cfg.Chain.ChainID)
}

func newHasher() commitment.Hasher {
	return commitment.NewPoseidonStub()
}

func newProofGenerator() zkproof.Generator {
	return zkproof.NewPlaceholderGenerator()
}

func newBookSet() *book.Set {
	return book.NewSet()
}

func newMetricsCollector() *metrics.Collector {
	return metrics.New()
}

// newNotifySink dials NATS when configured, falling back to a no-op sink in
// test mode (no notify.nats_url set), mirroring the chain client's
// router/custody-address "unset -> skipped" test-mode convention.
func newNotifySink(cfg *config.Config) (notify.Sink, error) {
	if cfg.Notify.NatsURL == "" {
		return notify.NoopSink{}, nil
	}
	sink, err := notify.NewNatsSink(cfg.Notify.NatsURL, cfg.Notify.TopicPrefix)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

func newAssetMap(cfg *config.Config) *coordinator.AssetMap {
	return coordinator.NewAssetMap(cfg.Chain.ChainID)
}

func newCoordinator(cfg *config.Config, logger *zap.Logger, metricsCollector *metrics.Collector) (*coordinator.Coordinator, error) {
	walletD, err := parseWalletKey(cfg.Chain.EngineWalletKey)
	if err != nil {
		return nil, fmt.Errorf("darkpoolcore: parsing engine wallet key: %w", err)
	}
	engineSigner := coordinator.NewECDSASigner(walletD)
	engineTyped := coordinator.NewEIP712Signer(walletD)
	return coordinator.New(cfg.Coordinator, engineSigner, engineTyped, logger, metricsCollector), nil
}

func parseWalletKey(raw string) (*big.Int, error) {
	d, ok := new(big.Int).SetString(strings.TrimPrefix(raw, "0x"), 16)
	if !ok {
		return nil, fmt.Errorf("wallet key is not valid hex: %q", raw)
	}
	return d, nil
}

func newEngine(
	cfg *config.Config,
	st *store.Store,
	books *book.Set,
	chainClient chain.Client,
	hasher commitment.Hasher,
	logger *zap.Logger,
	metricsCollector *metrics.Collector,
) *matching.Engine {
	return matching.New(*cfg, st, books, chainClient, hasher, logger, metricsCollector)
}

func newSettlementWorker(
	cfg *config.Config,
	st *store.Store,
	chainClient chain.Client,
	proofGen zkproof.Generator,
	coord *coordinator.Coordinator,
	assets *coordinator.AssetMap,
	sink notify.Sink,
	logger *zap.Logger,
	metricsCollector *metrics.Collector,
) (*settlement.Worker, error) {
	return settlement.New(cfg.Settlement, cfg.Chain, st, chainClient, proofGen, coord, assets, sink, logger, metricsCollector)
}

// registerCoreLifecycle appends the process's startup/shutdown hooks in
// spec §9's order: durable pool migrate, coordinator connect + asset map
// load, matcher rehydrate + start, settlement worker start. fx runs
// OnStart hooks in append order and OnStop hooks in reverse, so appending
// here (before the gateway.Server invoke resolves) puts the gateway's own
// listen/shutdown hook last/first respectively.
func registerCoreLifecycle(
	lc fx.Lifecycle,
	st *store.Store,
	coord *coordinator.Coordinator,
	assets *coordinator.AssetMap,
	engine *matching.Engine,
	worker *settlement.Worker,
	logger *zap.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := st.Migrate(ctx); err != nil {
				return fmt.Errorf("darkpoolcore: migrating durable store: %w", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return st.Close()
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := coord.Start(ctx); err != nil {
				return fmt.Errorf("darkpoolcore: connecting to clearing network: %w", err)
			}
			if err := coord.LoadAssetMap(ctx, assets); err != nil {
				return fmt.Errorf("darkpoolcore: loading asset map: %w", err)
			}
			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := engine.RehydrateBooks(ctx); err != nil {
				return fmt.Errorf("darkpoolcore: rehydrating order books: %w", err)
			}
			engine.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			engine.Stop()
			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			worker.Start(ctx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			worker.Stop()
			return nil
		},
	})

	logger.Info("darkpoolcore core lifecycle registered")
}
