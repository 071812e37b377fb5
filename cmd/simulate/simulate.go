package simulate

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dinerozz/behavior-monitor/config"
	"github.com/dinerozz/behavior-monitor/internal/browser"
	"github.com/dinerozz/behavior-monitor/internal/scenario"
	"github.com/dinerozz/behavior-monitor/pkg/store"
	"github.com/dinerozz/behavior-monitor/pkg/transport"
	"github.com/spf13/cobra"
)

const redisNamespace = "behavior-monitor:"

type options struct {
	scenarioPath string
	store        string
	sqlitePath   string
	beacon       bool
}

func GetSimulateCmd(cfg *config.Config, logger *slog.Logger) *cobra.Command {
	opts := options{
		store:      cfg.Monitor.Store,
		sqlitePath: cfg.Monitor.SQLitePath,
	}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a YAML visit scenario through the tracker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, opts, logger)
		},
	}

	cmd.Flags().StringVarP(&opts.scenarioPath, "scenario", "s", "", "Scenario file (YAML)")
	cmd.Flags().StringVar(&opts.store, "store", opts.store, "Visitor profile store: memory, sqlite or redis")
	cmd.Flags().StringVar(&opts.sqlitePath, "sqlite-path", opts.sqlitePath, "SQLite profile path for --store sqlite")
	cmd.Flags().BoolVar(&opts.beacon, "beacon", false, "Deliver events as text/plain beacons")
	_ = cmd.MarkFlagRequired("scenario")

	return cmd
}

func openKV(ctx context.Context, cfg *config.Config, opts options) (store.KV, func(), error) {
	switch opts.store {
	case "", "memory":
		return store.NewMemoryKV(), func() {}, nil
	case "sqlite":
		kv, err := store.NewSQLiteKV(opts.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { kv.Close() }, nil
	case "redis":
		client, err := store.ConnectRedis(ctx, cfg.Redis.URL, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisKV(client, redisNamespace), func() { client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", opts.store)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	sc, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return err
	}
	if sc.Project == "" {
		sc.Project = cfg.Monitor.ProjectName
	}
	if sc.ReportURL == "" {
		sc.ReportURL = cfg.Monitor.ReportURL
	}
	if sc.RetentionDays == 0 {
		sc.RetentionDays = cfg.Monitor.RetentionDays
	}

	kv, closeKV, err := openKV(ctx, cfg, opts)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", opts.store, err)
	}
	defer closeKV()

	clock := scenario.NewClock(time.Now())

	transportOpts := []transport.Option{transport.WithLogger(logger)}
	var beacon *browser.BeaconSender
	if opts.beacon {
		beacon = browser.NewBeaconSender(logger)
		transportOpts = append(transportOpts, transport.WithBeacon(beacon))
	}
	sender := transport.New(transportOpts...)

	runner := &scenario.Runner{
		Store:  store.New(kv, store.WithClock(clock.Now), store.WithLogger(logger)),
		Sender: sender,
		Clock:  clock,
		Logger: logger,
	}

	log.Printf("▶️ Running scenario %s against %s", opts.scenarioPath, sc.ReportURL)
	result, err := runner.Run(ctx, sc)

	sender.Wait()
	if beacon != nil {
		beacon.Wait()
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "✅ Played %d steps, finished on %s\n", result.Steps, result.FinalURL)
	return nil
}
