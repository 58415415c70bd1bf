package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"marketsync-service/internal/bootstrap"
	"marketsync-service/internal/domain"
	"marketsync-service/internal/infrastructure/grpc/healthclient"
	"marketsync-service/internal/infrastructure/grpc/healthserver"
	"marketsync-service/internal/infrastructure/logx"
	"marketsync-service/internal/infrastructure/pg"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "marketsync-worker",
	Short: "Maintenance commands for the market data synchronizer",
	Long: `marketsync-worker runs one-off jobs against the same configuration as the
service (environment variables, optionally from .env).

    once      hydrate, run one forced sync cycle and print the fetch report
    migrate   apply database migrations
    runs      list recent fetch runs of an exchange
    health    query the gRPC health endpoint of a running service`,
	SilenceUsage: true,
}

var (
	runsLimit     int
	healthTarget  string
	healthTimeout time.Duration
)

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to show")
	healthCmd.Flags().StringVar(&healthTarget, "target", "localhost:9090", "gRPC address of the service")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 3*time.Second, "check timeout")

	rootCmd.AddCommand(onceCmd, migrateCmd, runsCmd, healthCmd)
}

func errText(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Hydrate, run one forced sync cycle and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		sync, cleanup, err := bootstrap.InitSynchronizer(ctx)
		if err != nil {
			return fmt.Errorf("init synchronizer: %w", err)
		}
		defer cleanup()

		if _, err := sync.Hydrate(ctx); err != nil {
			logx.L().Warn("hydrate failed; continuing with an empty cache", zap.Error(err))
		}
		report, err := sync.RunCycle(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "EXCHANGE\tSTATUS\tRECORDS\tTOOK\tERROR")
		for _, run := range report.Runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", run.Exchange, run.Status, run.Records, run.Duration().Round(time.Millisecond), errText(run.Error))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if n := report.Failed(); n > 0 {
			return fmt.Errorf("%d of %d fetchers failed", n, len(report.Runs))
		}
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		cfg := bootstrap.ProvideConfig()
		if cfg.DatabaseURL == "" {
			return bootstrap.ErrMissingDBURL
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		version, err := pg.RunMigrations(ctx, db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs <NSE|BSE>",
	Short: "List recent fetch runs of an exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex, err := domain.ParseExchange(args[0])
		if err != nil {
			return fmt.Errorf("%q: %w", args[0], err)
		}
		ctx, stop := signalContext(cmd)
		defer stop()

		cfg := bootstrap.ProvideConfig()
		db, cleanup, err := bootstrap.ProvideDB(ctx, logx.L(), cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		runs, err := pg.NewFetchRunRepo(db).Recent(ctx, ex, runsLimit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSTATUS\tRECORDS\tTOOK\tERROR")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
				run.StartedAt.Format(time.RFC3339), run.Status, run.Records, run.Duration().Round(time.Millisecond), errText(run.Error))
		}
		return w.Flush()
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the gRPC health of a running service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		client, closeConn, err := healthclient.New(ctx, healthTarget)
		if err != nil {
			return err
		}
		defer closeConn()
		if err := client.Check(ctx, healthserver.ServiceName, healthTimeout); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "SERVING")
		return nil
	},
}
