package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/symposia/revdist/app"
	"github.com/symposia/revdist/config"
	"github.com/symposia/revdist/core/engine"
	"github.com/symposia/revdist/infra/logger"
)

var (
	eventID    string
	seed       string
	operatorID string
)

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run one distribution for an event and exit",
	RunE:  runDistribute,
}

func init() {
	distributeCmd.Flags().StringVarP(&eventID, "event", "e", "", "event identifier (required)")
	distributeCmd.Flags().StringVar(&seed, "seed", "", "seed for the random strategy")
	distributeCmd.Flags().StringVar(&operatorID, "operator", "", "operator identifier recorded on assignments")
	_ = distributeCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(distributeCmd)
}

func runDistribute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	logg := logger.New("distribute-command")
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	sum, err := svc.Distribute(ctx, engine.Request{
		EventID:    eventID,
		Seed:       seed,
		OperatorID: operatorID,
	})
	if err != nil {
		return fmt.Errorf("distribution failed (log %s): %w", sum.LogID, err)
	}
	logg.Infof("log %s: %d submissions, %d assignments, %d conflicts, %d fallback, %d unfilled",
		sum.LogID, sum.TotalSubmissions, sum.TotalAssignments,
		sum.ConflictsDetected, sum.FallbackAssignments, sum.FailedAssignments)
	return nil
}
