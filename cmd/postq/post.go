package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service"
	"github.com/ifuryst/postq/internal/service/publisher/twitter"
	"github.com/ifuryst/postq/internal/service/queue"
)

var postOpts struct {
	slot   string
	dryRun bool
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Publish today's approved post for a slot",
	Long: `Publish the approved post scheduled for today and the given slot, then mark it
posted. Exits successfully when nothing is scheduled.`,
	RunE: runPost,
}

func init() {
	defaultSlot := os.Getenv("SLOT")
	if defaultSlot == "" {
		defaultSlot = string(models.SlotEarly)
	}
	postCmd.Flags().StringVar(&postOpts.slot, "slot", defaultSlot, "slot to publish (17 or 19), defaults to $SLOT")
	postCmd.Flags().BoolVar(&postOpts.dryRun, "dry-run", false, "run every check without publishing")
}

func runPost(*cobra.Command, []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := twitter.NewTwitterPublisher(cfg.Publisher.X, appLogger)
	svc := service.NewPublisherService(cfg, queue.NewStore(cfg.Paths.Queue), pub, appLogger)

	result, err := svc.PublishSlot(ctx, models.Slot(postOpts.slot), postOpts.dryRun)
	if err != nil {
		return err
	}

	switch {
	case result.NothingToPost():
		fmt.Printf("Nothing to post for %s slot %s\n", result.Date, result.Slot)
	case result.DryRun:
		fmt.Printf("Dry run for %s slot %s:\n\n%s\n", result.Date, result.Slot, result.Target.Text)
	default:
		fmt.Printf("Posted %s slot %s: %s\n", result.Date, result.Slot, result.Published.URL)
	}
	return nil
}
