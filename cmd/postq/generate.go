package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifuryst/postq/internal/service"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/pkg/util"
)

var generateOpts struct {
	start  string
	days   int
	seed   int64
	append bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compose drafts for a range of days",
	Long: `Compose one draft per slot for each day starting at --start and write the queue.
The existing queue is replaced unless --append is given, in which case slots that
already hold a draft or approved post are skipped.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateOpts.start, "start", "", "first date (YYYY-MM-DD), defaults to today")
	generateCmd.Flags().IntVar(&generateOpts.days, "days", 0, "number of days, defaults to schedule.days")
	generateCmd.Flags().Int64Var(&generateOpts.seed, "seed", 0, "random seed for a reproducible queue")
	generateCmd.Flags().BoolVar(&generateOpts.append, "append", false, "keep the existing queue and add to it")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	opts := service.GenerateOptions{
		Start:  generateOpts.start,
		Days:   generateOpts.days,
		Append: generateOpts.append,
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = &generateOpts.seed
	}

	svc := service.NewGeneratorService(cfg, queue.NewStore(cfg.Paths.Queue), appLogger)
	result, err := svc.Generate(opts)
	if err != nil {
		return err
	}

	for _, rec := range result.Generated {
		fmt.Printf("%s %s [%s/%s] %s\n", rec.Date, rec.Slot, rec.Pillar, rec.Format, util.Truncate(rec.Hook, 30))
	}
	fmt.Printf("\nGenerated %d posts (%d skipped), %d in queue: %s\n",
		len(result.Generated), result.Skipped, result.Total, cfg.Paths.Queue)
	return nil
}
