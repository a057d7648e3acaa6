package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ifuryst/postq/internal/service"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/pkg/util"
)

var approveOpts struct {
	from   string
	to     string
	dryRun bool
}

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Approve drafts within a date range",
	RunE:  runApprove,
}

func init() {
	approveCmd.Flags().StringVar(&approveOpts.from, "from", "", "first date (YYYY-MM-DD)")
	approveCmd.Flags().StringVar(&approveOpts.to, "to", "", "last date (YYYY-MM-DD), inclusive")
	approveCmd.Flags().BoolVar(&approveOpts.dryRun, "dry-run", false, "list matching drafts without writing")
	_ = approveCmd.MarkFlagRequired("from")
	_ = approveCmd.MarkFlagRequired("to")
}

func runApprove(*cobra.Command, []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	svc := service.NewApprovalService(queue.NewStore(cfg.Paths.Queue), appLogger)
	result, err := svc.Approve(approveOpts.from, approveOpts.to, approveOpts.dryRun)
	if err != nil {
		return err
	}

	if len(result.Matched) == 0 {
		fmt.Printf("No drafts between %s and %s\n", approveOpts.from, approveOpts.to)
		return nil
	}

	for _, rec := range result.Matched {
		fmt.Printf("%s %s [%s] %s\n", rec.Date, rec.Slot, rec.Pillar, util.Truncate(rec.Hook, 30))
	}
	if result.Preview {
		fmt.Printf("\n%d drafts would be approved (dry run)\n", len(result.Matched))
		return nil
	}
	fmt.Printf("\nApproved %d drafts\n", len(result.Matched))
	return nil
}
