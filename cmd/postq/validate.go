package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ifuryst/postq/internal/service"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
)

var errValidationFailed = errors.New("queue validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the queue for schema, content and duplicate problems",
	RunE:  runValidate,
}

func runValidate(*cobra.Command, []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	svc := service.NewQueueService(queue.NewStore(cfg.Paths.Queue), validator.New(cfg.Validation), appLogger)
	report, err := svc.Validate()
	if err != nil {
		return err
	}

	if report.Total == 0 {
		color.Yellow("Queue is empty: %s", cfg.Paths.Queue)
	}

	printReport(os.Stdout, report)
	if !report.Valid() {
		return errValidationFailed
	}
	return nil
}

func printReport(w io.Writer, report *validator.Report) {
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed, color.Bold)
	ok := color.New(color.FgGreen, color.Bold)

	if len(report.Warnings) > 0 {
		warn.Fprintf(w, "Warnings (%d):\n", len(report.Warnings))
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
		fmt.Fprintln(w)
	}

	if !report.Valid() {
		fail.Fprintf(w, "Errors (%d):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return
	}

	ok.Fprintf(w, "Queue is valid: %d posts\n", report.Total)
	fmt.Fprintln(w, "Status breakdown:")
	for _, sc := range report.StatusCounts {
		fmt.Fprintf(w, "  %-9s %d\n", sc.Status, sc.Count)
	}
}
