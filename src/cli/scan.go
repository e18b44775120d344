package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/jobs"
	"github.com/contre95/ferrum/src/features/scanning"
)

var scanFull bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library into the catalog",
	Long: `Walk the library path, read tags from new or changed files and store
them in the catalog. A full scan re-reads every file and rebuilds the
search index.`,
	RunE: runScan,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop catalog rows whose files are gone",
	RunE:  runPrune,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFull, "full", false, "re-read every file, not only changed ones")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(pruneCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	jobID, err := app.scanner.Scan(ctx, scanFull)
	if err != nil {
		return err
	}

	job, err := waitForJob(ctx, app.jobs, jobID)
	if err != nil {
		return err
	}

	if stats, ok := job.Metadata["stats"].(*scanning.ScanStats); ok {
		fmt.Printf("Scanned %d files: %d stored, %d skipped, %d removed, %d errors\n",
			stats.Scanned, stats.Stored, stats.Skipped, stats.Removed, stats.Errors)
	} else {
		fmt.Println(job.Message)
	}
	return nil
}

func runPrune(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	removed, err := app.scanner.Prune(cmd.Context())
	if err != nil {
		return err
	}

	if removed == 0 {
		fmt.Println("Nothing to prune")
		return nil
	}
	fmt.Printf("Removed %d tracks whose files are gone\n", removed)
	return nil
}

// waitForJob polls a job until it settles, drawing its progress on one line.
func waitForJob(ctx context.Context, service *jobs.Service, jobID string) (*jobs.Job, error) {
	clearLine := func() { fmt.Printf("\r%-70s\r", "") }

	for {
		select {
		case <-ctx.Done():
			_ = service.CancelJob(jobID)
			clearLine()
			return nil, ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}

		job, ok := service.GetJob(jobID)
		if !ok {
			return nil, fmt.Errorf("job %s disappeared", jobID)
		}

		switch job.Status {
		case jobs.JobStatusPending, jobs.JobStatusRunning:
			fmt.Printf("\r%-70s", fmt.Sprintf("%3d%% %s", job.Progress, TruncateString(job.Message, 60)))
		case jobs.JobStatusCompleted:
			clearLine()
			return job, nil
		case jobs.JobStatusFailed:
			clearLine()
			return nil, fmt.Errorf("scan failed: %s", job.Message)
		case jobs.JobStatusCancelled:
			clearLine()
			return nil, fmt.Errorf("scan cancelled")
		}
	}
}
