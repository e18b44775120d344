package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contre95/ferrum/src/features/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List job logs",
	Long: `List the log files background jobs left behind. Job logging must be
enabled (jobs.log in the config) for logs to be kept.`,
	RunE: runJobs,
}

var jobsLogsCmd = &cobra.Command{
	Use:   "logs <job-id>",
	Short: "Print a job's log",
	Long:  `Print a job's log file. A unique prefix of the job id is enough.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runJobLogs,
}

func init() {
	jobsCmd.AddCommand(jobsLogsCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	logDir := manager.Get().Jobs.LogPath

	entries, err := os.ReadDir(logDir)
	if os.IsNotExist(err) {
		fmt.Println("No job logs. Enable jobs.log in the config to keep them.")
		return nil
	}
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".log" {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		fmt.Println("No job logs. Enable jobs.log in the config to keep them.")
		return nil
	}

	// The date prefix keeps lexical order chronological
	table := NewTable("DATE", "ID")
	for _, name := range names {
		base := strings.TrimSuffix(name, ".log")
		date, id := base, ""
		if len(base) > 11 {
			date, id = base[:10], base[11:]
		}
		table.Row(date, id)
	}
	table.Flush()
	return nil
}

func runJobLogs(cmd *cobra.Command, args []string) error {
	logDir := manager.Get().Jobs.LogPath

	matches, err := filepath.Glob(filepath.Join(logDir, "*"+args[0]+"*.log"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no log for job %s in %s", args[0], logDir)
	}
	if len(matches) > 1 {
		return fmt.Errorf("%d logs match %s, give more of the id", len(matches), args[0])
	}

	content, err := os.ReadFile(matches[0])
	if err != nil {
		return err
	}
	fmt.Print(jobs.ColorizeLogContent(string(content)))
	return nil
}
