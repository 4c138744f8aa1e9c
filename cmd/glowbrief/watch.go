package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maharani/glowbrief/internal/client"
)

var (
	watchBaseURL  string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <submission-id>",
	Short: "Wait for a submission's workflow to finish",
	Long:  "Polls the backend's status endpoint until the submission reaches a terminal state, then prints the full result document status.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchBaseURL, "base-url", "http://localhost:8080", "Backend base URL")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", client.DefaultPollInterval, "Polling interval")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(_ *cobra.Command, args []string) error {
	submissionID := args[0]

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := client.New(watchBaseURL, client.WithPollInterval(watchInterval))

	fmt.Printf("Watching submission %s (interval %s)\n", submissionID, watchInterval)
	snapshot, err := c.WaitForCompletion(ctx, submissionID)
	if err != nil {
		if snapshot != nil {
			fmt.Printf("Interrupted while status was %q\n", snapshot.Status)
		}
		return err
	}

	fmt.Printf("Workflow finished with status %q (last updated %s)\n", snapshot.Status, snapshot.LastUpdated)
	if snapshot.Status == "error" {
		return fmt.Errorf("workflow ended in error")
	}
	return nil
}
