package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smallnest/relayclaw/handler"
	"github.com/smallnest/relayclaw/internal/logger"
	"github.com/spf13/cobra"
)

var invokeCmd = &cobra.Command{
	Use:   "invoke",
	Short: "Process a single event",
	Long: `Read a notification event from a file (or stdin with -) and run it
through the handler once. Useful for local testing.`,
	Run: runInvoke,
}

var (
	invokeFile    string
	invokeTimeout int
)

func init() {
	invokeCmd.Flags().StringVarP(&invokeFile, "file", "f", "-", "Event JSON file, - for stdin")
	invokeCmd.Flags().IntVar(&invokeTimeout, "timeout", 300, "Timeout in seconds")

	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, args []string) {
	cfg := setup()
	defer func() { _ = logger.Sync() }()

	var event []byte
	var err error
	if invokeFile == "-" {
		event, err = io.ReadAll(os.Stdin)
	} else {
		event, err = os.ReadFile(invokeFile)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read event: %v\n", err)
		os.Exit(1)
	}

	h, err := handler.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create handler: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(invokeTimeout)*time.Second)
	defer cancel()

	result := h.Handle(ctx, event)

	fmt.Printf("status: %d\nbody: %s\n", result.StatusCode, result.Body)
	if result.StatusCode != 200 {
		os.Exit(1)
	}
}
