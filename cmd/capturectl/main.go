package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"order-exporter/internal/orderexporter/client"
	"order-exporter/internal/orderexporter/data"
	"order-exporter/pkg/logging"
)

type options struct {
	address string
	scope   string
	timeout time.Duration
	verbose bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "capturectl",
		Short:        "Drive an order exporter server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.address, "address", "a", envOr("EXPORTER_ADDRESS", "http://localhost:8080"), "Server base URL")
	root.PersistentFlags().StringVar(&opts.scope, "scope", "", "Capture scope")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(
		newCaptureCommand(opts),
		newProgressCommand(opts),
		newExportCommand(opts),
		newClearCommand(opts),
		newNextCommand(opts),
	)
	return root
}

func (o *options) client() *client.Client {
	level := zapcore.WarnLevel
	if o.verbose {
		level = zapcore.DebugLevel
	}
	logger, err := logging.NewZapLoggerWithEncoding(level, logging.ConsoleEncoding)
	if err != nil {
		log.Fatal(err)
	}
	return client.New(client.Config{
		ServerAddress: o.address,
		Scope:         o.scope,
		Timeout:       o.timeout,
	}, logger)
}

func newCaptureCommand(opts *options) *cobra.Command {
	var pageURL string
	cmd := &cobra.Command{
		Use:   "capture <page.html>...",
		Short: "Capture the orders of saved order-history pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				report, err := c.Capture(cmd.Context(), f, pageURL)
				_ = f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: captured %d, failed %d, skipped %d, stored %d\n",
					filepath.Base(path), report.Captured, report.Failed, report.Skipped, report.StoredOrders)
				for _, o := range report.Outcomes {
					if o.Reason != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s %s: %s\n", o.Kind, o.OrderID, o.Reason)
					}
				}
				if report.NextPageURL != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  next: %s\n", report.NextPageURL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "URL the page was saved from")
	return cmd
}

func newProgressCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "progress",
		Short: "Show the counters of the current or last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			progress, err := opts.client().Progress(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(progress)
		},
	}
}

func newExportCommand(opts *options) *cobra.Command {
	var from, to, out string
	cmd := &cobra.Command{
		Use:   "export <json|csv|xlsx>",
		Short: "Download the captured orders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDay, err := parseDay(from)
			if err != nil {
				return err
			}
			toDay, err := parseDay(to)
			if err != nil {
				return err
			}
			artifact, err := opts.client().Export(cmd.Context(), args[0], fromDay, toDay)
			if err != nil {
				return err
			}
			path := filepath.Join(out, artifact.Filename)
			if err := os.WriteFile(path, artifact.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First order date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last order date, YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "Output directory")
	return cmd
}

func newClearCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the persisted state of the scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.client().Clear(cmd.Context())
		},
	}
}

func newNextCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "next <page.html> <page-url>",
		Short: "Print the URL of the page after a saved one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			next, err := opts.client().NextPage(cmd.Context(), f, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(data.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}
