package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tempizhere/dealhub/internal/client"
	"github.com/tempizhere/dealhub/internal/config"
	"go.uber.org/zap"
)

// options содержит глобальные флаги dealctl
type options struct {
	baseURL  string
	token    string
	output   string
	timeout  time.Duration
	debounce time.Duration
	verbose  bool
}

func (o *options) logger() *zap.Logger {
	if !o.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (o *options) client() *client.Client {
	return client.New(o.baseURL, o.token, o.timeout, o.logger())
}

// print выводит v в выбранном формате
func (o *options) print(out io.Writer, v interface{}, text string) error {
	if o.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "dealctl",
		Short:         "dealctl - client for the deal stats API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			cfg, err := config.NewClientConfig()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("base-url") {
				opts.baseURL = cfg.BaseURL
			}
			if !flags.Changed("token") {
				opts.token = cfg.Token
			}
			if !flags.Changed("timeout") {
				opts.timeout = cfg.Timeout
			}
			if !flags.Changed("debounce") {
				opts.debounce = cfg.DebounceDelay
			}
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("unknown output format %q", opts.output)
			}
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.baseURL, "base-url", "", "API server URL (defaults to BASE_URL env var)")
	pf.StringVar(&opts.token, "token", "", "JWT token (defaults to DEALHUB_TOKEN env var)")
	pf.StringVar(&opts.output, "output", "text", "Output format: text or json")
	pf.DurationVar(&opts.timeout, "timeout", 0, "request timeout")
	pf.DurationVar(&opts.debounce, "debounce", 0, "idle delay before a name check (defaults to DEBOUNCE_DELAY env var)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log HTTP traffic")

	root.AddCommand(
		newViewCmd(opts),
		newClickCmd(opts),
		newLikeCmd(opts),
		newStatsCmd(opts),
		newCheckNameCmd(opts),
	)
	return root
}
