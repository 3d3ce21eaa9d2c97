package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"toolgate/internal/app"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := rootOptions{
		configPath: "toolgate.yaml",
	}

	root := &cobra.Command{
		Use:           "toolgate",
		Short:         "Tool gateway aggregating local and remote tool catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	bindRootFlags(root.PersistentFlags(), &opts)

	root.AddCommand(
		newServeCmd(&opts),
		newValidateCmd(&opts),
		newVersionCmd(),
	)

	return root
}

func bindRootFlags(flags *pflag.FlagSet, opts *rootOptions) {
	flags.StringVarP(&opts.configPath, "config", "c", opts.configPath, "path to gateway config file (yaml or toml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tool gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, level, err := app.NewProductionLogger(initialLevel(opts))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()

			application := app.New(logger, &level)
			if err := application.Serve(ctx, app.ServeConfig{
				ConfigPath: opts.configPath,
				LogLevel:   opts.logLevel,
			}); err != nil {
				logger.Error("gateway stopped with error", zap.Error(err))
				return err
			}
			return nil
		},
	}

	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate gateway configuration without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, _, err := app.NewProductionLogger(initialLevel(opts))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			application := app.New(logger, nil)
			return application.ValidateConfig(cmd.Context(), app.ValidateConfig{
				ConfigPath: opts.configPath,
			})
		},
	}

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the toolgate version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "toolgate "+app.VersionString())
		},
	}
}

func initialLevel(opts *rootOptions) string {
	if opts.logLevel != "" {
		return opts.logLevel
	}
	return "info"
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
