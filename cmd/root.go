package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alturino/shopping-cart/internal/config"
	"github.com/Alturino/shopping-cart/internal/constants"
	"github.com/Alturino/shopping-cart/internal/log"
	shoppingCart "github.com/Alturino/shopping-cart/shoppingcart/cmd"
)

type options struct {
	configName string
	configPath string
	cfg        *config.Config
}

func Start() {
	bootstrap := log.InitLogger("", "info", log.FormatJSON).
		With().
		Str(log.KeyAppName, constants.AppMain).
		Str(log.KeyTag, "main Start").
		Logger()

	bootstrap.Info().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	bootstrap.Info().Msg("added listener for SIGINT and SIGTERM")

	if err := NewRootCommand().ExecuteContext(bootstrap.WithContext(c)); err != nil {
		bootstrap.Error().Err(err).Msgf("error when executing command=%s", err.Error())
		stop()
		os.Exit(1)
	}
}

// NewRootCommand loads the configuration and the configured logger before any subcommand
// runs.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           constants.AppMain,
		Short:         "Shopping cart service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c := cmd.Context()
			opts.cfg = config.InitConfig(c, opts.configName, opts.configPath)

			logger := log.InitLogger(opts.cfg.Log.Filepath, opts.cfg.Log.Level, opts.cfg.Log.Format).
				With().
				Str(log.KeyAppName, opts.cfg.Application.Name).
				Str("env", opts.cfg.Application.Env).
				Logger()
			cmd.SetContext(logger.WithContext(c))
		},
	}
	rootCmd.PersistentFlags().
		StringVar(&opts.configName, "config", constants.AppShoppingCartService, "config file name without extension")
	rootCmd.PersistentFlags().
		StringVar(&opts.configPath, "config-path", "./env", "directory holding the config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run shopping cart service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return shoppingCart.RunShoppingCartService(cmd.Context(), opts.cfg)
			},
		},
		newMigrateCommand(opts),
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every shopping cart",
			RunE: func(cmd *cobra.Command, args []string) error {
				deleted, err := shoppingCart.ClearShoppingCarts(cmd.Context(), opts.cfg)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d shopping carts\n", deleted)
				return nil
			},
		},
		&cobra.Command{
			Use:   "overview",
			Short: "Print the per cart overview as JSON",
			RunE: func(cmd *cobra.Command, args []string) error {
				overviews, err := shoppingCart.ShoppingCartOverviews(cmd.Context(), opts.cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(overviews))
				return nil
			},
		},
	)
	return rootCmd
}
