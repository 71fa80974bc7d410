package main

import (
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cordellbonnieux/Draw-And-Conquer/internal/config"
)

// newRootCmd builds the cobra command tree. The root command itself
// carries no action; "serve" is the sole subcommand for now, following
// the single-purpose-binary pattern of exposing every runtime knob as a
// subcommand flag rather than a bare invocation.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "drawconquer",
		Short: "Draw-And-Conquer matchmaker and game server",
	}

	root.AddCommand(newServeCmd())
	return root
}

// bindConfig binds config's flags, already registered on fs by
// config.BindFlags, into a fresh viper instance with
// DRAWCONQUER_-prefixed environment variable fallback, per spec §6.
func bindConfig(fs *flag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("drawconquer")
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}
