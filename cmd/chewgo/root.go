package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the CLI's root command. Global flags are bound through
// viper so CHEWGO_LOG_LEVEL / CHEWGO_PRETTY env vars work as fallbacks,
// the way opm's root command layers flag-then-env lookups, but via
// viper's BindPFlag/AutomaticEnv instead of hand-written getenv helpers.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("chewgo")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "chewgo",
		Short:         "Run declarative streaming data pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().Bool("pretty", false, "render logs as human-readable console output instead of JSON")
	_ = v.BindPFlag("log-level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("pretty", root.PersistentFlags().Lookup("pretty"))

	root.AddCommand(newRunCmd(v))

	return root
}
