package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	ciMode     bool
	configPath string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "zenith",
	Short: "Conversational wellness session tracker",
	Long: `Zenith records conversational wellness sessions, classifies the
emotions expressed in them, and reports longitudinal insights over
your history.`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&ciMode, "ci", false, "CI mode: JSON logs, non-interactive")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.zenith/config.yaml)")
}
