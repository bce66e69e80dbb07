package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "btb",
	Short: "Beat the Box rule engine, simulator and strategy optimizer",
	Long: `btb bundles the four Beat the Box tools on one shared rule engine:
interactive play (standard or custom deals), a bulk simulator, a
configuration-sweep optimizer, and an HTTP API server.`,
}

var (
	flagConfigDir string
	flagPreset    string
)

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "directory holding presets/*.yaml")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "preset name to merge over the defaults")

	rootCmd.AddCommand(playCmd, simulateCmd, optimizeCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
