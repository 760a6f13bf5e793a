// Package commands contains the admin tool commands.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var genesisPath string

func init() {
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "zblock/genesis.json", "Path to the genesis file.")
}

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Chain administration tooling",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
