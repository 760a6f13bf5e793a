package commands

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/zimcoin/blockchain/foundation/blockchain/genesis"
)

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "Validate and print the genesis document.",
	Run:   genesisRun,
}

func init() {
	rootCmd.AddCommand(genesisCmd)
}

func genesisRun(cmd *cobra.Command, args []string) {
	gen, err := genesis.Load(genesisPath)
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(gen, "", "  ")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(string(out))
}
