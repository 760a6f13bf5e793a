package commands

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/spf13/cobra"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
	"github.com/zimcoin/blockchain/foundation/blockchain/worker"
)

var (
	mineMiner      string
	mineDifficulty uint64
	mineWorkers    int
	mineWindow     time.Duration
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a single block and print the solution.",
	Run:   mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineMiner, "miner", "m", "0xFef311483Cc040e1A89fb9bb469eeB8A70935EF8", "Account receiving the mining reward.")
	mineCmd.Flags().Uint64VarP(&mineDifficulty, "difficulty", "d", 1, "Proof of work difficulty.")
	mineCmd.Flags().IntVarP(&mineWorkers, "workers", "w", 4, "Number of parallel mining workers.")
	mineCmd.Flags().DurationVarP(&mineWindow, "window", "t", 30*time.Second, "How long to search before giving up.")
}

func mineRun(cmd *cobra.Command, args []string) {
	minerID, err := database.ToAccountID(mineMiner)
	if err != nil {
		log.Fatal(err)
	}

	coordinator, err := worker.NewCoordinator(mineWorkers, worker.DefaultMinNonce, nil)
	if err != nil {
		log.Fatal(err)
	}

	template := worker.Template{
		Miner:      minerID.Bytes(),
		TimeStamp:  uint64(time.Now().UTC().Unix()),
		Difficulty: new(big.Int).SetUint64(mineDifficulty),
	}

	block, found, err := coordinator.Mine(context.Background(), template, time.Now().Add(mineWindow))
	if err != nil {
		log.Fatal(err)
	}
	if !found {
		fmt.Println("no solution inside the window")
		return
	}

	fmt.Println("block :", block.BlockID.Hex())
	fmt.Println("nonce :", block.Nonce)
	fmt.Println("miner :", mineMiner)
}
