package worker_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
	"github.com/zimcoin/blockchain/foundation/blockchain/state"
	"github.com/zimcoin/blockchain/foundation/blockchain/worker"
)

func Test_CoordinatorRace(t *testing.T) {
	difficulty := big.NewInt(1)
	template := testTemplate(difficulty)

	coordinator, err := worker.NewCoordinator(4, worker.DefaultMinNonce, func(v string, args ...any) {
		t.Logf(v, args...)
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the coordinator: %v", failed, err)
	}

	t.Log("Given the need to race parallel workers for a solution.")
	{
		block, found, err := coordinator.Mine(context.Background(), template, time.Now().Add(10*time.Second))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		if !found {
			t.Fatalf("\t%s\tShould find a solution before the cutoff.", failed)
		}
		t.Logf("\t%s\tShould find a solution before the cutoff.", success)

		// Whichever worker won, the block must stand on its own.
		blockID, err := block.Hash()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to rehash the winning block: %v", failed, err)
		}
		if blockID != block.BlockID {
			t.Fatalf("\t%s\tShould carry an id that recomputes from its details.", failed)
		}
		if !database.IsPowValid(block.BlockID, difficulty) {
			t.Fatalf("\t%s\tShould satisfy the proof of work target.", failed)
		}
		t.Logf("\t%s\tShould produce an independently verifiable block.", success)

		changes, err := state.Apply(block, difficulty, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould pass the full state transition: %v", failed, err)
		}

		minerID := database.BytesToAccountID(block.Miner)
		if changes[minerID].Balance != database.BaseMiningReward {
			t.Fatalf("\t%s\tShould credit the miner the base reward: got %d.", failed, changes[minerID].Balance)
		}
		t.Logf("\t%s\tShould pass the full state transition.", success)
	}
}

func Test_CoordinatorPastCutoff(t *testing.T) {
	coordinator, err := worker.NewCoordinator(4, worker.DefaultMinNonce, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the coordinator: %v", failed, err)
	}

	t.Log("Given the need to return promptly when the cutoff has passed.")
	{
		start := time.Now()

		_, found, err := coordinator.Mine(context.Background(), testTemplate(big.NewInt(1)), time.Now().Add(-time.Second))
		if err != nil {
			t.Fatalf("\t%s\tShould not fail: %v", failed, err)
		}
		if found {
			t.Fatalf("\t%s\tShould report no block.", failed)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Fatalf("\t%s\tShould not hang: took %v.", failed, elapsed)
		}
		t.Logf("\t%s\tShould report no block without hanging.", success)
	}
}

func Test_CoordinatorConfig(t *testing.T) {
	t.Log("Given the need to validate the coordinator configuration.")
	{
		if _, err := worker.NewCoordinator(0, worker.DefaultMinNonce, nil); err == nil {
			t.Fatalf("\t%s\tShould reject zero workers.", failed)
		}
		t.Logf("\t%s\tShould reject zero workers.", success)
	}
}

func Test_CoordinatorFaultPromotion(t *testing.T) {
	coordinator, err := worker.NewCoordinator(2, 0, nil)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to create the coordinator: %v", failed, err)
	}

	// A nil difficulty cannot prime the id context; every worker faults.
	template := worker.Template{
		Miner: bytes.Repeat([]byte{0x01}, database.MinerLength),
	}

	t.Log("Given the need to surface unexpected worker faults.")
	{
		_, found, err := coordinator.Mine(context.Background(), template, time.Now().Add(time.Second))
		if err == nil {
			t.Fatalf("\t%s\tShould promote the worker fault to a coordinator error.", failed)
		}
		if found {
			t.Fatalf("\t%s\tShould not report a block.", failed)
		}
		t.Logf("\t%s\tShould promote the worker fault to a coordinator error.", success)
	}
}
