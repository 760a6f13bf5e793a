package worker_test

import (
	"bytes"
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
	"github.com/zimcoin/blockchain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func testTemplate(difficulty *big.Int) worker.Template {
	return worker.Template{
		PrevBlockID: common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"),
		Height:      3,
		Miner:       bytes.Repeat([]byte{0xcd}, database.MinerLength),
		TimeStamp:   1_700_000_000,
		Difficulty:  difficulty,
	}
}

func Test_MineBlockTrivialDifficulty(t *testing.T) {
	template := testTemplate(big.NewInt(1))

	const minNonce, maxNonce = 1_000, 1_000_000

	t.Log("Given the need to solve a trivial proof of work puzzle.")
	{
		block, found, err := worker.MineBlock(context.Background(), template, time.Now().Add(5*time.Second), minNonce, maxNonce)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine the block: %v", failed, err)
		}
		if !found {
			t.Fatalf("\t%s\tShould find a solution on an early attempt.", failed)
		}
		t.Logf("\t%s\tShould find a solution on an early attempt.", success)

		if block.Nonce < minNonce || block.Nonce >= maxNonce {
			t.Fatalf("\t%s\tShould draw the nonce from the assigned range: got %d.", failed, block.Nonce)
		}
		t.Logf("\t%s\tShould draw the nonce from the assigned range.", success)

		blockID, err := block.Hash()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to rehash the block: %v", failed, err)
		}
		if blockID != block.BlockID {
			t.Fatalf("\t%s\tShould store an id that recomputes from the block details.", failed)
		}
		t.Logf("\t%s\tShould store an id that recomputes from the block details.", success)

		if !database.IsPowValid(block.BlockID, template.Difficulty) {
			t.Fatalf("\t%s\tShould satisfy the proof of work target.", failed)
		}
		t.Logf("\t%s\tShould satisfy the proof of work target.", success)
	}
}

func Test_MineBlockCutoff(t *testing.T) {
	hard := new(big.Int).Lsh(big.NewInt(1), 120)

	t.Log("Given the need to stop searching at the cutoff time.")
	{
		t.Logf("\tTest 0:\tWhen the cutoff is already in the past.")
		{
			start := time.Now()
			_, found, err := worker.MineBlock(context.Background(), testTemplate(big.NewInt(1)), time.Now().Add(-time.Second), 0, 1_000)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould not fail: %v", failed, err)
			}
			if found {
				t.Fatalf("\t%s\tTest 0:\tShould report no solution.", failed)
			}
			if elapsed := time.Since(start); elapsed > time.Second {
				t.Fatalf("\t%s\tTest 0:\tShould return promptly: took %v.", failed, elapsed)
			}
			t.Logf("\t%s\tTest 0:\tShould report no solution promptly.", success)
		}

		t.Logf("\tTest 1:\tWhen the difficulty is out of reach.")
		{
			_, found, err := worker.MineBlock(context.Background(), testTemplate(hard), time.Now().Add(100*time.Millisecond), 0, 1_000_000)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould not fail: %v", failed, err)
			}
			if found {
				t.Fatalf("\t%s\tTest 1:\tShould time out without a solution.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould time out without a solution.", success)
		}

		t.Logf("\tTest 2:\tWhen the context is already cancelled.")
		{
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, found, err := worker.MineBlock(ctx, testTemplate(hard), time.Now().Add(time.Minute), 0, 1_000_000)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould not fail: %v", failed, err)
			}
			if found {
				t.Fatalf("\t%s\tTest 2:\tShould stop without a solution.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould stop without a solution.", success)
		}
	}
}

func Test_MineBlockEmptyRange(t *testing.T) {
	t.Log("Given the need to reject an empty nonce range.")
	{
		if _, _, err := worker.MineBlock(context.Background(), testTemplate(big.NewInt(1)), time.Now().Add(time.Second), 500, 500); err == nil {
			t.Fatalf("\t%s\tShould reject the range.", failed)
		}
		t.Logf("\t%s\tShould reject the range.", success)
	}
}
