package worker

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
)

// redrawLimit bounds how many times a worker redraws a nonce it has already
// tried. Hashing a duplicate past the limit wastes one attempt but can never
// abort the search.
const redrawLimit = 16

// Template carries the header fields of a block whose proof of work has not
// been solved yet. Each parallel worker operates on its own copy.
type Template struct {
	PrevBlockID common.Hash
	Height      uint64
	Miner       []byte
	Trans       []database.Tx
	TimeStamp   uint64
	Difficulty  *big.Int
}

// MineBlock searches the nonce sub range [minNonce, maxNonce) for a proof of
// work solution until the cutoff time is reached or the context is cancelled.
// Found reports false on a timeout, which is an expected outcome and not an
// error. The search draws nonces at random and never proves exhaustion of the
// assigned range; only the cutoff bounds the runtime.
func MineBlock(ctx context.Context, t Template, cutoff time.Time, minNonce uint64, maxNonce uint64) (database.Block, bool, error) {
	if maxNonce <= minNonce {
		return database.Block{}, false, errors.New("empty nonce range")
	}

	txIDs := make([]common.Hash, len(t.Trans))
	for i, tx := range t.Trans {
		txIDs[i] = tx.TxID()
	}

	// Hash the header prefix once. Every attempt below only pays for a clone
	// of this context plus the 8 nonce bytes.
	idc, err := database.NewIDContext(t.PrevBlockID, t.Miner, txIDs, t.TimeStamp, t.Difficulty)
	if err != nil {
		return database.Block{}, false, err
	}

	target := database.PowTarget(t.Difficulty)
	span := new(big.Int).SetUint64(maxNonce - minNonce)

	// Nonces already attempted by this worker. The set is strictly worker
	// local and is never shared.
	tried := make(map[uint64]struct{})

	for {
		if ctx.Err() != nil {
			return database.Block{}, false, nil
		}

		if !time.Now().Before(cutoff) {
			return database.Block{}, false, nil
		}

		nonce, err := drawNonce(tried, minNonce, span)
		if err != nil {
			return database.Block{}, false, err
		}

		blockID, err := idc.BlockID(nonce)
		if err != nil {
			return database.Block{}, false, err
		}

		if new(big.Int).SetBytes(blockID[:]).Cmp(target) > 0 {
			continue
		}

		block := database.Block{
			PrevBlockID: t.PrevBlockID,
			Height:      t.Height,
			Miner:       t.Miner,
			Trans:       t.Trans,
			TimeStamp:   t.TimeStamp,
			Difficulty:  t.Difficulty,
			BlockID:     blockID,
			Nonce:       nonce,
		}

		return block, true, nil
	}
}

// drawNonce returns a uniformly random nonce from the worker's sub range,
// redrawing on a collision with an earlier attempt. When the redraw budget
// runs out the colliding nonce is returned anyway and simply hashed again.
func drawNonce(tried map[uint64]struct{}, minNonce uint64, span *big.Int) (uint64, error) {
	var nonce uint64

	for range redrawLimit {
		n, err := rand.Int(rand.Reader, span)
		if err != nil {
			return 0, fmt.Errorf("drawing nonce: %w", err)
		}

		nonce = minNonce + n.Uint64()
		if _, exists := tried[nonce]; !exists {
			break
		}
	}

	tried[nonce] = struct{}{}

	return nonce, nil
}
