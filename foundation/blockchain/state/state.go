// Package state implements the account state transition for validated blocks
// and its inverse for chain reorganization. Both engines are pure functions
// over explicit input and output mappings and require no locking.
package state

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/zimcoin/blockchain/foundation/blockchain/database"
)

// Set of conditions that reject a block outright. Any rejection aborts the
// whole state transition and leaves the prior account states untouched.
var (
	ErrWrongDifficulty = errors.New("block difficulty does not match the expected difficulty")
	ErrWrongBlockID    = errors.New("stored block id does not match the block details")
	ErrTooManyTrans    = errors.New("too many transactions in the block")
	ErrInvalidMiner    = errors.New("miner is not a 20 byte public key hash")
	ErrInvalidPOW      = errors.New("block id does not satisfy the proof of work target")
)

// Changes represents the set of account states that result from applying or
// undoing a block. It holds entries only for the accounts the block actually
// touched: senders, recipients and the miner.
type Changes map[database.AccountID]database.Account

// =============================================================================

// Apply validates the block's structure and proof of work, replays its
// transactions in their stored order against the prior account states and
// returns the resulting changes. Each transaction's deltas are visible to the
// transactions after it in the same block, so a recipient of one transaction
// may validly spend as a sender in the next. The caller's prior states map is
// read only; it is never modified.
func Apply(block database.Block, difficulty *big.Int, priorStates map[database.AccountID]database.Account) (Changes, error) {
	if block.Difficulty == nil || block.Difficulty.Cmp(difficulty) != 0 {
		return nil, ErrWrongDifficulty
	}

	blockID, err := block.Hash()
	if err != nil {
		return nil, fmt.Errorf("hashing block: %w", err)
	}
	if blockID != block.BlockID {
		return nil, ErrWrongBlockID
	}

	if len(block.Trans) > database.MaxTransPerBlock {
		return nil, ErrTooManyTrans
	}

	if len(block.Miner) != database.MinerLength {
		return nil, ErrInvalidMiner
	}

	if !database.IsPowValid(block.BlockID, block.Difficulty) {
		return nil, ErrInvalidPOW
	}

	working := copyStates(priorStates)
	changes := make(Changes)
	reward := int64(database.BaseMiningReward)

	for _, tx := range block.Trans {
		sender := database.Lookup(working, tx.SenderHash())
		changes[tx.SenderHash()] = database.Account{
			Balance: sender.Balance - tx.Amount(),
			Nonce:   sender.Nonce + 1,
		}

		recipient := database.Lookup(working, tx.RecipientHash())
		changes[tx.RecipientHash()] = database.Account{
			Balance: recipient.Balance + tx.Amount() - tx.Fee(),
			Nonce:   recipient.Nonce,
		}

		reward += tx.Fee()

		// Verification runs against the sender state observed before this
		// transaction applied.
		if err := tx.Verify(sender.Balance, sender.Nonce, false); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", tx.TxID(), err)
		}

		// Fold the deltas back into the working state so the next transaction
		// in the block observes them.
		for accountID, account := range changes {
			working[accountID] = account
		}
	}

	minerID := database.BytesToAccountID(block.Miner)
	miner := database.Lookup(working, minerID)
	changes[minerID] = database.Account{
		Balance: miner.Balance + reward,
		Nonce:   miner.Nonce,
	}

	return changes, nil
}

// Undo computes the changes that restore every touched account to its state
// from before the block was applied. Transactions are processed in reverse
// order, mirroring the forward dependency chain, and no proof of work or
// transaction verification is performed.
//
// Caller contract: the block must have been genuinely and successfully applied
// and afterStates must be the exact post-application states. Calling Undo with
// anything else is undefined. The caller's map is never modified.
func Undo(block database.Block, afterStates map[database.AccountID]database.Account) Changes {
	working := copyStates(afterStates)
	changes := make(Changes)
	reward := int64(database.BaseMiningReward)

	for i := len(block.Trans) - 1; i >= 0; i-- {
		tx := block.Trans[i]

		sender := database.Lookup(working, tx.SenderHash())
		changes[tx.SenderHash()] = database.Account{
			Balance: sender.Balance + tx.Amount(),
			Nonce:   sender.Nonce - 1,
		}

		recipient := database.Lookup(working, tx.RecipientHash())
		changes[tx.RecipientHash()] = database.Account{
			Balance: recipient.Balance - (tx.Amount() - tx.Fee()),
			Nonce:   recipient.Nonce,
		}

		reward += tx.Fee()

		for accountID, account := range changes {
			working[accountID] = account
		}
	}

	minerID := database.BytesToAccountID(block.Miner)
	miner := database.Lookup(working, minerID)
	changes[minerID] = database.Account{
		Balance: miner.Balance - reward,
		Nonce:   miner.Nonce,
	}

	return changes
}

// copyStates keeps the engines from mutating the caller's mapping while the
// per-transaction deltas are folded through.
func copyStates(states map[database.AccountID]database.Account) map[database.AccountID]database.Account {
	working := make(map[database.AccountID]database.Account, len(states))
	for accountID, account := range states {
		working[accountID] = account
	}

	return working
}
