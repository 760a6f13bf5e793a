package database

import (
	"github.com/ethereum/go-ethereum/common"
)

// Tx represents the consensus view of a transaction inside a block. Signature,
// balance and nonce verification belong to the transaction implementation; the
// consensus core consumes the outcome through Verify and never inspects the
// signature itself.
type Tx interface {

	// TxID returns the unique hash of the transaction.
	TxID() common.Hash

	// SenderHash returns the public key hash of the account paying the amount.
	SenderHash() AccountID

	// RecipientHash returns the public key hash of the account receiving the
	// amount minus the fee.
	RecipientHash() AccountID

	// Amount is the value debited from the sender, fee included.
	Amount() int64

	// Fee is the portion of the amount paid to the miner of the block.
	Fee() int64

	// Verify checks the transaction against the sender state observed before
	// the transaction applies. The undo flag signals verification during a
	// rollback. A non-nil error rejects the whole block.
	Verify(senderBalance int64, senderNonce int64, undo bool) error
}
