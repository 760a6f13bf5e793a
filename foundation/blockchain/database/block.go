package database

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"slices"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// MaxTransPerBlock is the maximum number of transactions a block may carry.
	MaxTransPerBlock = 25

	// MinerLength is the required byte length of the miner public key hash.
	MinerLength = 20

	// BaseMiningReward is the fixed reward credited to the miner of every
	// block, before collected transaction fees are added.
	BaseMiningReward = 10000
)

// difficultyLength is the fixed byte width of the difficulty inside the block
// id hash. The wide encoding is part of the wire format shared with other
// implementations of the protocol.
const difficultyLength = 16

// maxTarget is 2^256, the bound of the 32 byte block id space.
var maxTarget = new(big.Int).Lsh(big.NewInt(1), 256)

// =============================================================================

// Block represents a group of transactions batched together with the proof of
// work solution that admitted them to the chain.
type Block struct {
	PrevBlockID common.Hash // Block id of the previous block in the chain.
	Height      uint64      // Number of blocks before this one on the chain.
	Miner       []byte      // Public key hash of the miner responsible for this block.
	Trans       []Tx        // The set of transactions included in the block.
	TimeStamp   uint64      // Unix time the block was assembled.
	Difficulty  *big.Int    // Proof of work difficulty the block claims to satisfy.
	BlockID     common.Hash // The stored block id.
	Nonce       uint64      // Nonce solution to the proof of work puzzle.
}

// TxIDs returns the ids of the block's transactions in block order.
func (b Block) TxIDs() []common.Hash {
	txIDs := make([]common.Hash, len(b.Trans))
	for i, tx := range b.Trans {
		txIDs[i] = tx.TxID()
	}

	return txIDs
}

// Hash recomputes the block id from the block's own header fields and nonce.
func (b Block) Hash() (common.Hash, error) {
	return ComputeBlockID(b.PrevBlockID, b.Miner, b.TxIDs(), b.TimeStamp, b.Difficulty, b.Nonce)
}

// =============================================================================

// IDContext carries a SHA-256 digest primed with every header field except the
// nonce. The header prefix is hashed once; each nonce attempt clones the
// context, appends just the 8 nonce bytes and finalizes. This is what keeps
// per-attempt hashing cheap during mining.
type IDContext struct {
	digest hash.Cloner
}

// NewIDContext hashes the nonce independent header fields in wire order: the
// 32 byte previous block id, the 20 byte miner public key hash, the
// concatenated transaction ids, the timestamp as 8 bytes little endian and the
// difficulty as 16 bytes little endian.
func NewIDContext(prevBlockID common.Hash, miner []byte, txIDs []common.Hash, timestamp uint64, difficulty *big.Int) (IDContext, error) {
	diff, err := difficultyToBytes(difficulty)
	if err != nil {
		return IDContext{}, err
	}

	digest := sha256.New().(hash.Cloner)
	digest.Write(prevBlockID[:])
	digest.Write(miner)
	for _, txID := range txIDs {
		digest.Write(txID[:])
	}

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], timestamp)
	digest.Write(ts[:])
	digest.Write(diff)

	return IDContext{digest: digest}, nil
}

// BlockID clones the primed digest, appends the specified nonce as 8 bytes
// little endian and finalizes the block id.
func (idc IDContext) BlockID(nonce uint64) (common.Hash, error) {
	digest, err := idc.digest.Clone()
	if err != nil {
		return common.Hash{}, fmt.Errorf("cloning digest: %w", err)
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], nonce)
	digest.Write(buf[:])

	var blockID common.Hash
	digest.Sum(blockID[:0])

	return blockID, nil
}

// ComputeBlockID produces the block id for the specified header fields and
// nonce in a single shot.
func ComputeBlockID(prevBlockID common.Hash, miner []byte, txIDs []common.Hash, timestamp uint64, difficulty *big.Int, nonce uint64) (common.Hash, error) {
	idc, err := NewIDContext(prevBlockID, miner, txIDs, timestamp, difficulty)
	if err != nil {
		return common.Hash{}, err
	}

	return idc.BlockID(nonce)
}

// =============================================================================

// PowTarget returns the proof of work acceptance threshold for the specified
// difficulty, floor(2^256 / difficulty). A block id is a valid proof of work
// when its big endian integer value is less than or equal to the target.
// Difficulty 1 accepts nearly the whole 256 bit space; larger difficulty
// shrinks the accepted fraction by that factor.
func PowTarget(difficulty *big.Int) *big.Int {
	return new(big.Int).Div(maxTarget, difficulty)
}

// IsPowValid reports whether the block id satisfies the proof of work target
// for the specified difficulty.
func IsPowValid(blockID common.Hash, difficulty *big.Int) bool {
	value := new(big.Int).SetBytes(blockID[:])
	return value.Cmp(PowTarget(difficulty)) <= 0
}

// difficultyToBytes encodes the difficulty as 16 bytes little endian. The
// difficulty must be at least 1 and fit the 128 bit wire encoding.
func difficultyToBytes(difficulty *big.Int) ([]byte, error) {
	if difficulty == nil || difficulty.Sign() < 1 {
		return nil, errors.New("difficulty must be 1 or greater")
	}

	if difficulty.BitLen() > difficultyLength*8 {
		return nil, fmt.Errorf("difficulty exceeds %d bits", difficultyLength*8)
	}

	buf := make([]byte, difficultyLength)
	difficulty.FillBytes(buf)
	slices.Reverse(buf)

	return buf, nil
}
