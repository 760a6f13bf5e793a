// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/zimcoin/blockchain/foundation/validate"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date          time.Time         `json:"date"`
	ChainID       uint16            `json:"chain_id" validate:"required"`        // Unique id for this running instance.
	TransPerBlock uint16            `json:"trans_per_block" validate:"lte=25"`   // Maximum number of transactions per block, capped by consensus.
	Difficulty    uint64            `json:"difficulty" validate:"gte=1"`         // How difficult it needs to be to solve the work problem.
	Balances      map[string]uint64 `json:"balances"`                            // Starting balances for founders of the chain.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if err := validate.Check(genesis); err != nil {
		return Genesis{}, fmt.Errorf("invalid genesis document: %w", err)
	}

	return genesis, nil
}
