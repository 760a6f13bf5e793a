package database

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// AccountID represents the 20 byte public key hash that identifies an account
// on the blockchain.
type AccountID = common.Address

// Account represents information stored in the database for an individual account.
type Account struct {
	Balance int64
	Nonce   int64
}

// ToAccountID converts a hex-encoded string to an account id and validates the
// hex-encoded string is formatted correctly.
func ToAccountID(hex string) (AccountID, error) {
	if !common.IsHexAddress(hex) {
		return AccountID{}, errors.New("invalid account format")
	}

	return common.HexToAddress(hex), nil
}

// BytesToAccountID converts a raw 20 byte public key hash to an account id.
func BytesToAccountID(b []byte) AccountID {
	return common.BytesToAddress(b)
}

// Lookup returns the state of the specified account. An account that has never
// appeared on the chain yields a zero balance and a nonce of -1. The sentinel
// is produced by the lookup and is never stored.
func Lookup(states map[AccountID]Account, accountID AccountID) Account {
	if account, exists := states[accountID]; exists {
		return account
	}

	return Account{Balance: 0, Nonce: -1}
}
