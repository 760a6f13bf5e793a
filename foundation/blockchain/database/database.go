// Package database handles the data model for the consensus core and an in
// memory database of account information.
package database

import (
	"sync"

	"github.com/zimcoin/blockchain/foundation/blockchain/genesis"
)

// Database manages data related to accounts that have transacted on the
// blockchain. It owns the authoritative account states; the state engine only
// computes deltas for the database to apply.
type Database struct {
	mu sync.RWMutex

	genesis  genesis.Genesis
	accounts map[AccountID]Account
}

// New constructs a new database and applies the account balance information
// from the genesis document.
func New(genesis genesis.Genesis) (*Database, error) {
	db := Database{
		genesis:  genesis,
		accounts: make(map[AccountID]Account),
	}

	if err := db.Reset(); err != nil {
		return nil, err
	}

	return &db, nil
}

// Reset re-initializes the database back to the genesis state.
func (db *Database) Reset() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = make(map[AccountID]Account)
	for accountStr, balance := range db.genesis.Balances {
		accountID, err := ToAccountID(accountStr)
		if err != nil {
			return err
		}

		// A funded genesis account still obeys the first-spend sequence rule
		// of a never seen address.
		db.accounts[accountID] = Account{Balance: int64(balance), Nonce: -1}
	}

	return nil
}

// Remove deletes an account from the database.
func (db *Database) Remove(accountID AccountID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.accounts, accountID)
}

// Query returns the state of the specified account, producing the novel
// address sentinel when the account is unknown.
func (db *Database) Query(accountID AccountID) Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return Lookup(db.accounts, accountID)
}

// CopyAccounts makes a copy of the current accounts in the database.
func (db *Database) CopyAccounts() map[AccountID]Account {
	db.mu.RLock()
	defer db.mu.RUnlock()

	accounts := make(map[AccountID]Account, len(db.accounts))
	for accountID, account := range db.accounts {
		accounts[accountID] = account
	}

	return accounts
}

// ApplyChanges folds the specified account deltas into the database. The
// changes come from applying or undoing a validated block.
func (db *Database) ApplyChanges(changes map[AccountID]Account) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for accountID, account := range changes {
		db.accounts[accountID] = account
	}
}
