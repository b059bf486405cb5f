package state

import (
	"errors"
	"fmt"

	"github.com/sss-org/sss-engine/keyvaluedb"
	"github.com/sss-org/sss-engine/types"
)

/*
Store gives typed access to the engine's records kept in key-value DB.
All the changes made by an Update callback are committed atomically.
*/
type Store struct {
	db keyvaluedb.KeyValueDB
}

func NewStore(db keyvaluedb.KeyValueDB) (*Store, error) {
	if db == nil {
		return nil, errors.New("key-value db is nil")
	}
	return &Store{db: db}, nil
}

/*
Update runs fn in a read-write transaction. When fn returns error the
transaction is rolled back and nothing is changed, otherwise it is committed.
Only one Update runs at a time, the call blocks until the previous one completes.
*/
func (s *Store) Update(fn func(*Accounts) error) (rErr error) {
	tx, err := s.db.StartTx()
	if err != nil {
		return fmt.Errorf("starting db transaction: %w", err)
	}
	defer func() {
		if rErr != nil {
			if err := tx.Rollback(); err != nil {
				rErr = errors.Join(rErr, fmt.Errorf("rolling back db transaction: %w", err))
			}
		}
	}()

	if err := fn(&Accounts{r: tx, w: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing db transaction: %w", err)
	}
	return nil
}

// View runs fn with read-only access to the committed state.
func (s *Store) View(fn func(*Accounts) error) error {
	return fn(&Accounts{r: s.db})
}

// DB returns the underlying key-value DB.
func (s *Store) DB() keyvaluedb.KeyValueDB {
	return s.db
}

// Proposals returns all the proposals of the mint in committed state, ordered by ID.
func (s *Store) Proposals(mint types.Identity) ([]*types.Proposal, error) {
	prefix := types.ProposalPrefix(mint)
	proposals, err := keyvaluedb.ListPrefix[types.Proposal](s.db, prefix, prefix, 0)
	if err != nil {
		return nil, fmt.Errorf("reading proposals: %w", err)
	}
	return proposals, nil
}
