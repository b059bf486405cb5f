package events

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/sss-org/sss-engine/keyvaluedb"
	"github.com/sss-org/sss-engine/types"
)

var (
	eventPrefix = []byte("event|") // append sequence number bytes
	lastSeqKey  = []byte("journal_seq")
)

// DefaultListLimit is the number of records returned by List when limit is not set.
const DefaultListLimit = 100

/*
Journal is an append-only log of the events emitted by the executed commands.
Every event gets a sequence number, starting from 1, in the order the receipts
were published. Journal may share the key-value DB with the state store.
*/
type Journal struct {
	db      keyvaluedb.KeyValueDB
	mu      sync.Mutex
	lastSeq uint64
}

func NewJournal(db keyvaluedb.KeyValueDB) (*Journal, error) {
	if db == nil {
		return nil, errors.New("storage is nil")
	}
	j := &Journal{db: db}
	if _, err := db.Read(lastSeqKey, &j.lastSeq); err != nil {
		return nil, fmt.Errorf("reading last sequence number: %w", err)
	}
	return j, nil
}

/*
Publish appends events of the receipt to the journal. Either all the events
of the receipt are stored or none of them.
*/
func (j *Journal) Publish(ctx context.Context, rcpt *types.Receipt) (rErr error) {
	if rcpt == nil {
		return errors.New("receipt is nil")
	}
	if len(rcpt.Events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.StartTx()
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

	seq := j.lastSeq
	for _, ev := range rcpt.Events {
		seq++
		rec, err := types.NewEventRecord(seq, rcpt, ev)
		if err != nil {
			return err
		}
		if err := tx.Write(eventKey(seq), rec); err != nil {
			return fmt.Errorf("storing event %d: %w", seq, err)
		}
	}
	if err := tx.Write(lastSeqKey, seq); err != nil {
		return fmt.Errorf("storing last sequence number: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing db transaction: %w", err)
	}
	j.lastSeq = seq
	return nil
}

// LastSeq returns the sequence number of the last stored event, 0 when the journal is empty.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq
}

/*
List returns up to limit records starting from sequence number "from". When
limit is zero or negative DefaultListLimit is used.
*/
func (j *Journal) List(from uint64, limit int) ([]*types.EventRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	records, err := keyvaluedb.ListPrefix[types.EventRecord](j.db, eventPrefix, eventKey(from), limit)
	if err != nil {
		return nil, fmt.Errorf("reading event records: %w", err)
	}
	return records, nil
}

func eventKey(seq uint64) []byte {
	key := make([]byte, 0, len(eventPrefix)+8)
	key = append(key, eventPrefix...)
	return binary.BigEndian.AppendUint64(key, seq)
}
