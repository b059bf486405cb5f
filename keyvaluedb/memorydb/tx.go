package memorydb

import (
	"fmt"

	"github.com/sss-org/sss-engine/keyvaluedb"
)

// Tx is the single read-write transaction of the MemoryDB.
type Tx struct {
	db      *MemoryDB
	records map[string][]byte // nil once the tx is completed
}

func (t *Tx) Read(key []byte, v any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	if err := t.checkOpen("read"); err != nil {
		return false, err
	}
	data, ok := t.records[string(key)]
	return decode(data, ok, v)
}

func (t *Tx) Write(key []byte, value any) error {
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	if err := t.checkOpen("write"); err != nil {
		return err
	}
	if err := t.db.writeFailure(); err != nil {
		return err
	}
	t.records[string(key)] = data
	return nil
}

func (t *Tx) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if err := t.checkOpen("delete"); err != nil {
		return err
	}
	delete(t.records, string(key))
	return nil
}

func (t *Tx) Rollback() error {
	if err := t.checkOpen("rollback"); err != nil {
		return err
	}
	t.records = nil
	t.db.writer.Unlock()
	return nil
}

func (t *Tx) Commit() error {
	if err := t.checkOpen("commit"); err != nil {
		return err
	}
	records := t.records
	t.records = nil
	t.db.commit(records)
	return nil
}

func (t *Tx) checkOpen(op string) error {
	if t.records == nil {
		return fmt.Errorf("memdb tx %s failed, %w", op, keyvaluedb.ErrTxClosed)
	}
	return nil
}
