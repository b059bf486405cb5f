package memorydb

import (
	"encoding/json"
	"maps"
	"sync"

	"github.com/sss-org/sss-engine/keyvaluedb"
)

var _ keyvaluedb.KeyValueDB = (*MemoryDB)(nil)

/*
MemoryDB keeps JSON encoded records in a map, meant for tests and for
commands which do not need persistent state (ie "sss commands").

Transaction works on a copy of the map which replaces the committed one
on Commit, readers outside of the transaction see the committed state only.
*/
type MemoryDB struct {
	mu      sync.RWMutex
	records map[string][]byte
	failure error // returned by all writes when set

	writer sync.Mutex // held by the open transaction
}

func New() *MemoryDB {
	return &MemoryDB{records: map[string][]byte{}}
}

func (db *MemoryDB) Read(key []byte, value any) (bool, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return false, err
	}
	db.mu.RLock()
	data, ok := db.records[string(key)]
	db.mu.RUnlock()
	return decode(data, ok, value)
}

func (db *MemoryDB) Write(key []byte, value any) error {
	data, err := encode(key, value)
	if err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.failure != nil {
		return db.failure
	}
	db.records[string(key)] = data
	return nil
}

func (db *MemoryDB) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.records, string(key))
	return nil
}

// Find returns iterator over the snapshot of committed records, positioned on the first key >= key.
func (db *MemoryDB) Find(key []byte) keyvaluedb.Iterator {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return newIterator(db.records, key)
}

func (db *MemoryDB) StartTx() (keyvaluedb.DBTransaction, error) {
	db.writer.Lock()
	db.mu.RLock()
	defer db.mu.RUnlock()
	return &Tx{db: db, records: maps.Clone(db.records)}, nil
}

// MockWriteError makes all following writes fail with err, nil restores normal operation.
func (db *MemoryDB) MockWriteError(err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.failure = err
}

func (db *MemoryDB) writeFailure() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.failure
}

func (db *MemoryDB) commit(records map[string][]byte) {
	db.mu.Lock()
	db.records = records
	db.mu.Unlock()
	db.writer.Unlock()
}

func encode(key []byte, value any) ([]byte, error) {
	if err := keyvaluedb.CheckKeyAndValue(key, value); err != nil {
		return nil, err
	}
	return json.Marshal(value)
}

func decode(data []byte, found bool, value any) (bool, error) {
	if !found {
		return false, nil
	}
	return true, json.Unmarshal(data, value)
}
