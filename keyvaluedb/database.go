package keyvaluedb

import (
	"bytes"
	"errors"
	"fmt"
)

type (
	Reader interface {
		// Read decodes the value stored under key into value, found is false when there is no such key.
		Read(key []byte, value any) (found bool, err error)
	}

	Writer interface {
		Write(key []byte, value any) error
		// Delete of a missing key is not an error.
		Delete(key []byte) error
	}

	/*
	KeyValueDB stores CBOR or JSON encoded records under byte keys. Keys
	are ordered byte-wise so records of one kind share a key prefix and are
	listed with Find.
	*/
	KeyValueDB interface {
		Reader
		Writer
		// Find returns iterator positioned on the first key equal to or greater than key.
		// Iterator MUST be closed, the bolt backend keeps a read transaction open until then.
		Find(key []byte) Iterator
		// StartTx begins a read-write transaction. Only one may be open at a time, the call
		// blocks until the previous one has been committed or rolled back.
		StartTx() (DBTransaction, error)
	}

	// DBTransaction must be completed by either Commit or Rollback.
	DBTransaction interface {
		Reader
		Writer
		Commit() error
		Rollback() error
	}

	// Iterator moves forward over the keys in byte-wise order.
	Iterator interface {
		Valid() bool
		Next()
		// Key returns nil when the iterator is not valid.
		Key() []byte
		Value(value any) error
		Close() error
	}
)

/*
ListPrefix returns the decoded values of the keys with given prefix, starting
from key "from" (which sorts at or after the prefix). At most "limit" values
are returned, all of them when limit is not positive.
*/
func ListPrefix[T any](db KeyValueDB, prefix, from []byte, limit int) (_ []*T, rErr error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if bytes.Compare(from, prefix) < 0 {
		from = prefix
	}
	it := db.Find(from)
	defer func() { rErr = errors.Join(rErr, it.Close()) }()

	var items []*T
	for ; it.Valid() && bytes.HasPrefix(it.Key(), prefix); it.Next() {
		if limit > 0 && len(items) == limit {
			break
		}
		item := new(T)
		if err := it.Value(item); err != nil {
			return nil, fmt.Errorf("decoding value of key %x: %w", it.Key(), err)
		}
		items = append(items, item)
	}
	return items, nil
}
