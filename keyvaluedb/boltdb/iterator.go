package boltdb

import (
	"errors"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// Itr holds a read-only bolt transaction open until Close is called.
type Itr struct {
	tx      *bolt.Tx
	cursor  *bolt.Cursor
	decoder DecodeFn
	key     []byte
	value   []byte
}

func newIterator(db *bolt.DB, bucket []byte, d DecodeFn) (*Itr, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	tx, err := db.Begin(false)
	if err != nil {
		return nil, err
	}
	b := tx.Bucket(bucket)
	if b == nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("bucket %q not found", bucket)
	}
	return &Itr{tx: tx, cursor: b.Cursor(), decoder: d}, nil
}

// NewIterator returns an invalid iterator when the read transaction can not be started.
func NewIterator(db *bolt.DB, bucket []byte, d DecodeFn) *Itr {
	it, err := newIterator(db, bucket, d)
	if err != nil {
		return &Itr{decoder: d}
	}
	return it
}

func (it *Itr) seek(key []byte) {
	switch {
	case it.cursor == nil:
	case len(key) == 0:
		it.key, it.value = it.cursor.First()
	default:
		it.key, it.value = it.cursor.Seek(key)
	}
}

func (it *Itr) Next() {
	if !it.Valid() {
		return
	}
	it.key, it.value = it.cursor.Next()
}

func (it *Itr) Valid() bool {
	return it.key != nil
}

func (it *Itr) Key() []byte {
	return it.key
}

func (it *Itr) Value(v any) error {
	if !it.Valid() {
		return errors.New("iterator invalid")
	}
	return it.decoder(it.value, v)
}

func (it *Itr) Close() error {
	it.key, it.value, it.cursor = nil, nil, nil
	if it.tx == nil {
		return nil
	}
	tx := it.tx
	it.tx = nil
	return tx.Rollback()
}
