package boltdb

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"github.com/sss-org/sss-engine/keyvaluedb"
)

const (
	// state and event journal records share the bucket
	DefaultBucket = "sss"
	// how long to wait for the file lock held by another process (ie "serve")
	DefaultOpenTimeout = 3 * time.Second
)

var _ keyvaluedb.KeyValueDB = (*BoltDB)(nil)

type (
	EncodeFn func(v any) ([]byte, error)
	DecodeFn func(data []byte, v any) error

	BoltDB struct {
		db      *bolt.DB
		bucket  []byte
		encoder EncodeFn
		decoder DecodeFn
	}

	Option func(*options)

	options struct {
		bucket   string
		timeout  time.Duration
		readOnly bool
	}
)

// WithBucket sets the name of the bucket records are stored in.
func WithBucket(name string) Option {
	return func(o *options) {
		o.bucket = name
	}
}

func WithOpenTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

/*
ReadOnly opens the database with shared file lock so any number of readers
may have it open at the same time. Writes fail with bolt.ErrDatabaseReadOnly,
database file must exist.
*/
func ReadOnly() Option {
	return func(o *options) {
		o.readOnly = true
	}
}

/*
New opens the Bolt DB file, read-write database file is created when missing.
Values are CBOR encoded.
*/
func New(dbFile string, opts ...Option) (*BoltDB, error) {
	o := &options{bucket: DefaultBucket, timeout: DefaultOpenTimeout}
	for _, opt := range opts {
		opt(o)
	}
	if o.bucket == "" {
		return nil, errors.New("bucket name must not be empty")
	}

	db, err := bolt.Open(dbFile, 0600, &bolt.Options{Timeout: o.timeout, ReadOnly: o.readOnly})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %q: %w", dbFile, err)
	}
	s := &BoltDB{
		db:      db,
		bucket:  []byte(o.bucket),
		encoder: cbor.Marshal,
		decoder: cbor.Unmarshal,
	}
	if o.readOnly {
		err = s.view(func(*bolt.Bucket) error { return nil })
	} else {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(s.bucket)
			return err
		})
	}
	if err != nil {
		return nil, errors.Join(fmt.Errorf("preparing bucket %q: %w", o.bucket, err), db.Close())
	}
	return s, nil
}

func (db *BoltDB) Path() string {
	return db.db.Path()
}

func (db *BoltDB) view(f func(b *bolt.Bucket) error) error {
	return db.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(db.bucket)
		if b == nil {
			return fmt.Errorf("bucket %q not found", db.bucket)
		}
		return f(b)
	})
}

func (db *BoltDB) update(f func(b *bolt.Bucket) error) error {
	return db.db.Update(func(tx *bolt.Tx) error {
		return f(tx.Bucket(db.bucket))
	})
}

func (db *BoltDB) Read(key []byte, v any) (found bool, _ error) {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return false, err
	}
	err := db.view(func(b *bolt.Bucket) error {
		data := b.Get(key)
		if found = data != nil; !found {
			return nil
		}
		return db.decoder(data, v)
	})
	if err != nil {
		return found, fmt.Errorf("bolt db read failed, %w", err)
	}
	return found, nil
}

func (db *BoltDB) Write(key []byte, v any) error {
	if err := keyvaluedb.CheckKeyAndValue(key, v); err != nil {
		return err
	}
	data, err := db.encoder(v)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	if err := db.update(func(b *bolt.Bucket) error { return b.Put(key, data) }); err != nil {
		return fmt.Errorf("bolt db write failed, %w", err)
	}
	return nil
}

func (db *BoltDB) Delete(key []byte) error {
	if err := keyvaluedb.CheckKey(key); err != nil {
		return err
	}
	if err := db.update(func(b *bolt.Bucket) error { return b.Delete(key) }); err != nil {
		return fmt.Errorf("bolt db delete failed, %w", err)
	}
	return nil
}

func (db *BoltDB) Find(key []byte) keyvaluedb.Iterator {
	it := NewIterator(db.db, db.bucket, db.decoder)
	it.seek(key)
	return it
}

// StartTx begins a read-write transaction, bolt allows only one at a time so the call
// blocks while another one is open.
func (db *BoltDB) StartTx() (keyvaluedb.DBTransaction, error) {
	tx, err := NewBoltTx(db.db, db.bucket, db.encoder, db.decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to start Bolt tx, %w", err)
	}
	return tx, nil
}

func (db *BoltDB) Close() error {
	if db.db == nil {
		return nil
	}
	return db.db.Close()
}
