package boltdb

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/sss-org/sss-engine/keyvaluedb"
)

var defaultsDBKeys = []string{"1", "2", "3", "4"}

func initBoltDB(t *testing.T, defaults ...string) *BoltDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "bolt.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })
	for idx, key := range defaults {
		require.NoError(t, db.Write([]byte(key), strconv.Itoa(idx)))
	}
	return db
}

func isEmpty(t *testing.T, db *BoltDB) bool {
	t.Helper()
	it := db.Find(nil)
	defer func() { require.NoError(t, it.Close()) }()
	return !it.Valid()
}

type account struct {
	_       struct{} `cbor:",toarray"`
	Balance uint64
	Frozen  bool
}

func TestBoltDB_WriteReadDelete(t *testing.T) {
	db := initBoltDB(t)
	require.True(t, isEmpty(t, db))
	in := &account{Balance: 42, Frozen: true}
	require.NoError(t, db.Write([]byte("acc"), in))
	out := &account{}
	found, err := db.Read([]byte("acc"), out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)

	found, err = db.Read([]byte("missing"), out)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, db.Delete([]byte("acc")))
	require.True(t, isEmpty(t, db))
}

func TestBoltDB_InvalidInput(t *testing.T) {
	db := initBoltDB(t)
	require.ErrorIs(t, db.Write(nil, 1), keyvaluedb.ErrInvalidKey)
	var acc *account
	require.ErrorIs(t, db.Write([]byte("k"), acc), keyvaluedb.ErrValueIsNil)
	_, err := db.Read([]byte("k"), nil)
	require.ErrorIs(t, err, keyvaluedb.ErrValueIsNil)
	require.ErrorIs(t, db.Delete([]byte{}), keyvaluedb.ErrInvalidKey)
}

func TestBoltDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt.db")
	db, err := New(path)
	require.NoError(t, err)
	require.Equal(t, path, db.Path())
	require.NoError(t, db.Write([]byte("k"), "persisted"))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()
	var v string
	found, err := db.Read([]byte("k"), &v)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "persisted", v)
}

func TestBoltDB_Options(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bolt.db")

	t.Run("empty bucket name", func(t *testing.T) {
		db, err := New(path, WithBucket(""))
		require.EqualError(t, err, "bucket name must not be empty")
		require.Nil(t, db)
	})

	t.Run("read-only requires existing file", func(t *testing.T) {
		db, err := New(filepath.Join(t.TempDir(), "missing.db"), ReadOnly())
		require.ErrorContains(t, err, "opening bolt db")
		require.Nil(t, db)
	})

	db, err := New(path, WithBucket("accounts"))
	require.NoError(t, err)
	require.NoError(t, db.Write([]byte("k"), "v1"))
	require.NoError(t, db.Close())

	t.Run("read-only", func(t *testing.T) {
		db, err := New(path, WithBucket("accounts"), ReadOnly(), WithOpenTimeout(time.Second))
		require.NoError(t, err)
		defer func() { require.NoError(t, db.Close()) }()

		var v string
		found, err := db.Read([]byte("k"), &v)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "v1", v)

		require.ErrorIs(t, db.Write([]byte("k"), "v2"), bolt.ErrDatabaseReadOnly)
		require.ErrorIs(t, db.Delete([]byte("k")), bolt.ErrDatabaseReadOnly)
		tx, err := db.StartTx()
		require.ErrorIs(t, err, bolt.ErrDatabaseReadOnly)
		require.Nil(t, tx)
	})

	t.Run("read-only bucket missing", func(t *testing.T) {
		db, err := New(path, ReadOnly())
		require.ErrorContains(t, err, `bucket "sss" not found`)
		require.Nil(t, db)
	})

	t.Run("buckets are separate", func(t *testing.T) {
		db, err := New(path, WithBucket("other"))
		require.NoError(t, err)
		defer func() { require.NoError(t, db.Close()) }()
		var v string
		found, err := db.Read([]byte("k"), &v)
		require.NoError(t, err)
		require.False(t, found)
	})
}

func TestBoltIterator_CloseNil(t *testing.T) {
	it := &Itr{}
	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
}

func TestBoltIterator_newIteratorNil(t *testing.T) {
	it, err := newIterator(nil, []byte(""), json.Unmarshal)
	require.ErrorContains(t, err, "db is nil")
	require.Nil(t, it)
	require.False(t, NewIterator(nil, []byte(""), json.Unmarshal).Valid())
}

func TestBoltIterator_EmptyDB(t *testing.T) {
	db := initBoltDB(t)
	it := db.Find(nil)
	defer func() { require.NoError(t, it.Close()) }()
	require.False(t, it.Valid())
	require.Len(t, it.Key(), 0)
	var value string
	require.ErrorContains(t, it.Value(&value), "iterator invalid")
}

func TestBoltIterator_Forward(t *testing.T) {
	db := initBoltDB(t, defaultsDBKeys...)
	it := db.Find(nil)
	defer func() { require.NoError(t, it.Close()) }()
	iterations := 0
	for ; it.Valid(); it.Next() {
		require.Equal(t, []byte(defaultsDBKeys[iterations]), it.Key())
		var value string
		require.NoError(t, it.Value(&value))
		require.Equal(t, strconv.Itoa(iterations), value)
		iterations++
	}
	require.Equal(t, len(defaultsDBKeys), iterations)
}

func TestBoltDB_ListPrefix(t *testing.T) {
	db := initBoltDB(t)
	for i, key := range []string{"acc|b", "acc|a", "prop|1", "ab"} {
		require.NoError(t, db.Write([]byte(key), &account{Balance: uint64(i)}))
	}
	accs, err := keyvaluedb.ListPrefix[account](db, []byte("acc|"), nil, 0)
	require.NoError(t, err)
	require.Equal(t, []*account{{Balance: 1}, {Balance: 0}}, accs)

	// the read transaction of the iterator has been released
	tx, err := db.StartTx()
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
}

func TestBoltIterator_Find(t *testing.T) {
	db := initBoltDB(t, "a1", "a3", "b1")
	it := db.Find([]byte("a2"))
	require.Equal(t, []byte("a3"), it.Key())
	it.Next()
	require.Equal(t, []byte("b1"), it.Key())
	it.Next()
	require.False(t, it.Valid())
	require.NoError(t, it.Close())
}

func TestBoltTx_Nil(t *testing.T) {
	tx, err := NewBoltTx(nil, []byte("test"), json.Marshal, json.Unmarshal)
	require.Error(t, err)
	require.Nil(t, tx)
}

func TestBoltTx_StartAndRollback(t *testing.T) {
	db := initBoltDB(t)
	tx, err := db.StartTx()
	require.NoError(t, err)
	require.NoError(t, tx.Write([]byte("test1"), "1"))
	require.NoError(t, tx.Rollback())
	require.True(t, isEmpty(t, db))
	require.ErrorIs(t, tx.Rollback(), keyvaluedb.ErrTxClosed)
	require.ErrorIs(t, tx.Commit(), keyvaluedb.ErrTxClosed)
}

func TestBoltTx_CommitAndReadOwnWrites(t *testing.T) {
	db := initBoltDB(t, "k")
	tx, err := db.StartTx()
	require.NoError(t, err)
	require.NoError(t, tx.Write([]byte("test1"), "1"))
	require.NoError(t, tx.Delete([]byte("k")))
	var res string
	found, err := tx.Read([]byte("test1"), &res)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1", res)
	found, err = tx.Read([]byte("k"), &res)
	require.NoError(t, err)
	require.False(t, found)
	require.NoError(t, tx.Commit())

	found, err = db.Read([]byte("test1"), &res)
	require.NoError(t, err)
	require.True(t, found)
	found, err = db.Read([]byte("k"), &res)
	require.NoError(t, err)
	require.False(t, found)

	_, err = tx.Read([]byte("test1"), &res)
	require.ErrorIs(t, err, keyvaluedb.ErrTxClosed)
	require.ErrorIs(t, tx.Write([]byte("test1"), "2"), keyvaluedb.ErrTxClosed)
	require.ErrorIs(t, tx.Delete([]byte("test1")), keyvaluedb.ErrTxClosed)
}
