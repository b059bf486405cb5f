package memorydb

import (
	"bytes"
	"errors"
	"slices"
)

type entry struct {
	key  []byte
	data []byte
}

// Itr walks the records which existed when it was created, later writes are not seen.
type Itr struct {
	entries []entry
}

func newIterator(records map[string][]byte, from []byte) *Itr {
	it := &Itr{}
	for key, data := range records {
		if bytes.Compare([]byte(key), from) >= 0 {
			it.entries = append(it.entries, entry{key: []byte(key), data: data})
		}
	}
	slices.SortFunc(it.entries, func(a, b entry) int { return bytes.Compare(a.key, b.key) })
	return it
}

func (it *Itr) Valid() bool {
	return len(it.entries) > 0
}

func (it *Itr) Next() {
	if it.Valid() {
		it.entries = it.entries[1:]
	}
}

func (it *Itr) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.entries[0].key
}

func (it *Itr) Value(v any) error {
	if !it.Valid() {
		return errors.New("iterator invalid")
	}
	_, err := decode(it.entries[0].data, true, v)
	return err
}

func (it *Itr) Close() error {
	it.entries = nil
	return nil
}
