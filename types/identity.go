package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
)

const IdentityLength = 32

/*
Identity is a 32 byte account/key identity (owner, mint, signer, ...).
Text form is base58, the zero value means "none".
*/
type Identity [IdentityLength]byte

func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := base58.Decode(s)
	if err != nil {
		return id, fmt.Errorf("decoding identity %q: %w", s, err)
	}
	if len(b) != IdentityLength {
		return id, fmt.Errorf("invalid identity length %d, expected %d bytes", len(b), IdentityLength)
	}
	copy(id[:], b)
	return id, nil
}

/*
DeriveIdentity returns deterministic identity for the seeds, used for
addresses which are not backed by a key (multisig authority, proposal ID).
*/
func DeriveIdentity(seeds ...[]byte) Identity {
	h := sha256.New()
	for _, s := range seeds {
		// length prefix so that ("ab","c") and ("a","bc") differ
		_ = binary.Write(h, binary.BigEndian, uint32(len(s)))
		h.Write(s)
	}
	var id Identity
	copy(id[:], h.Sum(nil))
	return id
}

// MultisigAuthority is the identity governed commands of the mint are executed as.
func MultisigAuthority(mint Identity) Identity {
	return DeriveIdentity([]byte("multisig"), mint[:])
}

func ProposalID(mint, proposer Identity, createdAt uint64) Identity {
	return DeriveIdentity([]byte("proposal"), mint[:], proposer[:], binary.BigEndian.AppendUint64(nil, createdAt))
}

func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) Bytes() []byte {
	return bytes.Clone(id[:])
}

func (id Identity) String() string {
	return base58.Encode(id[:])
}

func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *Identity) UnmarshalText(text []byte) error {
	v, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// IdentityPtr returns pointer to the copy of id, convenience for optional fields.
func IdentityPtr(id Identity) *Identity {
	return &id
}
