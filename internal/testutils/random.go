package test

import (
	"crypto/rand"
	"fmt"

	"github.com/sss-org/sss-engine/types"
)

func RandomBytes(len int) []byte {
	bytes := make([]byte, len)
	_, err := rand.Read(bytes)
	if err != nil {
		panic(err)
	}
	return bytes
}

func RandomString(len int) string {
	b := RandomBytes(len/2 + 1)
	return fmt.Sprintf("%x", b)[:len]
}

// RandomIdentity returns random non-zero identity.
func RandomIdentity() types.Identity {
	var id types.Identity
	copy(id[:], RandomBytes(types.IdentityLength))
	if id.IsZero() {
		id[0] = 1
	}
	return id
}
