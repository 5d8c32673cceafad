// Package random produces room codes and identities. Tests swap in
// mocks.MockRandom to get predictable values.
package random

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// RoomCodeAlphabet omits characters that are easy to confuse when read aloud
const RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Random provides the randomness used for room codes, identities and tokens
type Random interface {
	// RoomCode returns a code of the given length drawn from RoomCodeAlphabet
	RoomCode(length int) string

	// UUID returns a new random (version 4) UUID string
	UUID() string
}

// Crypto draws from crypto/rand
type Crypto struct{}

// New creates a Crypto source
func New() Crypto {
	return Crypto{}
}

// RoomCode returns a random room code
func (Crypto) RoomCode(length int) string {
	if length <= 0 {
		return ""
	}
	// 256 is a multiple of the alphabet size, so there is no modulo bias
	buf := make([]byte, length)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = RoomCodeAlphabet[int(b)%len(RoomCodeAlphabet)]
	}
	return string(buf)
}

// UUID returns a new random UUID
func (Crypto) UUID() string {
	return uuid.NewString()
}
