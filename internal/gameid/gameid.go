package gameid

import (
	"crypto/rand"
	"math/big"
)

// Digits and upper-case letters, matching the short invite codes
// players share out of band.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

const codeLength = 5

// Generator - produces game codes. The engine checks codes against the
// registry and regenerates on collision, so implementations only need to be
// reasonably spread, not unique.
type Generator interface {
	NewCode() string
}

type cryptoGenerator struct{}

func NewGenerator() Generator {
	return &cryptoGenerator{}
}

// NewCode - returns a random 5-character upper-case alphanumeric code.
func (that *cryptoGenerator) NewCode() string {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(alphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the platform's entropy source is broken
			panic("gameid: failed to read random bytes: " + err.Error())
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code)
}
