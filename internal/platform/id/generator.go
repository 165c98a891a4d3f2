package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const defaultByteLen = 8

// Generator creates opaque IDs used to correlate log lines.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator yields "<prefix>_<hex>" IDs from crypto/rand.
type RandomGenerator struct {
	prefix  string
	byteLen int
}

func NewRandomGenerator(prefix string) *RandomGenerator {
	return &RandomGenerator{prefix: prefix, byteLen: defaultByteLen}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, g.byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	encoded := hex.EncodeToString(buf)
	if g.prefix == "" {
		return encoded, nil
	}
	return g.prefix + "_" + encoded, nil
}
