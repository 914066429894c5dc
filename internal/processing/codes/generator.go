package codes

import (
	"crypto/rand"
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CryptoGenerator produces random base62 short codes.
type CryptoGenerator struct{}

func NewCryptoGenerator() *CryptoGenerator { return &CryptoGenerator{} }

func (g *CryptoGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	out := make([]byte, length)
	for i := range buf {
		out[i] = base62Alphabet[int(buf[i])%len(base62Alphabet)]
	}

	return string(out), nil
}
