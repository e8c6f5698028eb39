package links

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	DefaultSlugLength = 7

	// URL-safe nanoid alphabet.
	slugAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
)

// NanoSlugger draws slugs from crypto/rand. It holds no state and is safe
// for concurrent use.
type NanoSlugger struct{}

func NewNanoSlugger() *NanoSlugger { return &NanoSlugger{} }

func (s *NanoSlugger) Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultSlugLength
	}
	return gonanoid.Generate(slugAlphabet, length)
}
