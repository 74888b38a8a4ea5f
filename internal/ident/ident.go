// Package ident generates opaque identifiers for frames and layers.
package ident

import (
	"crypto/rand"
	"fmt"
	"sync/atomic"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	length   = 9
	maxByte  = 256 - 256%len(alphabet)
)

// Generator produces a new identifier on every call.
type Generator func() string

// New returns a random 9 character base36 identifier.
// Uniqueness is probabilistic: 36^9 values, nothing is registered.
func New() string {
	out := make([]byte, 0, length)
	var buf [2 * length]byte
	for len(out) < length {
		if _, err := rand.Read(buf[:]); err != nil {
			panic(fmt.Sprintf("ident: crypto/rand failed: %v", err))
		}
		for _, b := range buf {
			// 252 is the largest multiple of 36 below 256.
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out)
}

// Sequence returns a deterministic generator yielding prefix1, prefix2, ...
// Safe for concurrent use.
func Sequence(prefix string) Generator {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s%d", prefix, n.Add(1))
	}
}
