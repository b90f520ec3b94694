package graph

import (
	"context"
	"encoding/hex"
	"io"
	"strings"

	"lukechampine.com/blake3"
)

// Store keeps extracted graphs by content key.
// Implementations: MemStore (LRU cache), KuzuStore (persistent, cgo only).
type Store interface {
	io.Closer

	// Put records g under key. Implementations copy g; the caller keeps ownership.
	Put(ctx context.Context, key string, g *Graph) error

	// Get returns the graph stored under key, or nil if there is none.
	Get(ctx context.Context, key string) (*Graph, error)
}

// Key derives a store key from the language and the exact source bytes.
func Key(lang Language, source []byte) string {
	h := blake3.New(32, nil)
	h.Write([]byte(lang))
	h.Write([]byte{0})
	h.Write(source)
	return string(lang) + ":" + hex.EncodeToString(h.Sum(nil))
}

// cutKey splits a key produced by Key into its language and hash parts.
func cutKey(key string) (lang, hash string, ok bool) {
	return strings.Cut(key, ":")
}
