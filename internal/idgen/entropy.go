package idgen

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	entropyOnce sync.Once
	entropy     io.Reader
)

// defaultEntropy is a monotonic entropy source safe for concurrent use.
// Within one millisecond every draw increments the previous one.
func defaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		entropy = &ulid.LockedMonotonicReader{MonotonicReader: ulid.Monotonic(rand.Reader, 0)}
	})
	return entropy
}
