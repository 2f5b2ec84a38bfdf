// Package idgen produces prefixed identifiers for listings and accounts.
//
// An id has the shape <prefix><unix-millis>_<suffix>.  The suffix is the
// entropy part of a ULID drawn from a process-wide monotonic source, so two
// ids generated in the same millisecond still differ and ids never collide
// within a process.
package idgen

import (
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes used by the listing store and account collection.
const (
	PrefixApartment     = "apt_"
	PrefixStudio        = "studio_"
	PrefixSaleApartment = "sale_apt_"
	PrefixAdmin         = "admin_"
)

// Generator returns a new id for the given prefix.
type Generator func(prefix string) string

// New returns a fresh id such as "apt_1718000000000_01hzx3k9c2q8v7r5m4n6p0w1ta".
func New(prefix string) string {
	now := time.Now()
	id := ulid.MustNew(ulid.Timestamp(now), defaultEntropy())
	// the first 10 characters encode the timestamp which is already spelled out
	suffix := strings.ToLower(id.String()[10:])
	return prefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}

// Sequence returns a deterministic Generator yielding prefix + n for
// n = 1, 2, ...  It is intended for tests.
func Sequence() Generator {
	var n int
	return func(prefix string) string {
		n++
		return prefix + strconv.Itoa(n)
	}
}
