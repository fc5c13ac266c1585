// Package ids generates sortable unique identifiers for positions and
// trade records.
package ids

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// strictly increasing.
	mono = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a new ULID string based on the current UTC time.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), mono).String()
}
