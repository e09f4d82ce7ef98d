package book

import (
	"math/rand"

	"github.com/FocuswithJustin/Ouroboros/core/errors"
)

// ID is a section identifier. IDs are drawn uniformly from the full 16-bit
// space, so they look arbitrary in the rendered text while staying cheap to
// compare and print.
type ID uint16

// maxIDAttempts bounds the collision-retry loop. A book has tens of sections
// against 65,536 possible IDs, so hitting the cap means something is wrong
// with the ID space, not bad luck.
const maxIDAttempts = 4096

// IDAllocator issues unique section IDs for one run.
type IDAllocator struct {
	used map[ID]struct{}
	rng  *rand.Rand
}

// NewIDAllocator returns an allocator drawing from rng.
func NewIDAllocator(rng *rand.Rand) *IDAllocator {
	return &IDAllocator{
		used: make(map[ID]struct{}),
		rng:  rng,
	}
}

// Next allocates a fresh ID, redrawing on collision with any previously
// issued ID. It fails only if the retry cap is exhausted.
func (a *IDAllocator) Next() (ID, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := ID(a.rng.Intn(1 << 16))
		if _, taken := a.used[id]; taken {
			continue
		}
		a.used[id] = struct{}{}
		return id, nil
	}
	return 0, errors.Wrapf(errors.ErrIDSpaceExhausted, "after %d attempts", maxIDAttempts)
}

// InUse reports whether id has been allocated.
func (a *IDAllocator) InUse(id ID) bool {
	_, ok := a.used[id]
	return ok
}

// Count reports how many IDs have been allocated.
func (a *IDAllocator) Count() int {
	return len(a.used)
}
