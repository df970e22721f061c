package queue

import "github.com/randomizedcoder/mpmc-queue/internal/padded"

// cursor counts claims since construction. It only ever grows and relies on
// uint64 wraparound; masking it addresses a slot.
type cursor struct {
	padded.Uint64
}

// reset zeroes the cursor with a full fence, before the queue is shared.
func (c *cursor) reset() {
	c.SetFullFence(0)
}
