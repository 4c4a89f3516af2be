package framing

import "sync"

// maxHeaderLen is the length of the largest chunk header, "\n#16777216\n".
const maxHeaderLen = 11

// Allocator supplies the staging buffers an Encoder assembles chunks in.
type Allocator interface {
	// MaxCapacity returns the capacity of the largest buffer Get can
	// supply.
	MaxCapacity() int
	// Get returns an empty buffer with capacity of at least size bytes.
	// size never exceeds MaxCapacity.
	Get(size int) []byte
	// Put returns a buffer obtained from Get.
	Put(buf []byte)
}

// NewPoolAllocator returns an Allocator recycling buffers of up to
// maxCapacity bytes through a sync.Pool.
func NewPoolAllocator(maxCapacity int) Allocator {
	return &poolAllocator{max: maxCapacity}
}

// DefaultAllocator is the Allocator used by encoders configured without one.
var DefaultAllocator = NewPoolAllocator(MaxChunkSize + maxHeaderLen)

type poolAllocator struct {
	max  int
	pool sync.Pool
}

func (a *poolAllocator) MaxCapacity() int { return a.max }

func (a *poolAllocator) Get(size int) []byte {
	if bp, ok := a.pool.Get().(*[]byte); ok && cap(*bp) >= size {
		return (*bp)[:0]
	}
	return make([]byte, 0, size)
}

func (a *poolAllocator) Put(buf []byte) {
	if cap(buf) == 0 || cap(buf) > a.max {
		return
	}
	buf = buf[:0]
	a.pool.Put(&buf)
}
