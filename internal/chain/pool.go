// Package chain models the pending-region bookkeeping the streaming replacer
// needs: an ordered list of scanned-but-not-yet-emitted byte ranges (the
// pending chain) and a tiered pool of reusable byte slices backing that
// chain's nodes.
package chain

import (
	"sync"
	"sync/atomic"

	"github.com/replacefilter/replacefilter/internal/errors"
)

// Tiered buffer pools, sized the way the teacher's own scanner/medium/small
// pools are: most replace_filter chunks are small, a minority are large
// response bodies read in one shot, so three size classes cover both
// without forcing every allocation up to the largest tier.
var (
	largePool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, 64*1024)
			return &b
		},
	}
	mediumPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, 8*1024)
			return &b
		},
	}
	smallPool = sync.Pool{
		New: func() interface{} {
			b := make([]byte, 0, 1*1024)
			return &b
		},
	}
)

const (
	smallMax  = 1 * 1024
	mediumMax = 8 * 1024

	// maxOutstanding bounds the total capacity checked out across all
	// tiers at once, so a pattern that can never resolve (holding an
	// ever-growing pending prefix) fails loudly with ErrPoolExhausted
	// instead of growing this process's memory without limit.
	maxOutstanding = 256 * 1024 * 1024
)

// outstanding tracks the total capacity currently checked out of the pools
// (acquired via Get, not yet returned via Put).
var outstanding int64

// Get returns a byte slice with at least size capacity, drawn from whichever
// tier fits best. It fails with errors.ErrPoolExhausted once maxOutstanding
// bytes are checked out at once rather than growing the pools unbounded.
func Get(size int) (*[]byte, error) {
	b := acquire(size)
	held := int64(cap(*b))

	if atomic.AddInt64(&outstanding, held) > maxOutstanding {
		atomic.AddInt64(&outstanding, -held)
		release(b)
		return nil, errors.ErrPoolExhausted
	}

	*b = (*b)[:0]
	return b, nil
}

// Put returns a buffer obtained from Get to its tier's pool.
func Put(b *[]byte) {
	if b == nil {
		return
	}
	atomic.AddInt64(&outstanding, -int64(cap(*b)))
	*b = (*b)[:0]
	release(b)
}

func acquire(size int) *[]byte {
	var b *[]byte
	switch {
	case size <= smallMax:
		b = smallPool.Get().(*[]byte)
	case size <= mediumMax:
		b = mediumPool.Get().(*[]byte)
	default:
		b = largePool.Get().(*[]byte)
	}
	if cap(*b) < size {
		*b = make([]byte, 0, size)
	}
	return b
}

// release returns b to its tier's pool. The tier is chosen by capacity, not
// the length it held, so a buffer always returns to where it came from.
func release(b *[]byte) {
	switch {
	case cap(*b) <= smallMax:
		smallPool.Put(b)
	case cap(*b) <= mediumMax:
		mediumPool.Put(b)
	default:
		largePool.Put(b)
	}
}
