package chain

import "fmt"

// Node is one scanned-but-not-yet-emitted byte range. Start and End are
// absolute offsets into the stream being filtered, not offsets into Data:
// the separation mirrors the "pending" list in the original C filter, which
// overloaded a single file_pos/file_last pair for both roles. Go has no
// equivalent memory-pressure reason to share those fields, so they stay
// distinct here — it makes the surgery in the replace driver legible
// instead of clever.
type Node struct {
	Start, End int64
	Data       []byte
	owned      *[]byte // non-nil if Data was drawn from the pool and must be released
	Next       *Node
}

func (n *Node) String() string {
	return fmt.Sprintf("chain.Node{%d,%d len=%d}", n.Start, n.End, len(n.Data))
}

// Len reports the byte length of the region, which must always equal
// len(Data); callers that slice Data without adjusting Start/End are wrong.
func (n *Node) Len() int64 { return n.End - n.Start }

// Chain is a singly-linked queue of Nodes kept in ascending, contiguous
// Start/End order. Append is O(1) via the tail pointer; nodes are otherwise
// only ever removed from the front or split at an interior offset.
type Chain struct {
	head, tail *Node
	length     int64
}

// Append adds a new region to the tail. data is copied into a pool-owned
// buffer so the caller's slice (often a buffer the host will reuse) can be
// released immediately after the call returns. It fails with
// errors.ErrPoolExhausted if the pool's outstanding cap has been reached.
func (c *Chain) Append(start int64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	owned, err := Get(len(data))
	if err != nil {
		return err
	}
	*owned = append(*owned, data...)
	n := &Node{Start: start, End: start + int64(len(data)), Data: *owned, owned: owned}
	c.appendNode(n)
	return nil
}

func (c *Chain) appendNode(n *Node) {
	if c.tail == nil {
		c.head, c.tail = n, n
	} else {
		c.tail.Next = n
		c.tail = n
	}
	c.length += n.Len()
}

// Empty reports whether the chain holds any pending bytes.
func (c *Chain) Empty() bool { return c.head == nil }

// Front returns the earliest pending node, or nil if the chain is empty.
func (c *Chain) Front() *Node { return c.head }

// Len reports the total number of pending bytes across all nodes.
func (c *Chain) Len() int64 { return c.length }

// PopFront removes and returns the earliest pending node.
func (c *Chain) PopFront() *Node {
	n := c.head
	if n == nil {
		return nil
	}
	c.head = n.Next
	if c.head == nil {
		c.tail = nil
	}
	n.Next = nil
	c.length -= n.Len()
	return n
}

// Release returns a node's backing buffer to the pool.
func Release(n *Node) {
	if n == nil || n.owned == nil {
		return
	}
	Put(n.owned)
	n.owned = nil
	n.Data = nil
}

// SplitAt divides the node containing offset at into two adjacent nodes,
// [Start,at) and [at,End), so later code can address either half as its
// own chain entry. at must lie strictly inside some node's range (exclusive
// of the node's own Start, since splitting at Start would be a no-op); if
// at does not fall inside the chain at all, SplitAt is a no-op.
func (c *Chain) SplitAt(at int64) {
	prev := (*Node)(nil)
	for n := c.head; n != nil; n = n.Next {
		if n.Start < at && at < n.End {
			trim := at - n.Start
			leftNode := &Node{Start: n.Start, End: at, Data: n.Data[:trim]}
			n.Start = at
			n.Data = n.Data[trim:]
			leftNode.Next = n
			if prev == nil {
				c.head = leftNode
			} else {
				prev.Next = leftNode
			}
			return
		}
		prev = n
	}
}

// CutPrefix splits off and returns every byte strictly before cut, releasing
// those nodes. Whatever lies at or after cut remains in the chain, which is
// what the partial match case needs (the tail might still become part of a
// match).
func (c *Chain) CutPrefix(cut int64) []byte {
	if c.head == nil || c.head.Start >= cut {
		return nil
	}
	c.SplitAt(cut)
	var out []byte
	for c.head != nil && c.head.Start < cut {
		n := c.PopFront()
		out = append(out, n.Data...)
		Release(n)
	}
	return out
}

// DiscardAll drops every remaining pending node, releasing their buffers,
// without emitting their bytes anywhere. Used once a confirmed match has
// been shown to subsume the whole of whatever was still pending.
func (c *Chain) DiscardAll() {
	for c.head != nil {
		Release(c.PopFront())
	}
}

// Bytes copies out the contiguous region [from,to) spanning one or more
// nodes. Callers use this when a verdict needs to look back across a match
// that began inside the pending chain rather than in the buffer just read.
func (c *Chain) Bytes(from, to int64) []byte {
	if to <= from {
		return nil
	}
	out := make([]byte, 0, to-from)
	for n := c.head; n != nil && n.Start < to; n = n.Next {
		lo, hi := n.Start, n.End
		if lo < from {
			lo = from
		}
		if hi > to {
			hi = to
		}
		if hi <= lo {
			continue
		}
		out = append(out, n.Data[lo-n.Start:hi-n.Start]...)
	}
	return out
}
