// Package replace drives the streaming substitution: a single compiled
// pattern and a literal replacement are applied to a logical byte stream
// delivered across any number of chunks, with matches allowed to straddle
// chunk boundaries. It owns the pending chain and the regex VM adapter and
// exposes one entry point, Context.Feed, modeled on the host filter's
// on_body contract in the surrounding bodyfilter package.
package replace

import (
	"fmt"

	"github.com/replacefilter/replacefilter/internal/chain"
	"github.com/replacefilter/replacefilter/internal/errors"
	"github.com/replacefilter/replacefilter/internal/logger"
	"github.com/replacefilter/replacefilter/internal/regex"
)

// Status mirrors the exit codes a single filter pass can report.
type Status int

const (
	// StatusOK reports a normal pass with no pending work on this chunk.
	StatusOK Status = iota
	// StatusAgain reports that processing should continue with the next
	// chunk of the same stream; nothing more can be decided here.
	StatusAgain
	// StatusDeclined reports that no further match is possible for the
	// rest of this stream; the VM will not be consulted again.
	StatusDeclined
	// StatusError reports a fatal condition for this response.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAgain:
		return "again"
	case StatusDeclined:
		return "declined"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Context is one filter instance, scoped to a single response body.
type Context struct {
	prog        *regex.Program
	vm          *regex.VM
	replacement []byte
	global      bool

	pending chain.Chain

	nextOffset  int64 // absolute offset the next Feed call's chunk begins at
	vmDone      bool
	matchedOnce bool
}

// NewContext creates a filter instance for one response body.
func NewContext(prog *regex.Program, replacement []byte, global bool) *Context {
	return &Context{
		prog:        prog,
		vm:          regex.NewVM(prog, 0),
		replacement: replacement,
		global:      global,
	}
}

// passthrough reports whether the VM should no longer be consulted: either
// it is permanently exhausted, or "once" semantics already placed one
// replacement in the output.
func (c *Context) passthrough() bool {
	return c.vmDone || (!c.global && c.matchedOnce)
}

// Feed processes one chunk of the stream. special marks a zero-content
// marker chunk (no bytes, a pure end-of-stream or flush signal); eof marks
// the last chunk of the body. It returns the bytes to emit downstream from
// this call, in order.
func (c *Context) Feed(buf []byte, special bool, eof bool) ([]byte, Status, error) {
	bufStart := c.nextOffset
	bufEnd := bufStart + int64(len(buf))
	c.nextOffset = bufEnd

	if special || len(buf) == 0 {
		var out []byte
		if eof {
			out = c.drainPending()
		}
		return out, StatusAgain, nil
	}

	if c.passthrough() {
		out := c.drainPending()
		out = append(out, buf...)
		return out, c.terminalStatus(), nil
	}

	var out []byte
	pos := bufStart

	for pos < bufEnd {
		chunk := buf[pos-bufStart:]
		v := c.vm.Step(chunk, eof)

		switch v.Kind {
		case regex.KindMatch:
			emitted, next, stop, err := c.handleMatch(v, buf, bufStart, bufEnd, pos)
			if err != nil {
				return out, StatusError, err
			}
			out = append(out, emitted...)
			pos = next
			if stop {
				c.matchedOnce = true
				if pos < bufEnd {
					out = append(out, buf[pos-bufStart:]...)
					pos = bufEnd
				}
				return out, c.terminalStatus(), nil
			}
			c.vm.Reset(pos)

		case regex.KindPartial:
			emitted, next, err := c.handlePartial(v, buf, bufStart, bufEnd, pos)
			if err != nil {
				return out, StatusError, err
			}
			out = append(out, emitted...)
			pos = next

		case regex.KindNoMatch:
			out = append(out, c.drainPending()...)
			out = append(out, buf[pos-bufStart:]...)
			c.vmDone = true
			return out, StatusDeclined, nil

		case regex.KindError:
			return out, StatusError, fmt.Errorf("%w: %w", errors.ErrVMFailure, v.Err)
		}
	}

	if eof {
		return out, StatusOK, nil
	}
	return out, StatusAgain, nil
}

func (c *Context) terminalStatus() Status {
	if c.vmDone {
		return StatusDeclined
	}
	return StatusOK
}

// handleMatch implements §4.3's Match branches. It returns the bytes to
// emit, the cursor position to resume scanning from, and whether the
// driver should stop consulting the VM for the remainder of the stream
// ("once" semantics firing).
func (c *Context) handleMatch(v regex.Verdict, buf []byte, bufStart, bufEnd, pos int64) ([]byte, int64, bool, error) {
	from, to := v.From, v.To

	if to < bufStart {
		return nil, pos, false, fmt.Errorf("%w: match ends at %d, stream already emitted through %d", errors.ErrLookBehind, to, bufStart)
	}

	var out []byte

	if from < bufStart {
		// Match begins inside previously-saved pending bytes: the surviving
		// prefix (strictly before from) is safe and flushed; everything
		// from `from` onward is subsumed by the match and discarded.
		logger.Debug("match spans pending region", "from", from, "to", to, string(c.pending.Bytes(from, minInt64(to, bufStart))))
		out = append(out, c.pending.CutPrefix(from)...)
		c.pending.DiscardAll()
	} else {
		// Match lies entirely within the current buffer (from == to is a
		// legal zero-width match; the slice below is then empty).
		out = append(out, c.drainPending()...)
		out = append(out, buf[pos-bufStart:from-bufStart]...)
	}

	out = append(out, c.replacement...)

	if from == to && c.global {
		// Guard against a pathological infinite loop on patterns that can
		// match the empty string: force one byte of forward progress
		// before the next scan attempt.
		if to < bufEnd {
			out = append(out, buf[to-bufStart])
			to++
		}
	}

	return out, to, !c.global, nil
}

// handlePartial implements §4.3's Partial branches, after normalising an
// open-ended "to" to the end of the chunk just consumed. The three bullets
// in §4.3 (no tentative match yet, tentative match starting in the current
// buffer, tentative match reaching back into pending) are really one rule:
// everything strictly before `from` is now known-safe and is flushed —
// whether it sits in old pending entries, the current buffer's prefix, or
// both — and everything from `from` up to `to` becomes the new pending.
func (c *Context) handlePartial(v regex.Verdict, buf []byte, bufStart, bufEnd, pos int64) ([]byte, int64, error) {
	from, to := v.From, v.To
	if to == -1 {
		to = bufEnd
	}

	var out []byte

	if from <= bufStart {
		// Any surviving old pending suffix (>= from) is kept; whatever lay
		// before from is flushed.
		out = append(out, c.pending.CutPrefix(from)...)
	} else {
		// Nothing of the old pending chain can survive: the tentative
		// match starts after it, inside the current buffer.
		out = append(out, c.drainPending()...)
		out = append(out, buf[pos-bufStart:from-bufStart]...)
	}

	tentativeFrom := from
	if tentativeFrom < bufStart {
		tentativeFrom = bufStart
	}
	if to > tentativeFrom {
		if err := c.pending.Append(tentativeFrom, buf[tentativeFrom-bufStart:to-bufStart]); err != nil {
			return out, bufEnd, fmt.Errorf("buffering tentative match: %w", err)
		}
	}

	if front := c.pending.Front(); front != nil {
		logger.Trace("pending chain grew", "from", front.Start, "bytes", c.pending.Len())
	}

	return out, bufEnd, nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// drainPending flushes and releases the entire pending chain, in order.
func (c *Context) drainPending() []byte {
	if c.pending.Empty() {
		return nil
	}
	out := make([]byte, 0, c.pending.Len())
	for !c.pending.Empty() {
		n := c.pending.PopFront()
		out = append(out, n.Data...)
		chain.Release(n)
	}
	return out
}
