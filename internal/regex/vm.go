package regex

import (
	"bytes"
)

// VM is one resumable matching instance. It is created once per attempt to
// find the next match, and fed chunks in absolute-offset order via Step.
// After a confirmed Match, the driver starts a fresh VM (or Resets this one)
// at the offset just past the match, matching how a fresh regex exec would
// be issued for new, independent data.
type VM struct {
	prog   *Program
	origin int64 // absolute offset set by Reset; the literal path advances it past each chunk
	done   bool  // permanently exhausted: NoMatch will be returned forever

	// literal fast path state
	carry []byte // trailing bytes that might be a prefix of prog.literal

	// Pike VM state
	pike *pikeState
}

// NewVM creates a VM bound to prog, starting at absolute offset origin.
func NewVM(prog *Program, origin int64) *VM {
	v := &VM{prog: prog}
	v.Reset(origin)
	return v
}

// Reset rewinds the VM to scan fresh data starting at absolute offset
// origin, as if newly created. Used after a confirmed match (for global
// mode) to begin an independent search past the replaced region.
func (v *VM) Reset(origin int64) {
	v.origin = origin
	v.done = false
	v.carry = v.carry[:0]
	if !v.prog.isLiteral {
		v.pike = newPikeState(v.prog, origin)
	}
}

// Step feeds the next chunk of bytes (those immediately following whatever
// was fed last) and reports what the matcher now knows. eof signals that no
// further bytes will ever follow this chunk.
func (v *VM) Step(chunk []byte, eof bool) Verdict {
	if v.done {
		return Verdict{Kind: KindNoMatch}
	}
	if v.prog.isLiteral {
		return v.stepLiteral(chunk, eof)
	}
	return v.pike.step(chunk, eof)
}

// stepLiteral implements Step for plain byte-substring patterns. A literal
// match is never ambiguous (fixed length, no greedy alternatives), so the
// only state needed across calls is a short carry buffer holding trailing
// bytes that might complete the pattern once more data arrives.
func (v *VM) stepLiteral(chunk []byte, eof bool) Verdict {
	pat := v.prog.literal
	bufStart := v.origin - int64(len(v.carry))

	buf := make([]byte, 0, len(v.carry)+len(chunk))
	buf = append(buf, v.carry...)
	buf = append(buf, chunk...)
	v.origin += int64(len(chunk))

	if idx := bytes.Index(buf, pat); idx >= 0 {
		from := bufStart + int64(idx)
		to := from + int64(len(pat))
		v.carry = v.carry[:0]
		return Verdict{Kind: KindMatch, From: from, To: to}
	}

	if eof {
		v.done = true
		return Verdict{Kind: KindNoMatch}
	}

	overlap := 0
	maxOverlap := len(pat) - 1
	if maxOverlap > len(buf) {
		maxOverlap = len(buf)
	}
	for l := maxOverlap; l > 0; l-- {
		if bytes.HasSuffix(buf, pat[:l]) {
			overlap = l
			break
		}
	}

	end := bufStart + int64(len(buf))
	from := end - int64(overlap)

	if overlap == 0 {
		v.carry = v.carry[:0]
	} else {
		v.carry = append(v.carry[:0], buf[len(buf)-overlap:]...)
	}
	return Verdict{Kind: KindPartial, From: from, To: -1}
}
