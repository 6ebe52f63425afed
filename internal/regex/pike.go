package regex

import (
	"regexp/syntax"
	"unicode/utf8"
)

// pikeState runs a Pike-VM style NFA simulation (Thompson construction,
// simulated breadth-first over regexp/syntax's compiled instruction list)
// one rune at a time. It is the "non-backtracking regex VM" the adapter
// contract calls for: every thread in the simulation advances in lockstep,
// so a match is found in time proportional to input length regardless of
// alternation, and the simulation is naturally resumable — threads already
// in flight when a chunk ends simply wait for the next one.
//
// Threads are kept in priority order (leftmost-first, matching Go's own
// regexp semantics): when a lower-priority thread reaches InstMatch while a
// higher-priority thread is still alive, the match is held as a candidate
// rather than returned immediately, since the higher-priority thread may
// still go on to produce a better match (this is what makes a+ greedy
// across a chunk boundary). The candidate is only finalized once every
// higher-priority thread has died or real end of input is reached.
//
// Zero-width assertions (^, $, \b and friends) are treated as unconditional
// passthroughs rather than evaluated against surrounding runes: the one
// exception is a pattern anchored with a leading "^", which is honored by
// only ever spawning the initial search thread at absolute offset 0 and
// never respawning afterwards. This mirrors the real PCRE2 partial-matching
// facility the original filter was built on, which documents the same
// restriction around anchors and lookaround under incremental matching.
type pikeState struct {
	prog     *syntax.Prog
	anchored bool

	clist, nlist []thread
	mark         []uint64
	gen          uint64

	candidate    bool
	candFrom     int64
	candTo       int64

	origin  int64 // absolute offset of byte 0 in this frame
	bytePos int64 // bytes consumed since origin

	// incomplete trailing UTF-8 bytes held back until a full rune arrives
	encBuf [utf8.UTFMax]byte
	encLen int
}

type thread struct {
	pc    uint32
	start int64 // absolute offset where this attempt began
}

func newPikeState(p *Program, origin int64) *pikeState {
	s := &pikeState{
		prog:     p.prog,
		anchored: p.anchored,
		mark:     make([]uint64, len(p.prog.Inst)),
		origin:   origin,
	}
	s.gen++
	if !s.anchored || origin == 0 {
		addThread(s.prog, &s.clist, s.mark, s.gen, uint32(s.prog.Start), s.origin)
	}
	return s
}

func (s *pikeState) step(chunk []byte, eof bool) Verdict {
	i := 0
	for i < len(chunk) {
		var raw []byte
		if s.encLen > 0 {
			raw = append(s.encBuf[:s.encLen:s.encLen], chunk[i:]...)
		} else {
			raw = chunk[i:]
		}

		r, size := utf8.DecodeRune(raw)
		if r == utf8.RuneError && size == 1 && len(raw) < utf8.UTFMax && !eof {
			// Might be a truncated multi-byte sequence; wait for more bytes
			// before deciding it is genuinely invalid.
			s.encLen = copy(s.encBuf[:], raw)
			return s.pendingVerdict()
		}

		consumed := size - s.encLen
		if consumed < 0 {
			consumed = 0
		}
		s.encLen = 0
		i += consumed

		if final, from, to := s.consumeRune(r); final {
			return Verdict{Kind: KindMatch, From: from, To: to}
		}
		if len(s.clist) == 0 {
			return s.finish()
		}
	}

	if eof {
		return s.finish()
	}

	return s.pendingVerdict()
}

// finish is reached either at true eof or once every thread has died. It
// resolves to whichever is best of: a match instruction still sitting in
// clist (no further input could ever complete a live continuation, so it
// wins outright), the best deferred candidate recorded earlier, or NoMatch.
func (s *pikeState) finish() Verdict {
	if matched, from, to := s.finalize(); matched {
		return Verdict{Kind: KindMatch, From: from, To: to}
	}
	if s.candidate {
		return Verdict{Kind: KindMatch, From: s.candFrom, To: s.candTo}
	}
	s.gen++ // drop every thread; a later Step starts from an empty list
	s.clist = s.clist[:0]
	return Verdict{Kind: KindNoMatch}
}

// pendingVerdict reports the best still-possible match using the current
// (priority-ordered) clist: its first entry is always the oldest surviving
// attempt.
func (s *pikeState) pendingVerdict() Verdict {
	if len(s.clist) == 0 {
		if s.candidate {
			return Verdict{Kind: KindMatch, From: s.candFrom, To: s.candTo}
		}
		return Verdict{Kind: KindNoMatch}
	}
	return Verdict{Kind: KindPartial, From: s.clist[0].start, To: -1}
}

// finalize checks whether any live thread has already reached Match
// without needing another rune (a zero-width or already-complete match
// discovered exactly at the point input ran out).
func (s *pikeState) finalize() (bool, int64, int64) {
	p := s.origin + s.bytePos
	for _, t := range s.clist {
		if s.prog.Inst[t.pc].Op == syntax.InstMatch {
			return true, t.start, p
		}
	}
	return false, 0, 0
}

// consumeRune advances the simulation by one rune. It returns final=true
// only when the match found cannot be beaten by any thread still alive —
// i.e. no higher-priority thread survived this same rune. Otherwise any
// match seen is stashed as a deferred candidate and the simulation keeps
// running the higher-priority survivors.
func (s *pikeState) consumeRune(r rune) (final bool, from, to int64) {
	p := s.origin + s.bytePos
	size := utf8.RuneLen(r)
	if size < 1 {
		size = 1
	}

	s.gen++
	s.nlist = s.nlist[:0]
	higherSurvived := false

scan:
	for _, t := range s.clist {
		inst := s.prog.Inst[t.pc]
		switch inst.Op {
		case syntax.InstMatch:
			if !higherSurvived {
				return true, t.start, p
			}
			s.candidate, s.candFrom, s.candTo = true, t.start, p
			break scan
		case syntax.InstRune, syntax.InstRune1, syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
			if inst.MatchRune(r) {
				addThread(s.prog, &s.nlist, s.mark, s.gen, inst.Out, t.start)
				higherSurvived = true
			}
		}
	}

	if !s.anchored && !s.candidate {
		addThread(s.prog, &s.nlist, s.mark, s.gen, uint32(s.prog.Start), p+int64(size))
	}

	s.clist, s.nlist = s.nlist, s.clist
	s.bytePos += int64(size)
	return false, 0, 0
}

// addThread follows epsilon transitions (Alt, Capture, Nop, EmptyWidth)
// until reaching an instruction that consumes a rune or matches, adding
// each reachable consuming/matching instruction at most once per
// generation so priority order and termination are both preserved.
func addThread(prog *syntax.Prog, list *[]thread, mark []uint64, gen uint64, pc uint32, start int64) {
	if mark[pc] == gen {
		return
	}
	mark[pc] = gen

	inst := prog.Inst[pc]
	switch inst.Op {
	case syntax.InstAlt, syntax.InstAltMatch:
		addThread(prog, list, mark, gen, inst.Out, start)
		addThread(prog, list, mark, gen, inst.Arg, start)
	case syntax.InstCapture, syntax.InstNop, syntax.InstEmptyWidth:
		addThread(prog, list, mark, gen, inst.Out, start)
	case syntax.InstFail:
		// dead end
	default: // InstRune, InstRune1, InstRuneAny, InstRuneAnyNotNL, InstMatch
		*list = append(*list, thread{pc: pc, start: start})
	}
}
