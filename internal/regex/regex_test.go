package regex

import "testing"

func feed(t *testing.T, vm *VM, chunks []string) []Verdict {
	t.Helper()
	var verdicts []Verdict
	for i, c := range chunks {
		eof := i == len(chunks)-1
		verdicts = append(verdicts, vm.Step([]byte(c), eof))
	}
	return verdicts
}

func TestLiteralMatchAcrossBoundary(t *testing.T) {
	prog, err := Compile("abc", Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !prog.IsLiteral() {
		t.Fatalf("expected literal fast path for %q", prog.Pattern())
	}

	vm := NewVM(prog, 0)
	verdicts := feed(t, vm, []string{"ab", "cdef"})

	if verdicts[0].Kind != KindPartial {
		t.Fatalf("chunk 1: got %v, want Partial", verdicts[0])
	}
	if verdicts[0].From != 0 {
		t.Fatalf("chunk 1: From = %d, want 0", verdicts[0].From)
	}
	if verdicts[1].Kind != KindMatch || verdicts[1].From != 0 || verdicts[1].To != 3 {
		t.Fatalf("chunk 2: got %v, want Match(0,3)", verdicts[1])
	}
}

func TestLiteralRescindedPartial(t *testing.T) {
	prog, err := Compile("abcd", Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	vm := NewVM(prog, 0)

	v1 := vm.Step([]byte("a"), false)
	if v1.Kind != KindPartial || v1.From != 0 {
		t.Fatalf("after 'a': got %v", v1)
	}
	v2 := vm.Step([]byte("b"), false)
	if v2.Kind != KindPartial || v2.From != 0 {
		t.Fatalf("after 'b': got %v", v2)
	}
	v3 := vm.Step([]byte("c"), false)
	if v3.Kind != KindPartial || v3.From != 0 {
		t.Fatalf("after 'c': got %v", v3)
	}
	// 'e' breaks the prefix entirely: nothing of "abc" survives.
	v4 := vm.Step([]byte("e"), true)
	if v4.Kind != KindNoMatch {
		t.Fatalf("after 'e': got %v, want NoMatch", v4)
	}
}

func TestLiteralNoMatch(t *testing.T) {
	prog, err := Compile("zzz", Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	vm := NewVM(prog, 0)
	v := vm.Step([]byte("hello world"), true)
	if v.Kind != KindNoMatch {
		t.Fatalf("got %v, want NoMatch", v)
	}
}

func TestPikeGreedyPlusAcrossBoundary(t *testing.T) {
	prog, err := Compile("a+", Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if prog.IsLiteral() {
		t.Fatalf("%q should not use the literal fast path", prog.Pattern())
	}

	vm := NewVM(prog, 0)
	v1 := vm.Step([]byte("aaa"), false)
	if v1.Kind != KindPartial || v1.From != 0 {
		t.Fatalf("chunk 1: got %v", v1)
	}
	v2 := vm.Step([]byte("ab"), true)
	if v2.Kind != KindMatch || v2.From != 0 || v2.To != 4 {
		t.Fatalf("chunk 2: got %v, want Match(0,4)", v2)
	}
}

func TestPikeZeroWidthMatch(t *testing.T) {
	prog, err := Compile("a*", Flags{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	vm := NewVM(prog, 0)
	v := vm.Step([]byte("b"), true)
	if v.Kind != KindMatch || v.From != 0 || v.To != 0 {
		t.Fatalf("got %v, want zero-width Match(0,0)", v)
	}
}

func TestCaseInsensitiveFlagDisablesLiteralPath(t *testing.T) {
	prog, err := Compile("ERROR", Flags{CaseInsensitive: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if prog.IsLiteral() {
		t.Fatalf("case-insensitive pattern must not use the literal fast path")
	}
	vm := NewVM(prog, 0)
	v := vm.Step([]byte("an error occurred"), true)
	if v.Kind != KindMatch || v.From != 3 || v.To != 8 {
		t.Fatalf("got %v, want Match(3,8)", v)
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	if _, err := ParseFlags("igz"); err == nil {
		t.Fatalf("expected error for unknown flag 'z'")
	}
	f, err := ParseFlags("gi")
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if !f.Global || !f.CaseInsensitive {
		t.Fatalf("got %+v, want both flags set", f)
	}
}
