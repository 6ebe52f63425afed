package errors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap with message",
			err:      ErrLookBehind,
			msg:      "scanning match",
			expected: "scanning match: replace_filter: match ends before already-emitted data",
		},
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "should return nil",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil && result != nil {
				t.Errorf("expected nil, got %v", result)
			}
			if tt.err != nil && result.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result.Error())
			}
		})
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrPoolExhausted, "requesting %d bytes", 4096)
	expected := "requesting 4096 bytes: replace_filter: buffer pool exhausted"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestIs(t *testing.T) {
	wrapped := Wrap(ErrDuplicateDirective, "loading config")

	if !Is(wrapped, ErrDuplicateDirective) {
		t.Error("expected Is to return true for wrapped error")
	}
	if Is(wrapped, ErrUnknownFlag) {
		t.Error("expected Is to return false for a different sentinel")
	}
}

func TestMultiError(t *testing.T) {
	var multi MultiError

	if multi.HasErrors() {
		t.Error("new MultiError should not have errors")
	}
	if multi.ErrorOrNil() != nil {
		t.Error("ErrorOrNil should return nil for empty MultiError")
	}

	multi.Add(ErrEmptyPattern)
	multi.Add(nil)
	multi.Add(ErrUnknownFlag)

	if !multi.HasErrors() {
		t.Error("MultiError should have errors after adding")
	}
	if len(multi.Errors()) != 2 {
		t.Errorf("expected 2 errors, got %d", len(multi.Errors()))
	}

	var single MultiError
	single.Add(ErrEmptyPattern)
	if single.Error() != ErrEmptyPattern.Error() {
		t.Errorf("single error message incorrect: %s", single.Error())
	}
}

func TestErrorUnwrapping(t *testing.T) {
	base := errors.New("base error")
	wrapped := Wrap(base, "context")

	if !errors.Is(wrapped, base) {
		t.Error("Is did not see through the wrap to the base error")
	}
}

func TestMultiErrorUnwrapsToMembers(t *testing.T) {
	var multi MultiError
	multi.Add(Wrap(ErrDuplicateDirective, "loading config file"))
	multi.Add(ErrEmptyPattern)

	err := multi.ErrorOrNil()
	if !errors.Is(err, ErrDuplicateDirective) {
		t.Error("expected errors.Is to find ErrDuplicateDirective inside the aggregate")
	}
	if !errors.Is(err, ErrEmptyPattern) {
		t.Error("expected errors.Is to find ErrEmptyPattern inside the aggregate")
	}
	if errors.Is(err, ErrUnknownFlag) {
		t.Error("errors.Is should not match a sentinel that was never added")
	}
}
