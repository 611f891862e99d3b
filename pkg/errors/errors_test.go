package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"plain", New(ErrCodeInvalidInput, "node %q has no width", "n1"), `INVALID_INPUT: node "n1" has no width`},
		{"subject", New(ErrCodeEdgeResolution, "target missing").At("e7"), "EDGE_RESOLUTION [e7]: target missing"},
		{"cause", Wrap(ErrCodeFetch, errors.New("timeout"), "download mdi:router"), "FETCH: download mdi:router: timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(ErrCodeThemeCompilation, cause, "compile theme.scss")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("stdlib errors.Is should find the cause")
	}
}

func TestIs(t *testing.T) {
	nested := Wrap(ErrCodeThemeCompilation, New(ErrCodeFileNotFound, "theme.scss"), "compile")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"match", New(ErrCodeInvalidInput, "x"), ErrCodeInvalidInput, true},
		{"mismatch", New(ErrCodeInvalidInput, "x"), ErrCodeStructural, false},
		{"outer of chain", nested, ErrCodeThemeCompilation, true},
		{"inner of chain", nested, ErrCodeFileNotFound, true},
		{"behind fmt wrap", fmt.Errorf("render: %w", New(ErrCodeEdgeResolution, "e1")), ErrCodeEdgeResolution, true},
		{"uncoded", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil", nil, ErrCodeInvalidInput, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(Wrap(ErrCodeInternal, New(ErrCodeStructural, "x"), "y")); got != ErrCodeInternal {
		t.Errorf("GetCode = %q, want outermost code", got)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q", got)
	}
	if got := GetCode(nil); got != "" {
		t.Errorf("GetCode(nil) = %q", got)
	}
}

func TestSubjectOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"none", New(ErrCodeStructural, "cycle"), ""},
		{"outer", New(ErrCodeEdgeResolution, "x").At("e1"), "e1"},
		{"inner", Wrap(ErrCodeInternal, New(ErrCodeFetch, "x").At("mdi:router"), "y"), "mdi:router"},
		{"behind fmt wrap", fmt.Errorf("w: %w", New(ErrCodeFetch, "x").At("a")), "a"},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SubjectOf(tt.err); got != tt.want {
				t.Errorf("SubjectOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeInvalidInput, "layout document is empty"), "layout document is empty"},
		{"subject is not repeated", New(ErrCodeEdgeResolution, "edge \"e1\" has no target").At("e1"), "edge \"e1\" has no target"},
		{"chain", Wrap(ErrCodeThemeCompilation, New(ErrCodeFileNotFound, "theme.scss not found"), "compile theme"), "compile theme: theme.scss not found"},
		{"uncoded cause", Wrap(ErrCodeThemeCompilation, errors.New("exit status 2"), "sass failed"), "sass failed: exit status 2"},
		{"uncoded", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"fetch", New(ErrCodeFetch, "offline"), false},
		{"corruption", New(ErrCodeCacheCorruption, "bad entry"), false},
		{"wrapped fetch", fmt.Errorf("icon: %w", New(ErrCodeFetch, "offline")), false},
		{"input", New(ErrCodeInvalidInput, "bad json"), true},
		{"structural", New(ErrCodeStructural, "cycle"), true},
		{"theme", New(ErrCodeThemeCompilation, "sass missing"), true},
		{"uncoded", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeRecoverable(t *testing.T) {
	for _, c := range []Code{ErrCodeFetch, ErrCodeCacheCorruption} {
		if !c.Recoverable() {
			t.Errorf("%s should be recoverable", c)
		}
	}
	for _, c := range []Code{ErrCodeInvalidInput, ErrCodeStructural, ErrCodeEdgeResolution, ErrCodeThemeCompilation, ErrCodeInternal, ""} {
		if c.Recoverable() {
			t.Errorf("%q should not be recoverable", c)
		}
	}
}
