package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"already exists", &PackageError{Op: "resolve", Name: "toolA", Version: "1.0.0", Err: ErrAlreadyExists}, KindSkip},
		{"not found", fmt.Errorf("loading: %w", ErrNotFound), KindItem},
		{"unsupported", &PackageError{Op: "resolve", Name: "x", Err: ErrUnsupportedType}, KindItem},
		{"missing keys", ErrMissingKeys, KindItem},
		{"parse", fmt.Errorf("manifest: %w", ErrParse), KindFatal},
		{"argument", ErrArgument, KindFatal},
		{"other", errors.New("disk full"), KindItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPackageErrorMessage(t *testing.T) {
	err := &PackageError{Op: "install", Name: "toolA", Version: "1.0.0", Err: ErrNotFound}
	if got := err.Error(); got != "install toolA-1.0.0: not found" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("PackageError should unwrap to ErrNotFound")
	}

	noVersion := &PackageError{Op: "resolve", Name: "toolB", Err: ErrUnsupportedType}
	if got := noVersion.Error(); got != "resolve toolB: unsupported descriptor type" {
		t.Errorf("Error() = %q", got)
	}
}
