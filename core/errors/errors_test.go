package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("verse", "John.3.99")
	if got := err.Error(); got != "verse not found: John.3.99" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}

	noID := NewNotFound("translation", "")
	if got := noID.Error(); got != "translation not found" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAdapterError(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewAdapter("scrape", "kjv", "John.3.16", inner)
	if !errors.Is(err, inner) {
		t.Error("AdapterError should unwrap to the underlying error")
	}
	want := "source scrape failed for John.3.16 (kjv): connection refused"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}

	bare := &AdapterError{Source: "keyed-api", Err: inner}
	if got := bare.Error(); got != "source keyed-api failed: connection refused" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAdapterError_MissingCredentials(t *testing.T) {
	err := NewAdapter("keyed-api", "esv", "Gen.1.1", ErrMissingCredentials)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Error("should unwrap to ErrMissingCredentials")
	}
}

func TestCacheWriteError(t *testing.T) {
	inner := errors.New("disk full")
	err := NewCacheWrite("kjv", "Ps.23.1", inner)
	if !errors.Is(err, inner) {
		t.Error("CacheWriteError should unwrap to the underlying error")
	}
	if got := err.Error(); got != "failed to persist Ps.23.1 (kjv): disk full" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidation("chapter", "must be >= 1")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestParseError(t *testing.T) {
	err := NewParse("reference", "Jon 3:16:2", "too many parts")
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ParseError should unwrap to ErrInvalidInput")
	}
	if got := err.Error(); got != `failed to parse reference "Jon 3:16:2": too many parts` {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	inner := errors.New("boom")
	wrapped := Wrap(inner, "loading cache")
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped error should match inner")
	}
	if wrapped.Error() != "loading cache: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestWrapf(t *testing.T) {
	if Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should be nil")
	}
	inner := ErrNotFound
	wrapped := Wrapf(inner, "translation %q", "web")
	if !Is(wrapped, ErrNotFound) {
		t.Error("Is should see through Wrapf")
	}
}

func TestAs(t *testing.T) {
	var target *AdapterError
	err := fmt.Errorf("outer: %w", NewAdapter("web-api", "kjv", "Gen.1.1", errors.New("500")))
	if !As(err, &target) {
		t.Fatal("As should find AdapterError")
	}
	if target.Source != "web-api" {
		t.Errorf("Source = %q", target.Source)
	}
}
