package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContent_Valid(t *testing.T) {
	if err := ValidateContent("hello there"); err != nil {
		t.Errorf("unexpected error for valid content: %v", err)
	}
}

func TestValidateContent_Empty(t *testing.T) {
	err := ValidateContent("")
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestValidateContent_TooManyBytes(t *testing.T) {
	if err := ValidateContent(strings.Repeat("x", MaxMessageBytes+1)); err == nil {
		t.Error("expected error for oversized payload")
	}
}

func TestValidateContent_TooManyChars(t *testing.T) {
	// Multi-byte runes: under the byte limit, over the character limit.
	if err := ValidateContent(strings.Repeat("é", MaxTextChars+1)); err == nil {
		t.Error("expected error for too many characters")
	}
}

func TestValidateContent_InvalidUTF8(t *testing.T) {
	if err := ValidateContent(string([]byte{0xff, 0xfe})); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestValidateContent_OpaquePayloadAccepted(t *testing.T) {
	// Content is opaque to the server; base64-looking ciphertext is fine.
	if err := ValidateContent("U2FsdGVkX1+abcdef=="); err != nil {
		t.Errorf("unexpected error for opaque payload: %v", err)
	}
}
