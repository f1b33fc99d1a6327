// Copyright 2026 The Stackhand Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"testing"
)

func TestNew_ValidSize(t *testing.T) {
	buffer, err := New(64)
	if err != nil {
		t.Fatalf("New(64) failed: %v", err)
	}
	defer buffer.Close()

	if buffer.Len() != 64 {
		t.Errorf("expected length 64, got %d", buffer.Len())
	}

	data := buffer.Bytes()
	if len(data) != 64 {
		t.Errorf("expected Bytes() length 64, got %d", len(data))
	}

	// Memory should be zero-initialized by mmap.
	for index, value := range data {
		if value != 0 {
			t.Fatalf("expected zero at index %d, got %d", index, value)
		}
	}
}

func TestNew_ZeroSize(t *testing.T) {
	_, err := New(0)
	if err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestNew_NegativeSize(t *testing.T) {
	_, err := New(-1)
	if err == nil {
		t.Fatal("expected error for negative size")
	}
}

func TestNewFromBytes(t *testing.T) {
	source := []byte("hunter2-passphrase")
	originalContent := string(source)

	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != originalContent {
		t.Errorf("expected %q, got %q", originalContent, got)
	}

	// The source slice must have been zeroed.
	for index, value := range source {
		if value != 0 {
			t.Fatalf("source not zeroed at index %d: %d", index, value)
		}
	}
}

func TestNewFromBytes_Empty(t *testing.T) {
	_, err := NewFromBytes(nil)
	if err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestBuffer_Close_Idempotent(t *testing.T) {
	buffer, err := NewFromBytes([]byte("token"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}

	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestBuffer_AccessAfterClose_Panics(t *testing.T) {
	buffer, err := NewFromBytes([]byte("token"))
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on Bytes() after Close")
		}
	}()
	buffer.Bytes()
}

func TestZero(t *testing.T) {
	data := []byte("sensitive")
	Zero(data)
	for index, value := range data {
		if value != 0 {
			t.Fatalf("byte %d not zeroed: %d", index, value)
		}
	}
}
