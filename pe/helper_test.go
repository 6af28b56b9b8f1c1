// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"errors"
	"testing"
)

func TestReadBytesBounds(t *testing.T) {
	file, _ := NewBytes([]byte{1, 2, 3, 4}, nil)

	if b, err := file.readBytes(1, 2); err != nil || len(b) != 2 || b[0] != 2 {
		t.Errorf("readBytes(1, 2) = (%v, %v)", b, err)
	}
	if _, err := file.readBytes(2, 4); !errors.Is(err, ErrTruncated) {
		t.Errorf("readBytes past EOF = %v, want ErrTruncated", err)
	}
	// Offset arithmetic that would wrap a uint32 must not panic.
	if _, err := file.readBytes(0xFFFFFFFF, 8); !errors.Is(err, ErrTruncated) {
		t.Errorf("readBytes(wrapping offset) = %v, want ErrTruncated", err)
	}
}

func TestCString(t *testing.T) {
	if got := cstring([]byte(".text\x00\x00\x00")); got != ".text" {
		t.Errorf("cstring = %q, want .text", got)
	}
	if got := cstring([]byte("12345678")); got != "12345678" {
		t.Errorf("cstring(unterminated) = %q, want the full field", got)
	}
}

func TestCStringAt(t *testing.T) {
	file, _ := NewBytes([]byte("abc\x00def"), nil)
	if got := file.cstringAt(0, 16); got != "abc" {
		t.Errorf("cstringAt(0) = %q, want abc", got)
	}
	if got := file.cstringAt(100, 16); got != "" {
		t.Errorf("cstringAt(out of bounds) = %q, want empty", got)
	}
}

func TestUTF16CString(t *testing.T) {
	b := append(utf16z("Key"), 0xAA, 0xBB)
	got, next := utf16CString(b, 0)
	if got != "Key" || next != 8 {
		t.Errorf("utf16CString = (%q, %d), want (Key, 8)", got, next)
	}
}

func TestAlign4(t *testing.T) {
	tests := map[int]int{0: 0, 1: 4, 4: 4, 5: 8, 7: 8}
	for in, want := range tests {
		if got := align4(in); got != want {
			t.Errorf("align4(%d) = %d, want %d", in, got, want)
		}
	}
}
