// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"testing"
)

func TestCOFFSymbolsParsed(t *testing.T) {
	le := binary.LittleEndian

	// Three records: a short-named external, a long-named static with one
	// auxiliary record, and the auxiliary record itself (junk that must be
	// skipped, never surfaced as a symbol).
	records := make([]byte, 3*coffSymbolSize)
	copy(records[0:8], "foo")
	le.PutUint32(records[8:], 0x10)
	le.PutUint16(records[12:], 1) // defined in section 1
	records[16] = symClassExternal

	second := records[coffSymbolSize:]
	le.PutUint32(second[4:], 4) // long name at string-table offset 4
	le.PutUint32(second[8:], 0x20)
	// section number 0: undefined
	second[16] = 3 // IMAGE_SYM_CLASS_STATIC
	second[17] = 1 // one aux record follows

	aux := records[2*coffSymbolSize:]
	for i := range aux {
		aux[i] = 0xFF
	}

	longName := "very_long_symbol_name"
	img := newTestImage()
	img.symbols = append(records, stringTableBlob(longName)...)
	img.numSymbols = 3
	file := parseTestImage(t, img)

	if len(file.Symbols) != 2 {
		t.Fatalf("Symbols = %+v, want exactly the two primary records", file.Symbols)
	}
	first := file.Symbols[0]
	if first.Name != "foo" || first.Address != 0x10 || first.Binding != "global" || !first.Defined {
		t.Errorf("Symbols[0] = %+v, want defined global foo at 0x10", first)
	}
	got := file.Symbols[1]
	if got.Name != longName || got.Address != 0x20 || got.Binding != "local" || got.Defined {
		t.Errorf("Symbols[1] = %+v, want undefined local %q at 0x20", got, longName)
	}
}

func TestNoSymbolTable(t *testing.T) {
	file := parseTestImage(t, newTestImage())
	if len(file.Symbols) != 0 {
		t.Errorf("Symbols = %+v, want none for an image without a COFF table", file.Symbols)
	}
}

func TestBindingOf(t *testing.T) {
	if bindingOf(symClassExternal) != "global" {
		t.Error(`bindingOf(external) != "global"`)
	}
	if bindingOf(3) != "local" {
		t.Error(`bindingOf(static) != "local"`)
	}
}
