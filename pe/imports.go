// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"encoding/binary"
	"fmt"
)

const (
	importDescriptorSize = 20

	// A descriptor table longer than this is a corruption loop, not a
	// real binary.
	maxImportDescriptors = 4096
)

// parseImports walks the IMAGE_IMPORT_DESCRIPTOR table and records one
// DLL name per descriptor, in table order. The thunk arrays naming the
// individual imported functions are deliberately not parsed: the
// dependency record wants the library, not its entry points.
func (pe *File) parseImports(rva, size uint32) error {
	for i := 0; ; i++ {
		if i >= maxImportDescriptors {
			return fmt.Errorf("%w: import descriptor table does not terminate", ErrMalformed)
		}

		offset, err := pe.offsetFromRVA(rva + uint32(i)*importDescriptorSize)
		if err != nil {
			return err
		}
		raw, err := pe.readBytes(offset, importDescriptorSize)
		if err != nil {
			return fmt.Errorf("%w: import descriptor %d", ErrTruncated, i)
		}
		if allZero(raw) {
			return nil // terminating descriptor
		}

		nameRVA := binary.LittleEndian.Uint32(raw[12:16])
		if nameRVA == 0 {
			continue
		}
		nameOffset, err := pe.offsetFromRVA(nameRVA)
		if err != nil {
			continue // one bad descriptor does not spoil the table
		}
		if name := pe.cstringAt(nameOffset, 256); name != "" {
			pe.ImportedDLLs = append(pe.ImportedDLLs, name)
		}
	}
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
