// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package pe

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// readBytes returns length bytes at offset, bounds-checked against the
// mapped image. The end is computed in 64 bits so a wrapping offset
// reads as out of bounds instead of slicing somewhere unrelated.
func (pe *File) readBytes(offset, length uint32) ([]byte, error) {
	end := uint64(offset) + uint64(length)
	if end > uint64(pe.size) {
		return nil, fmt.Errorf("%w: %d bytes at offset 0x%x", ErrTruncated, length, offset)
	}
	return pe.data[offset:end], nil
}

func (pe *File) readUint16(offset uint32) (uint16, error) {
	b, err := pe.readBytes(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (pe *File) readUint32(offset uint32) (uint32, error) {
	b, err := pe.readBytes(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// unpack decodes a little-endian structure at offset.
func (pe *File) unpack(v interface{}, offset, size uint32) error {
	b, err := pe.readBytes(offset, size)
	if err != nil {
		return err
	}
	return binary.Read(bytes.NewReader(b), binary.LittleEndian, v)
}

// cstring trims a fixed-width, NUL-padded field down to its string.
func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// cstringAt reads a NUL-terminated ASCII string at offset, up to max
// bytes. Out-of-bounds offsets read as empty rather than erroring: name
// lookups are best-effort evidence.
func (pe *File) cstringAt(offset, max uint32) string {
	if offset >= pe.size {
		return ""
	}
	end := offset + max
	if end > pe.size || end < offset {
		end = pe.size
	}
	return cstring(pe.data[offset:end])
}

// utf16CString decodes a NUL-terminated UTF-16LE string starting at
// offset and returns it with the index just past its terminator.
func utf16CString(b []byte, offset int) (string, int) {
	end := offset
	for end+1 < len(b) {
		if b[end] == 0 && b[end+1] == 0 {
			break
		}
		end += 2
	}
	return decodeUTF16(b[offset:end]), end + 2
}

// decodeUTF16 converts UTF-16LE bytes to a string, dropping any stray
// trailing NUL.
func decodeUTF16(b []byte) string {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	decoded, err := decoder.Bytes(b)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(decoded), "\x00")
}

func align4(n int) int { return (n + 3) &^ 3 }
