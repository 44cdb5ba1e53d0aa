package marshal

import (
	"encoding/binary"
)

// LengthSize is the size of every length and count prefix.
const LengthSize = 4

// MarshalBytes frames data as a byte buffer.
//
//	--------------------------------
//	| len (4 bytes, LE) | data ... |
//	--------------------------------
func MarshalBytes(data []byte) []byte {
	return AppendBytes(make([]byte, 0, LengthSize+len(data)), data)
}

// AppendBytes appends the byte buffer frame of data to dst.
func AppendBytes(dst, data []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(data))) //nolint:gosec // wasm32 buffers are below 4 GiB
	return append(dst, data...)
}

// MarshalText frames s as text. The declared length counts the trailing
// zero byte.
//
//	-----------------------------------------
//	| len+1 (4 bytes, LE) | string ... | 0 |
//	-----------------------------------------
func MarshalText(s string) []byte {
	return AppendText(make([]byte, 0, TextSize(s)), s)
}

// AppendText appends the text frame of s to dst.
func AppendText(dst []byte, s string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(s)+1)) //nolint:gosec // wasm32 buffers are below 4 GiB
	dst = append(dst, s...)
	return append(dst, 0)
}

// TextSize returns the framed size of s.
func TextSize(s string) int {
	return LengthSize + len(s) + 1
}

// MarshalTextList frames items as a text list.
//
//	------------------------------------------------------------
//	| count (4 bytes, LE) | text frame | text frame | ...
//	------------------------------------------------------------
func MarshalTextList(items []string) []byte {
	size := LengthSize
	for _, s := range items {
		size += TextSize(s)
	}
	return AppendTextList(make([]byte, 0, size), items)
}

// AppendTextList appends the text list frame of items to dst.
func AppendTextList(dst []byte, items []string) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(items))) //nolint:gosec // wasm32 lists are below 4 GiB
	for _, s := range items {
		dst = AppendText(dst, s)
	}
	return dst
}
