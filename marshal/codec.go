package marshal

import (
	"errors"
	"fmt"

	"github.com/easegress-io/easegress-go-sdk/cookie"
)

// Codec places frames into linear memory and decodes frames out of it.
//
// Encode methods allocate a buffer sized exactly to the frame and hand its
// ownership to the caller. Decode methods return owned copies, never release
// the source region, and panic with a *DecodeError when the offset does not
// hold a valid frame.
type Codec struct {
	mem   Memory
	alloc Allocator
}

// NewCodec returns a codec over mem that allocates with alloc.
func NewCodec(mem Memory, alloc Allocator) *Codec {
	return &Codec{mem: mem, alloc: alloc}
}

// Memory returns the memory the codec reads from.
func (c *Codec) Memory() Memory {
	return c.mem
}

// Place allocates a buffer for frame and copies it in.
func (c *Codec) Place(frame []byte) (Buffer, error) {
	size := uint32(len(frame)) //nolint:gosec // frames are below 4 GiB on wasm32
	offset, err := c.alloc.Allocate(size)
	if err != nil {
		return Buffer{}, fmt.Errorf("%w: %d bytes: %w", ErrAllocation, size, err)
	}
	if !c.mem.Write(offset, frame) {
		c.alloc.Release(offset)
		return Buffer{}, fmt.Errorf("%w: buffer at %d not writable", ErrAllocation, offset)
	}
	return Buffer{Offset: offset, Length: size}, nil
}

// Release returns b to the allocator.
func (c *Codec) Release(b Buffer) {
	c.ReleaseOffset(b.Offset)
}

// ReleaseOffset returns the buffer at offset to the allocator.
// Offset 0 is ignored.
func (c *Codec) ReleaseOffset(offset uint32) {
	if offset != 0 {
		c.alloc.Release(offset)
	}
}

// EncodeBytes places data as a bytes frame. The caller owns the buffer.
func (c *Codec) EncodeBytes(data []byte) (Buffer, error) {
	return c.Place(MarshalBytes(data))
}

// EncodeText places s as a text frame. The caller owns the buffer.
func (c *Codec) EncodeText(s string) (Buffer, error) {
	return c.Place(MarshalText(s))
}

// EncodeTextList places items as a text list frame. The caller owns the
// buffer.
func (c *Codec) EncodeTextList(items []string) (Buffer, error) {
	return c.Place(MarshalTextList(items))
}

// EncodeHeader places h as a single text frame.
func (c *Codec) EncodeHeader(h Header) (Buffer, error) {
	return c.EncodeText(h.Marshal())
}

// EncodeCookie places the Set-Cookie line of ck as a text frame.
func (c *Codec) EncodeCookie(ck *cookie.Cookie) (Buffer, error) {
	line, err := ck.Marshal()
	if err != nil {
		return Buffer{}, err
	}
	return c.EncodeText(line)
}

// DecodeBytes returns a copy of the bytes frame at offset. It panics with
// a *DecodeError when offset does not hold a valid bytes frame.
func (c *Codec) DecodeBytes(offset uint32) []byte {
	v, err := NewReader(c.mem, offset).Bytes()
	if err != nil {
		panic(&DecodeError{Kind: "bytes", Offset: offset, Err: err})
	}
	return v
}

// DecodeText returns the text frame at offset. It panics with a
// *DecodeError when offset does not hold a valid text frame.
func (c *Codec) DecodeText(offset uint32) string {
	v, err := NewReader(c.mem, offset).Text()
	if err != nil {
		panic(&DecodeError{Kind: "text", Offset: offset, Err: err})
	}
	return v
}

// DecodeTextList returns the text list frame at offset. It panics with a
// *DecodeError when offset does not hold a valid text list frame.
func (c *Codec) DecodeTextList(offset uint32) []string {
	v, err := NewReader(c.mem, offset).TextList()
	if err != nil {
		panic(&DecodeError{Kind: "text list", Offset: offset, Err: err})
	}
	return v
}

// DecodeHeader parses the header frame at offset. It panics with a
// *DecodeError when offset does not hold a valid text frame.
func (c *Codec) DecodeHeader(offset uint32) Header {
	return ParseHeader(c.DecodeText(offset))
}

// DecodeCookie decodes a Set-Cookie line. It returns nil when the line holds
// no cookie and panics when the line has a malformed Max-Age.
func (c *Codec) DecodeCookie(offset uint32) *cookie.Cookie {
	ck, err := cookie.Parse(c.DecodeText(offset))
	if err != nil {
		panic(&DecodeError{Kind: "cookie", Offset: offset, Err: err})
	}
	return ck
}

// Recover converts a decode panic into an error. Use it deferred:
//
//	defer marshal.Recover(&err)
//
// Panics that are not decode faults are re-raised.
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok {
		var de *DecodeError
		if errors.As(err, &de) {
			*errp = de
			return
		}
	}
	panic(r)
}
