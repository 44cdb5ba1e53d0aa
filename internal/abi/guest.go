package abi

import (
	"github.com/easegress-io/easegress-go-sdk/cookie"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// The helpers below serve the typed wrappers around host calls. Arguments
// are placed for the duration of a call and released afterwards; results
// placed by the host are decoded and then released. Failing to place an
// argument faults the instance, as does a malformed result.

// Place puts a frame into linear memory, panicking if it cannot.
func Place(frame []byte) marshal.Buffer {
	buf, err := codec.Place(frame)
	if err != nil {
		panic(err)
	}
	return buf
}

// WithText places s as a text frame for the duration of fn.
func WithText[R any](s string, fn func(uint32) R) R {
	buf := Place(marshal.MarshalText(s))
	defer codec.Release(buf)
	return fn(buf.Offset)
}

// WithBytes places data as a byte frame for the duration of fn.
func WithBytes[R any](data []byte, fn func(uint32) R) R {
	buf := Place(marshal.MarshalBytes(data))
	defer codec.Release(buf)
	return fn(buf.Offset)
}

// WithTexts places two text frames for the duration of fn.
func WithTexts[R any](a, b string, fn func(uint32, uint32) R) R {
	bufA := Place(marshal.MarshalText(a))
	defer codec.Release(bufA)
	bufB := Place(marshal.MarshalText(b))
	defer codec.Release(bufB)
	return fn(bufA.Offset, bufB.Offset)
}

// WithTextAndBytes places a text and a byte frame for the duration of fn.
func WithTextAndBytes[R any](s string, data []byte, fn func(uint32, uint32) R) R {
	bufS := Place(marshal.MarshalText(s))
	defer codec.Release(bufS)
	bufD := Place(marshal.MarshalBytes(data))
	defer codec.Release(bufD)
	return fn(bufS.Offset, bufD.Offset)
}

// WithHeader places h as a header frame for the duration of fn.
func WithHeader[R any](h marshal.Header, fn func(uint32) R) R {
	return WithText(h.Marshal(), fn)
}

// WithCookie places c as a cookie frame for the duration of fn. An unnamed
// cookie faults the instance.
func WithCookie[R any](c *cookie.Cookie, fn func(uint32) R) R {
	line, err := c.Marshal()
	if err != nil {
		panic(err)
	}
	return WithText(line, fn)
}

// TakeText decodes the text frame at offset and releases it.
func TakeText(offset uint32) string {
	defer codec.ReleaseOffset(offset)
	return codec.DecodeText(offset)
}

// TakeBytes decodes the byte frame at offset and releases it.
func TakeBytes(offset uint32) []byte {
	defer codec.ReleaseOffset(offset)
	return codec.DecodeBytes(offset)
}

// TakeTextList decodes the text list frame at offset and releases it.
func TakeTextList(offset uint32) []string {
	defer codec.ReleaseOffset(offset)
	return codec.DecodeTextList(offset)
}

// TakeHeader decodes the header frame at offset and releases it.
func TakeHeader(offset uint32) marshal.Header {
	defer codec.ReleaseOffset(offset)
	return codec.DecodeHeader(offset)
}

// TakeCookie decodes the cookie frame at offset and releases it. It
// returns nil when the host sent no cookie.
func TakeCookie(offset uint32) *cookie.Cookie {
	defer codec.ReleaseOffset(offset)
	return codec.DecodeCookie(offset)
}

// Void adapts a host call without a result for the With helpers.
func Void(fn func(uint32)) func(uint32) struct{} {
	return func(off uint32) struct{} {
		fn(off)
		return struct{}{}
	}
}

// Void2 is Void for two-argument host calls.
func Void2(fn func(uint32, uint32)) func(uint32, uint32) struct{} {
	return func(a, b uint32) struct{} {
		fn(a, b)
		return struct{}{}
	}
}
