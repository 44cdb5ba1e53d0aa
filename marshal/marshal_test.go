package marshal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easegress-io/easegress-go-sdk/cookie"
	"github.com/easegress-io/easegress-go-sdk/internal/linear"
)

func newCodec(t *testing.T) (*Codec, *linear.Memory) {
	t.Helper()
	mem := linear.New()
	return NewCodec(mem, mem), mem
}

func TestMarshalText_Layout(t *testing.T) {
	assert.Equal(t, []byte{3, 0, 0, 0, 'h', 'i', 0}, MarshalText("hi"))
	assert.Equal(t, []byte{1, 0, 0, 0, 0}, MarshalText(""))
}

func TestMarshalBytes_Layout(t *testing.T) {
	assert.Equal(t, []byte{2, 0, 0, 0, 0xca, 0xfe}, MarshalBytes([]byte{0xca, 0xfe}))
	assert.Equal(t, []byte{0, 0, 0, 0}, MarshalBytes(nil))
}

func TestMarshalTextList_Layout(t *testing.T) {
	got := MarshalTextList([]string{"a", ""})
	assert.Equal(t, []byte{
		2, 0, 0, 0,
		2, 0, 0, 0, 'a', 0,
		1, 0, 0, 0, 0,
	}, got)
}

func TestCodec_BytesRoundTrip(t *testing.T) {
	c, _ := newCodec(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"binary", []byte{0, 1, 2, 0xff, 0}},
		{"large", make([]byte, linear.PageSize+17)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := c.EncodeBytes(tt.data)
			require.NoError(t, err)
			defer c.Release(buf)

			assert.Equal(t, uint32(LengthSize+len(tt.data)), buf.Length)
			assert.Equal(t, tt.data, c.DecodeBytes(buf.Offset))
		})
	}
}

func TestCodec_TextRoundTrip(t *testing.T) {
	c, _ := newCodec(t)

	for _, s := range []string{"", "hello", "héllo wörld", "with\x00nul"} {
		buf, err := c.EncodeText(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.DecodeText(buf.Offset))
		c.Release(buf)
	}
}

func TestCodec_TextListRoundTrip(t *testing.T) {
	c, _ := newCodec(t)

	tests := [][]string{
		{},
		{""},
		{"a", "b", "c"},
		{"key", "value", "", "x"},
	}
	for _, items := range tests {
		buf, err := c.EncodeTextList(items)
		require.NoError(t, err)
		assert.Equal(t, items, c.DecodeTextList(buf.Offset))
		c.Release(buf)
	}
}

func TestCodec_EncodeDoesNotMutateInput(t *testing.T) {
	c, _ := newCodec(t)
	data := []byte("payload")
	buf, err := c.EncodeBytes(data)
	require.NoError(t, err)

	decoded := c.DecodeBytes(buf.Offset)
	decoded[0] = 'X'
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "payload", string(c.DecodeBytes(buf.Offset)))
}

func TestCodec_ReleaseReturnsMemory(t *testing.T) {
	c, mem := newCodec(t)
	buf, err := c.EncodeText("x")
	require.NoError(t, err)
	assert.Equal(t, 1, mem.Live())

	c.DecodeText(buf.Offset)
	assert.Equal(t, 1, mem.Live(), "decode must not release")

	c.Release(buf)
	assert.Equal(t, 0, mem.Live())
}

func TestDecodeText_Lossy(t *testing.T) {
	frame := MarshalText("a\xffb")
	got, err := NewReader(Bytes(frame), 0).Text()
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFDb", got)
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame []byte
		read  func(*Reader) error
		want  error
	}{
		{
			name:  "bytes length past end",
			frame: []byte{9, 0, 0, 0, 1},
			read:  func(r *Reader) error { _, err := r.Bytes(); return err },
			want:  ErrOutOfBounds,
		},
		{
			name:  "truncated prefix",
			frame: []byte{1, 0},
			read:  func(r *Reader) error { _, err := r.Text(); return err },
			want:  ErrOutOfBounds,
		},
		{
			name:  "zero text length",
			frame: []byte{0, 0, 0, 0},
			read:  func(r *Reader) error { _, err := r.Text(); return err },
			want:  ErrInvalidFrame,
		},
		{
			name:  "list count larger than data",
			frame: []byte{2, 0, 0, 0, 1, 0, 0, 0, 0},
			read:  func(r *Reader) error { _, err := r.TextList(); return err },
			want:  ErrOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.read(NewReader(Bytes(tt.frame), 0))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCodec_DecodePanicsOnBadOffset(t *testing.T) {
	c, mem := newCodec(t)
	offset := mem.Size() - 2

	tests := []struct {
		kind   string
		decode func()
	}{
		{"bytes", func() { c.DecodeBytes(offset) }},
		{"text", func() { c.DecodeText(offset) }},
		{"text list", func() { c.DecodeTextList(offset) }},
		{"text", func() { c.DecodeHeader(offset) }},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				de, ok := r.(*DecodeError)
				require.True(t, ok)
				assert.Equal(t, tt.kind, de.Kind)
				assert.ErrorIs(t, de, ErrOutOfBounds)
			}()
			tt.decode()
		})
	}
}

func TestRecover(t *testing.T) {
	c, mem := newCodec(t)

	decode := func() (s string, err error) {
		defer Recover(&err)
		return c.DecodeText(mem.Size()), nil
	}
	_, err := decode()
	var de *DecodeError
	require.ErrorAs(t, err, &de)

	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer Recover(&err)
		panic("boom")
	})
}

func TestCodec_PlaceAllocationFailure(t *testing.T) {
	mem := linear.New(linear.WithMaxPages(1))
	c := NewCodec(mem, mem)
	_, err := c.EncodeBytes(make([]byte, linear.PageSize))
	require.ErrorIs(t, err, ErrAllocation)
	assert.ErrorIs(t, err, linear.ErrOutOfMemory)
}

func TestHeader_RoundTrip(t *testing.T) {
	c, _ := newCodec(t)
	h := Header{"X-A": {"1", "2"}, "X-B": {"3"}}

	buf, err := c.EncodeHeader(h)
	require.NoError(t, err)
	got := c.DecodeHeader(buf.Offset)

	assert.Equal(t, []string{"1", "2"}, got.Values("X-A"))
	assert.Equal(t, []string{"3"}, got.Values("X-B"))
	assert.Len(t, got, 2)
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Header
	}{
		{"empty", "", Header{}},
		{"malformed line skipped", "broken\r\nX-Ok:1\r\n", Header{"X-Ok": {"1"}}},
		{"split once", "Host:example.com:8080\r\n", Header{"Host": {"example.com:8080"}}},
		{"no trailing crlf", "A:1\r\nA:2", Header{"A": {"1", "2"}}},
		{"not trimmed", "A: 1\r\n", Header{"A": {" 1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHeader(tt.in))
		})
	}
}

func TestHeader_Accessors(t *testing.T) {
	h := Header{}
	h.Add("A", "1")
	h.Add("A", "2")
	assert.Equal(t, "1", h.Get("A"))
	assert.Empty(t, h.Get("missing"))

	h.Set("A", "3")
	assert.Equal(t, []string{"3"}, h.Values("A"))

	h.Del("A")
	assert.Empty(t, h)
}

func TestCodec_CookieRoundTrip(t *testing.T) {
	c, _ := newCodec(t)
	in := &cookie.Cookie{Name: "id", Value: "42", Path: "/", Secure: true, SameSite: cookie.SameSiteLaxMode}

	buf, err := c.EncodeCookie(in)
	require.NoError(t, err)
	assert.Equal(t, "id=42; Path=/; Secure; SameSite=Lax", c.DecodeText(buf.Offset))
	assert.Equal(t, in, c.DecodeCookie(buf.Offset))
}

func TestCodec_CookieAbsentAndFatal(t *testing.T) {
	c, _ := newCodec(t)

	for _, line := range []string{"", "novalue"} {
		buf, err := c.EncodeText(line)
		require.NoError(t, err)
		assert.Nil(t, c.DecodeCookie(buf.Offset))
	}

	buf, err := c.EncodeText("a=b; Max-Age=notanumber")
	require.NoError(t, err)
	assert.Panics(t, func() { c.DecodeCookie(buf.Offset) })
}

func TestCodec_EncodeCookieEmptyName(t *testing.T) {
	c, mem := newCodec(t)
	_, err := c.EncodeCookie(&cookie.Cookie{Value: "v"})
	require.ErrorIs(t, err, cookie.ErrEmptyName)
	assert.Equal(t, 0, mem.Live())
}
