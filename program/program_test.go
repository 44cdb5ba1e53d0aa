package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easegress-io/easegress-go-sdk/internal/linear"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

type echo struct {
	status int
	params *Params
}

func (e *echo) Run() int32 {
	return int32(e.status)
}

func newEcho(p *Params) *echo {
	return &echo{status: p.GetIntDefault("status", 7), params: p}
}

func newTestController(t *testing.T) (*Controller[*echo], *marshal.Codec) {
	t.Helper()
	mem := linear.New()
	codec := marshal.NewCodec(mem, mem)
	c, err := New(Define(newEcho), WithCodec(codec))
	require.NoError(t, err)
	return c, codec
}

func placeParams(t *testing.T, codec *marshal.Codec, pairs ...string) uint32 {
	t.Helper()
	buf, err := codec.EncodeTextList(pairs)
	require.NoError(t, err)
	return buf.Offset
}

func TestRunBeforeInit_UsesDefault(t *testing.T) {
	c, _ := newTestController(t)

	assert.Equal(t, StateDefaulted, c.State())
	assert.Equal(t, int32(7), c.Run())
	assert.Equal(t, 0, c.Current().params.Len())
}

func TestInit_ReplacesInstance(t *testing.T) {
	c, codec := newTestController(t)

	c.Init(placeParams(t, codec, "status", "200"))
	assert.Equal(t, StateInitialized, c.State())
	assert.Equal(t, int32(200), c.Run())

	c.Init(placeParams(t, codec, "other", "x"))
	assert.Equal(t, StateInitialized, c.State())
	assert.Equal(t, int32(7), c.Run(), "second init must not see the first parameters")
	_, ok := c.Current().params.Get("status")
	assert.False(t, ok)
}

func TestInit_EmptyList(t *testing.T) {
	c, codec := newTestController(t)

	c.Init(placeParams(t, codec))
	assert.Equal(t, StateInitialized, c.State())
	assert.Equal(t, int32(7), c.Run())
}

func TestInit_DuplicateKeysLastWins(t *testing.T) {
	c, codec := newTestController(t)

	c.Init(placeParams(t, codec, "a", "1", "status", "3", "a", "2"))
	p := c.Current().params
	assert.Equal(t, []string{"a", "status"}, p.Keys())
	v, _ := p.Get("a")
	assert.Equal(t, "2", v)
}

func TestInit_OddCountFaults(t *testing.T) {
	c, codec := newTestController(t)
	off := placeParams(t, codec, "lonely")

	assert.PanicsWithError(t, "program: parameter list has an odd number of elements: 1", func() {
		c.Init(off)
	})
	assert.Equal(t, StateDefaulted, c.State())
}

func TestInit_DoesNotReleaseBuffer(t *testing.T) {
	mem := linear.New()
	codec := marshal.NewCodec(mem, mem)
	c, err := New(Define(newEcho), WithCodec(codec))
	require.NoError(t, err)

	c.Init(placeParams(t, codec, "k", "v"))
	assert.Equal(t, 1, mem.Live())
}

func TestRun_Repeatable(t *testing.T) {
	c, codec := newTestController(t)
	c.Init(placeParams(t, codec, "status", "5"))
	for range 3 {
		assert.Equal(t, int32(5), c.Run())
	}
}

func TestNew_NilRunReturnsZero(t *testing.T) {
	c, err := New(Definition[int]{Construct: func(*Params) int { return 1 }})
	require.NoError(t, err)
	assert.Equal(t, int32(0), c.Run())
	assert.Equal(t, 1, c.Current())
}

func TestNew_RejectsMissingConstruct(t *testing.T) {
	_, err := New(Definition[int]{Run: func(int) int32 { return 1 }})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid program definition")
}

func TestRegister(t *testing.T) {
	t.Cleanup(func() { registered = nil })

	assert.PanicsWithValue(t, ErrNotRegistered, func() { Run() })

	mem := linear.New()
	codec := marshal.NewCodec(mem, mem)
	c := MustRegister(Define(newEcho), WithCodec(codec))
	assert.Equal(t, int32(7), Run())

	Init(placeParams(t, codec, "status", "9"))
	assert.Equal(t, int32(9), Run())
	assert.Equal(t, StateInitialized, c.State())

	_, err := Register(Define(newEcho))
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	assert.Panics(t, func() { MustRegister(Define(newEcho)) })
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "defaulted", StateDefaulted.String())
	assert.Equal(t, "initialized", StateInitialized.String())
	assert.Equal(t, "State(9)", State(9).String())
}
