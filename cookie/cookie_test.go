package cookie

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name   string
		cookie Cookie
		want   string
	}{
		{
			name:   "minimal",
			cookie: Cookie{Name: "a", Value: "b"},
			want:   "a=b",
		},
		{
			name:   "path secure lax",
			cookie: Cookie{Name: "id", Value: "42", Path: "/", Secure: true, SameSite: SameSiteLaxMode},
			want:   "id=42; Path=/; Secure; SameSite=Lax",
		},
		{
			name: "every attribute",
			cookie: Cookie{
				Name: "s", Value: "v", Path: "/p", Domain: "example.com",
				RawExpires: "Wed, 21 Oct 2015 07:28:00 GMT", MaxAge: 3600,
				Secure: true, HttpOnly: true, SameSite: SameSiteStrictMode,
			},
			want: "s=v; Path=/p; Domain=example.com; Expires=Wed, 21 Oct 2015 07:28:00 GMT; Max-Age=3600; Secure; HttpOnly; SameSite=Strict",
		},
		{
			name:   "max-age uses its own value",
			cookie: Cookie{Name: "a", Value: "b", RawExpires: "later", MaxAge: 10},
			want:   "a=b; Expires=later; Max-Age=10",
		},
		{
			name:   "non-positive max-age omitted",
			cookie: Cookie{Name: "a", Value: "b", MaxAge: -1},
			want:   "a=b",
		},
		{
			name:   "none mode",
			cookie: Cookie{Name: "a", Value: "", SameSite: SameSiteNoneMode},
			want:   "a=; SameSite=None",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cookie.Marshal()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarshal_EmptyName(t *testing.T) {
	c := &Cookie{Value: "v"}
	_, err := c.Marshal()
	require.ErrorIs(t, err, ErrEmptyName)
	assert.Empty(t, c.String())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want *Cookie
	}{
		{"empty", "", nil},
		{"no value", "novalue", nil},
		{"two equals", "a=b=c", nil},
		{"empty name", "=v", nil},
		{"minimal", "a=b", &Cookie{Name: "a", Value: "b"}},
		{
			name: "case insensitive attributes",
			line: "id=42; PATH=/x; domain=d; EXPIRES=soon; max-age=5; SECURE; httponly; samesite=strict",
			want: &Cookie{
				Name: "id", Value: "42", Path: "/x", Domain: "d", RawExpires: "soon",
				MaxAge: 5, Secure: true, HttpOnly: true, SameSite: SameSiteStrictMode,
			},
		},
		{
			name: "unknown attributes ignored",
			line: "a=b; Priority=High; Partitioned",
			want: &Cookie{Name: "a", Value: "b"},
		},
		{
			name: "bare max-age skipped",
			line: "a=b; Max-Age",
			want: &Cookie{Name: "a", Value: "b"},
		},
		{
			name: "max-age with two equals skipped",
			line: "a=b; Max-Age=1=2",
			want: &Cookie{Name: "a", Value: "b"},
		},
		{
			name: "path with two equals skipped",
			line: "a=b; Path=x=y",
			want: &Cookie{Name: "a", Value: "b"},
		},
		{
			name: "leading space trimmed",
			line: " a=b",
			want: &Cookie{Name: "a", Value: "b"},
		},
		{
			name: "flags with values",
			line: "a=b; Secure=1; HttpOnly=yes",
			want: &Cookie{Name: "a", Value: "b", Secure: true, HttpOnly: true},
		},
		{
			name: "unknown samesite value",
			line: "a=b; SameSite=sometimes",
			want: &Cookie{Name: "a", Value: "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_BadMaxAge(t *testing.T) {
	c, err := Parse("a=b; Max-Age=notanumber")
	assert.Nil(t, c)

	var mae *MaxAgeError
	require.ErrorAs(t, err, &mae)
	assert.Equal(t, "notanumber", mae.Value)
}

func TestRoundTrip(t *testing.T) {
	in := &Cookie{Name: "id", Value: "42", Path: "/", Secure: true, SameSite: SameSiteLaxMode}
	line, err := in.Marshal()
	require.NoError(t, err)

	out, err := Parse(line)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestHTTPConversion(t *testing.T) {
	modes := map[SameSite]http.SameSite{
		SameSiteDefaultMode: http.SameSiteDefaultMode,
		SameSiteLaxMode:     http.SameSiteLaxMode,
		SameSiteStrictMode:  http.SameSiteStrictMode,
		SameSiteNoneMode:    http.SameSiteNoneMode,
	}
	for ours, theirs := range modes {
		c := &Cookie{Name: "n", Value: "v", Path: "/", MaxAge: 60, HttpOnly: true, SameSite: ours}
		hc := c.ToHTTP()
		assert.Equal(t, theirs, hc.SameSite)
		assert.Equal(t, 60, hc.MaxAge)
		assert.Equal(t, c, FromHTTP(hc))
	}
}

func TestParse_AcceptsNetHTTPOutput(t *testing.T) {
	hc := &http.Cookie{Name: "session", Value: "abc", Path: "/", MaxAge: 120, HttpOnly: true, SameSite: http.SameSiteLaxMode}

	got, err := Parse(hc.String())
	require.NoError(t, err)
	assert.Equal(t, &Cookie{Name: "session", Value: "abc", Path: "/", MaxAge: 120, HttpOnly: true, SameSite: SameSiteLaxMode}, got)
}
