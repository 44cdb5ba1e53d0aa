// Package cookie models an HTTP cookie as exchanged with the Easegress host
// and converts it to and from its Set-Cookie line.
package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// SameSite is the SameSite attribute of a cookie.
type SameSite int

const (
	SameSiteDefaultMode SameSite = iota
	SameSiteLaxMode
	SameSiteStrictMode
	SameSiteNoneMode
)

// String returns the attribute value as it appears in a Set-Cookie line.
// The default mode has no textual form.
func (s SameSite) String() string {
	switch s {
	case SameSiteLaxMode:
		return "Lax"
	case SameSiteStrictMode:
		return "Strict"
	case SameSiteNoneMode:
		return "None"
	default:
		return ""
	}
}

// ErrEmptyName is returned when marshaling a cookie without a name.
var ErrEmptyName = errors.New("cookie: empty name")

// MaxAgeError is returned by Parse when a Max-Age attribute is not an
// integer.
type MaxAgeError struct {
	Err   error
	Value string
}

func (e *MaxAgeError) Error() string {
	return fmt.Sprintf("cookie: invalid Max-Age %q: %v", e.Value, e.Err)
}

func (e *MaxAgeError) Unwrap() error {
	return e.Err
}

// Cookie is an HTTP cookie.
type Cookie struct {
	Name       string
	Value      string
	Path       string
	Domain     string
	RawExpires string
	MaxAge     int32
	Secure     bool
	HttpOnly   bool //nolint:revive // matches net/http
	SameSite   SameSite
}

// Marshal renders c as a Set-Cookie line. Attributes are emitted in a fixed
// order and only when set: Path, Domain, Expires, Max-Age, Secure,
// HttpOnly, SameSite.
func (c *Cookie) Marshal() (string, error) {
	if c.Name == "" {
		return "", ErrEmptyName
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	attr := func(key, value string) {
		b.WriteString("; ")
		b.WriteString(key)
		if value != "" {
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
	if c.Path != "" {
		attr("Path", c.Path)
	}
	if c.Domain != "" {
		attr("Domain", c.Domain)
	}
	if c.RawExpires != "" {
		attr("Expires", c.RawExpires)
	}
	if c.MaxAge > 0 {
		attr("Max-Age", strconv.FormatInt(int64(c.MaxAge), 10))
	}
	if c.Secure {
		attr("Secure", "")
	}
	if c.HttpOnly {
		attr("HttpOnly", "")
	}
	if s := c.SameSite.String(); s != "" {
		attr("SameSite", s)
	}
	return b.String(), nil
}

// String is like Marshal but renders an unnamed cookie as "".
func (c *Cookie) String() string {
	s, err := c.Marshal()
	if err != nil {
		return ""
	}
	return s
}

// Parse parses a Set-Cookie line.
//
// It returns (nil, nil) when the line holds no cookie: the line is empty,
// its first segment is not a single name=value pair, or the name is empty.
// Attribute keys are matched case-insensitively. Secure and HttpOnly are
// flags; every other attribute must be a single key=value pair and
// segments of any other shape are ignored, as are unknown keys. A Max-Age
// that is not an integer is an error.
func Parse(line string) (*Cookie, error) {
	if line == "" {
		return nil, nil
	}
	segments := strings.Split(line, ";")

	kv := strings.Split(strings.TrimSpace(segments[0]), "=")
	if len(kv) != 2 || kv[0] == "" {
		return nil, nil
	}
	c := &Cookie{Name: kv[0], Value: kv[1]}

	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		switch strings.ToLower(seg) {
		case "secure":
			c.Secure = true
			continue
		case "httponly":
			c.HttpOnly = true
			continue
		}

		kv := strings.Split(seg, "=")
		if len(kv) != 2 {
			continue
		}
		key, value := kv[0], kv[1]
		switch strings.ToLower(key) {
		case "path":
			c.Path = value
		case "domain":
			c.Domain = value
		case "expires":
			c.RawExpires = value
		case "max-age":
			n, err := strconv.ParseInt(value, 10, 32)
			if err != nil {
				return nil, &MaxAgeError{Value: value, Err: err}
			}
			c.MaxAge = int32(n)
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		case "samesite":
			c.SameSite = parseSameSite(value)
		}
	}
	return c, nil
}

func parseSameSite(s string) SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return SameSiteLaxMode
	case "strict":
		return SameSiteStrictMode
	case "none":
		return SameSiteNoneMode
	default:
		return SameSiteDefaultMode
	}
}

// FromHTTP converts a net/http cookie.
func FromHTTP(hc *http.Cookie) *Cookie {
	c := &Cookie{
		Name:       hc.Name,
		Value:      hc.Value,
		Path:       hc.Path,
		Domain:     hc.Domain,
		RawExpires: hc.RawExpires,
		MaxAge:     int32(hc.MaxAge), //nolint:gosec // Max-Age beyond int32 is not meaningful
		Secure:     hc.Secure,
		HttpOnly:   hc.HttpOnly,
	}
	switch hc.SameSite {
	case http.SameSiteLaxMode:
		c.SameSite = SameSiteLaxMode
	case http.SameSiteStrictMode:
		c.SameSite = SameSiteStrictMode
	case http.SameSiteNoneMode:
		c.SameSite = SameSiteNoneMode
	default:
		c.SameSite = SameSiteDefaultMode
	}
	return c
}

// ToHTTP converts c to a net/http cookie.
func (c *Cookie) ToHTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:       c.Name,
		Value:      c.Value,
		Path:       c.Path,
		Domain:     c.Domain,
		RawExpires: c.RawExpires,
		MaxAge:     int(c.MaxAge),
		Secure:     c.Secure,
		HttpOnly:   c.HttpOnly,
	}
	switch c.SameSite {
	case SameSiteLaxMode:
		hc.SameSite = http.SameSiteLaxMode
	case SameSiteStrictMode:
		hc.SameSite = http.SameSiteStrictMode
	case SameSiteNoneMode:
		hc.SameSite = http.SameSiteNoneMode
	default:
		hc.SameSite = http.SameSiteDefaultMode
	}
	return hc
}
