package marshal

import (
	"strings"
)

// Header is an HTTP header multimap. Names are kept exactly as given; no
// canonicalization is applied.
type Header map[string][]string

// Add appends value to the values of name.
func (h Header) Add(name, value string) {
	h[name] = append(h[name], value)
}

// Set replaces the values of name with value.
func (h Header) Set(name, value string) {
	h[name] = []string{value}
}

// Get returns the first value of name, or "".
func (h Header) Get(name string) string {
	if v := h[name]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns every value of name.
func (h Header) Values(name string) []string {
	return h[name]
}

// Del removes name.
func (h Header) Del(name string) {
	delete(h, name)
}

// Marshal renders h as "name:value\r\n" lines, one per value. Values of the
// same name keep their order; the order of names is unspecified.
func (h Header) Marshal() string {
	var b strings.Builder
	for name, values := range h {
		for _, v := range values {
			b.WriteString(name)
			b.WriteByte(':')
			b.WriteString(v)
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// ParseHeader parses the output of Header.Marshal. Each CRLF-separated
// segment is split once at the first ':'; segments without a colon are
// skipped. Neither names nor values are trimmed.
func ParseHeader(s string) Header {
	h := make(Header)
	for seg := range strings.SplitSeq(s, "\r\n") {
		if seg == "" {
			continue
		}
		name, value, ok := strings.Cut(seg, ":")
		if !ok {
			continue
		}
		h.Add(name, value)
	}
	return h
}
