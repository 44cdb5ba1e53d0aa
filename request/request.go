// Package request reads and modifies the HTTP request of the current
// Easegress context.
package request

import (
	"github.com/easegress-io/easegress-go-sdk/cookie"
	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// GetRealIP returns the client address, preferring X-Forwarded-For and
// X-Real-Ip over the peer address.
func GetRealIP() string {
	return abi.TakeText(hostcall.ReqGetRealIP())
}

// GetScheme returns "http" or "https".
func GetScheme() string {
	return abi.TakeText(hostcall.ReqGetScheme())
}

// GetProto returns the protocol version, such as "HTTP/1.1".
func GetProto() string {
	return abi.TakeText(hostcall.ReqGetProto())
}

// GetMethod returns the request method.
func GetMethod() string {
	return abi.TakeText(hostcall.ReqGetMethod())
}

// SetMethod replaces the request method.
func SetMethod(method string) {
	abi.WithText(method, abi.Void(hostcall.ReqSetMethod))
}

// GetHost returns the host the request is addressed to.
func GetHost() string {
	return abi.TakeText(hostcall.ReqGetHost())
}

// SetHost replaces the request host.
func SetHost(host string) {
	abi.WithText(host, abi.Void(hostcall.ReqSetHost))
}

// GetPath returns the unescaped request path.
func GetPath() string {
	return abi.TakeText(hostcall.ReqGetPath())
}

// SetPath replaces the request path.
func SetPath(path string) {
	abi.WithText(path, abi.Void(hostcall.ReqSetPath))
}

// GetEscapedPath returns the path in its escaped form.
func GetEscapedPath() string {
	return abi.TakeText(hostcall.ReqGetEscapedPath())
}

// GetQuery returns the raw query string, without the leading '?'.
func GetQuery() string {
	return abi.TakeText(hostcall.ReqGetQuery())
}

// SetQuery replaces the raw query string.
func SetQuery(query string) {
	abi.WithText(query, abi.Void(hostcall.ReqSetQuery))
}

// GetFragment returns the URL fragment.
func GetFragment() string {
	return abi.TakeText(hostcall.ReqGetFragment())
}

// GetHeader returns the first value of the named header, or "".
func GetHeader(name string) string {
	return abi.TakeText(abi.WithText(name, hostcall.ReqGetHeader))
}

// GetAllHeader returns every request header.
func GetAllHeader() marshal.Header {
	return abi.TakeHeader(hostcall.ReqGetAllHeader())
}

// SetHeader replaces the values of the named header.
func SetHeader(name, value string) {
	abi.WithTexts(name, value, abi.Void2(hostcall.ReqSetHeader))
}

// SetAllHeader replaces every request header with h.
func SetAllHeader(h marshal.Header) {
	abi.WithHeader(h, abi.Void(hostcall.ReqSetAllHeader))
}

// AddHeader appends a value to the named header.
func AddHeader(name, value string) {
	abi.WithTexts(name, value, abi.Void2(hostcall.ReqAddHeader))
}

// DelHeader removes the named header.
func DelHeader(name string) {
	abi.WithText(name, abi.Void(hostcall.ReqDelHeader))
}

// GetCookie returns the named cookie, or nil if the request has none.
func GetCookie(name string) *cookie.Cookie {
	return abi.TakeCookie(abi.WithText(name, hostcall.ReqGetCookie))
}

// GetAllCookie returns the request's cookies. Lines that hold no cookie are
// dropped; a malformed Max-Age faults the instance like GetCookie.
func GetAllCookie() []*cookie.Cookie {
	offset := hostcall.ReqGetAllCookie()
	return parseCookies(offset, abi.TakeTextList(offset))
}

// parseCookies parses the lines of the text list that was at offset.
func parseCookies(offset uint32, lines []string) []*cookie.Cookie {
	cookies := make([]*cookie.Cookie, 0, len(lines))
	for _, line := range lines {
		c, err := cookie.Parse(line)
		if err != nil {
			panic(&marshal.DecodeError{Kind: "cookie", Offset: offset, Err: err})
		}
		if c != nil {
			cookies = append(cookies, c)
		}
	}
	return cookies
}

// AddCookie adds c to the request. c must have a name.
func AddCookie(c *cookie.Cookie) {
	abi.WithCookie(c, abi.Void(hostcall.ReqAddCookie))
}

// GetBody returns the request body.
func GetBody() []byte {
	return abi.TakeBytes(hostcall.ReqGetBody())
}

// SetBody replaces the request body.
func SetBody(body []byte) {
	abi.WithBytes(body, abi.Void(hostcall.ReqSetBody))
}
