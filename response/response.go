// Package response reads and modifies the HTTP response of the current
// Easegress context.
package response

import (
	"github.com/easegress-io/easegress-go-sdk/cookie"
	"github.com/easegress-io/easegress-go-sdk/internal/abi"
	"github.com/easegress-io/easegress-go-sdk/internal/hostcall"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// GetStatusCode returns the response status code.
func GetStatusCode() int32 {
	return hostcall.RespGetStatusCode()
}

// SetStatusCode sets the response status code.
func SetStatusCode(code int32) {
	hostcall.RespSetStatusCode(code)
}

// GetHeader returns the first value of the named header, or "".
func GetHeader(name string) string {
	return abi.TakeText(abi.WithText(name, hostcall.RespGetHeader))
}

// GetAllHeader returns every response header.
func GetAllHeader() marshal.Header {
	return abi.TakeHeader(hostcall.RespGetAllHeader())
}

// SetHeader replaces the values of the named header.
func SetHeader(name, value string) {
	abi.WithTexts(name, value, abi.Void2(hostcall.RespSetHeader))
}

// SetAllHeader replaces every response header with h.
func SetAllHeader(h marshal.Header) {
	abi.WithHeader(h, abi.Void(hostcall.RespSetAllHeader))
}

// AddHeader appends a value to the named header.
func AddHeader(name, value string) {
	abi.WithTexts(name, value, abi.Void2(hostcall.RespAddHeader))
}

// DelHeader removes the named header.
func DelHeader(name string) {
	abi.WithText(name, abi.Void(hostcall.RespDelHeader))
}

// SetCookie adds a Set-Cookie header for c. c must have a name.
func SetCookie(c *cookie.Cookie) {
	abi.WithCookie(c, abi.Void(hostcall.RespSetCookie))
}

// GetBody returns the response body.
func GetBody() []byte {
	return abi.TakeBytes(hostcall.RespGetBody())
}

// SetBody replaces the response body.
func SetBody(body []byte) {
	abi.WithBytes(body, abi.Void(hostcall.RespSetBody))
}
