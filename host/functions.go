package host

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tetratelabs/wazero/api"

	"github.com/easegress-io/easegress-go-sdk/cookie"
	"github.com/easegress-io/easegress-go-sdk/marshal"
)

// ModuleName is the import module of every Easegress host function.
const ModuleName = "easegress"

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f64 = api.ValueTypeF64
)

// hostFunc is one host import. fn reads its params from the stack and
// writes its result back to stack[0].
type hostFunc struct {
	name    string
	params  []api.ValueType
	results []api.ValueType
	fn      func(c *call)
}

// call is the state of a single host function invocation.
type call struct {
	ctx   context.Context
	cfg   *config
	guest Guest
	codec *marshal.Codec
	stack []uint64
	name  string
}

// hostFault is raised by a host function that cannot complete. It traps
// the guest.
type hostFault struct {
	name string
	err  error
}

func (f *hostFault) Error() string { return fmt.Sprintf("%s: %v", f.name, f.err) }
func (f *hostFault) Unwrap() error { return f.err }

func (c *call) fail(err error) {
	c.cfg.logger.ErrorContext(c.ctx, "host: function failed", "function", c.name, "error", err)
	panic(&hostFault{name: c.name, err: err})
}

func (c *call) exchange() *Exchange {
	ex, ok := ExchangeFrom(c.ctx)
	if !ok {
		c.fail(fmt.Errorf("no HTTP exchange in context"))
	}
	return ex
}

func (c *call) i32(i int) int32 { return api.DecodeI32(c.stack[i]) }
func (c *call) ptr(i int) uint32 { return api.DecodeU32(c.stack[i]) }
func (c *call) i64(i int) int64 { return int64(c.stack[i]) }
func (c *call) f64(i int) float64 { return api.DecodeF64(c.stack[i]) }
func (c *call) setI32(v int32) { c.stack[0] = api.EncodeI32(v) }
func (c *call) setI64(v int64) { c.stack[0] = api.EncodeI64(v) }
func (c *call) setF64(v float64) { c.stack[0] = api.EncodeF64(v) }
func (c *call) setPtr(b marshal.Buffer) { c.stack[0] = api.EncodeU32(b.Offset) }

// checkFrame rejects a frame whose declared length exceeds the limit before
// anything is copied out of guest memory.
func (c *call) checkFrame(i int) {
	n, ok := c.guest.Memory().ReadUint32Le(c.ptr(i))
	if ok && n > c.cfg.maxFrameSize {
		c.fail(fmt.Errorf("param %d: frame of %d bytes exceeds the %d byte limit", i, n, c.cfg.maxFrameSize))
	}
}

func (c *call) text(i int) string {
	c.checkFrame(i)
	s, err := marshal.NewReader(c.guest.Memory(), c.ptr(i)).Text()
	if err != nil {
		c.fail(fmt.Errorf("param %d: %w", i, err))
	}
	return s
}

func (c *call) bytes(i int) []byte {
	c.checkFrame(i)
	b, err := marshal.NewReader(c.guest.Memory(), c.ptr(i)).Bytes()
	if err != nil {
		c.fail(fmt.Errorf("param %d: %w", i, err))
	}
	return b
}

func (c *call) cookie(i int) *cookie.Cookie {
	ck, err := cookie.Parse(c.text(i))
	if err != nil {
		c.fail(fmt.Errorf("param %d: %w", i, err))
	}
	if ck == nil {
		c.fail(fmt.Errorf("param %d: %w", i, cookie.ErrEmptyName))
	}
	return ck
}

func (c *call) placed(b marshal.Buffer, err error) {
	if err != nil {
		c.fail(err)
	}
	c.setPtr(b)
}

func (c *call) returnText(s string) { c.placed(c.codec.EncodeText(s)) }
func (c *call) returnBytes(b []byte) { c.placed(c.codec.EncodeBytes(b)) }
func (c *call) returnTexts(items []string) { c.placed(c.codec.EncodeTextList(items)) }
func (c *call) returnHeader(h http.Header) { c.placed(c.codec.EncodeHeader(marshal.Header(h))) }

func (c *call) returnCookie(hc *http.Cookie) {
	if hc == nil {
		c.returnText("")
		return
	}
	line, err := cookie.FromHTTP(hc).Marshal()
	if err != nil {
		c.returnText("")
		return
	}
	c.returnText(line)
}

// replaceHeader copies h into dst, canonicalizing names.
func replaceHeader(dst http.Header, h marshal.Header) {
	for name := range dst {
		delete(dst, name)
	}
	for name, values := range h {
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func (c *call) header(i int) marshal.Header {
	return marshal.ParseHeader(c.text(i))
}

var hostLevels = [...]slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}

func logLevel(level int32) slog.Level {
	if level < 0 || int(level) >= len(hostLevels) {
		return slog.LevelError
	}
	return hostLevels[level]
}

func stringGetter(name string, get func(*Exchange) string) hostFunc {
	return hostFunc{name: name, results: []api.ValueType{i32}, fn: func(c *call) {
		c.returnText(get(c.exchange()))
	}}
}

func stringSetter(name string, set func(*Exchange, string)) hostFunc {
	return hostFunc{name: name, params: []api.ValueType{i32}, fn: func(c *call) {
		set(c.exchange(), c.text(0))
	}}
}

func headerFuncs(prefix string, header func(*Exchange) http.Header) []hostFunc {
	return []hostFunc{
		{name: prefix + "get_header", params: []api.ValueType{i32}, results: []api.ValueType{i32}, fn: func(c *call) {
			c.returnText(header(c.exchange()).Get(c.text(0)))
		}},
		{name: prefix + "get_all_header", results: []api.ValueType{i32}, fn: func(c *call) {
			c.returnHeader(header(c.exchange()))
		}},
		{name: prefix + "set_header", params: []api.ValueType{i32, i32}, fn: func(c *call) {
			header(c.exchange()).Set(c.text(0), c.text(1))
		}},
		{name: prefix + "set_all_header", params: []api.ValueType{i32}, fn: func(c *call) {
			replaceHeader(header(c.exchange()), c.header(0))
		}},
		{name: prefix + "add_header", params: []api.ValueType{i32, i32}, fn: func(c *call) {
			header(c.exchange()).Add(c.text(0), c.text(1))
		}},
		{name: prefix + "del_header", params: []api.ValueType{i32}, fn: func(c *call) {
			header(c.exchange()).Del(c.text(0))
		}},
	}
}

func (c *call) clusterGet(key string) (string, bool) {
	v, ok, err := c.cfg.cluster.Get(c.ctx, key)
	if err != nil {
		c.fail(err)
	}
	return v, ok
}

func (c *call) clusterPut(key, value string) {
	if err := c.cfg.cluster.Put(c.ctx, key, value); err != nil {
		c.fail(err)
	}
}

func (c *call) clusterUpdate(key string, fn func(old string, ok bool) (string, error)) string {
	v, err := c.cfg.cluster.Update(c.ctx, key, fn)
	if err != nil {
		c.fail(err)
	}
	return v
}

func parseInteger(key, v string, ok bool) (int64, error) {
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cluster key %q does not hold an integer: %w", key, err)
	}
	return n, nil
}

func parseFloat(key, v string, ok bool) (float64, error) {
	if !ok || v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("cluster key %q does not hold a float: %w", key, err)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// hostFunctions returns every function of the easegress host module.
func hostFunctions() []hostFunc {
	fns := []hostFunc{
		{name: "host_add_tag", params: []api.ValueType{i32}, fn: func(c *call) {
			c.exchange().AddTag(c.text(0))
		}},
		{name: "host_log", params: []api.ValueType{i32, i32}, fn: func(c *call) {
			level, msg := c.i32(0), c.text(1)
			c.cfg.logger.Log(c.ctx, logLevel(level), msg, "source", "wasm")
		}},
		{name: "host_get_unix_time_in_ms", results: []api.ValueType{i64}, fn: func(c *call) {
			c.setI64(c.cfg.now().UnixMilli())
		}},
		{name: "host_rand", results: []api.ValueType{f64}, fn: func(c *call) {
			c.setF64(c.cfg.rand())
		}},

		stringGetter("host_req_get_real_ip", (*Exchange).RealIP),
		stringGetter("host_req_get_scheme", (*Exchange).Scheme),
		stringGetter("host_req_get_proto", func(e *Exchange) string { return e.Request.Proto }),
		stringGetter("host_req_get_method", func(e *Exchange) string { return e.Request.Method }),
		stringSetter("host_req_set_method", func(e *Exchange, v string) { e.Request.Method = v }),
		stringGetter("host_req_get_host", func(e *Exchange) string { return e.Request.Host }),
		stringSetter("host_req_set_host", func(e *Exchange, v string) { e.Request.Host = v }),
		stringGetter("host_req_get_path", func(e *Exchange) string { return e.Request.URL.Path }),
		stringSetter("host_req_set_path", func(e *Exchange, v string) {
			e.Request.URL.Path = v
			e.Request.URL.RawPath = ""
		}),
		stringGetter("host_req_get_escaped_path", func(e *Exchange) string { return e.Request.URL.EscapedPath() }),
		stringGetter("host_req_get_query", func(e *Exchange) string { return e.Request.URL.RawQuery }),
		stringSetter("host_req_set_query", func(e *Exchange, v string) { e.Request.URL.RawQuery = v }),
		stringGetter("host_req_get_fragment", func(e *Exchange) string { return e.Request.URL.Fragment }),

		{name: "host_req_get_cookie", params: []api.ValueType{i32}, results: []api.ValueType{i32}, fn: func(c *call) {
			hc, err := c.exchange().Request.Cookie(c.text(0))
			if err != nil {
				hc = nil
			}
			c.returnCookie(hc)
		}},
		{name: "host_req_get_all_cookie", results: []api.ValueType{i32}, fn: func(c *call) {
			var lines []string
			for _, hc := range c.exchange().Request.Cookies() {
				if line, err := cookie.FromHTTP(hc).Marshal(); err == nil {
					lines = append(lines, line)
				}
			}
			c.returnTexts(lines)
		}},
		{name: "host_req_add_cookie", params: []api.ValueType{i32}, fn: func(c *call) {
			c.exchange().Request.AddCookie(c.cookie(0).ToHTTP())
		}},
		{name: "host_req_get_body", results: []api.ValueType{i32}, fn: func(c *call) {
			body, err := c.exchange().RequestBody()
			if err != nil {
				c.fail(err)
			}
			c.returnBytes(body)
		}},
		{name: "host_req_set_body", params: []api.ValueType{i32}, fn: func(c *call) {
			c.exchange().SetRequestBody(c.bytes(0))
		}},

		{name: "host_resp_get_status_code", results: []api.ValueType{i32}, fn: func(c *call) {
			c.setI32(c.exchange().Response.StatusCode)
		}},
		{name: "host_resp_set_status_code", params: []api.ValueType{i32}, fn: func(c *call) {
			c.exchange().Response.StatusCode = c.i32(0)
		}},
		{name: "host_resp_set_cookie", params: []api.ValueType{i32}, fn: func(c *call) {
			line, err := c.cookie(0).Marshal()
			if err != nil {
				c.fail(err)
			}
			c.exchange().Response.Header.Add("Set-Cookie", line)
		}},
		{name: "host_resp_get_body", results: []api.ValueType{i32}, fn: func(c *call) {
			c.returnBytes(c.exchange().Response.Body)
		}},
		{name: "host_resp_set_body", params: []api.ValueType{i32}, fn: func(c *call) {
			c.exchange().Response.Body = c.bytes(0)
		}},

		{name: "host_cluster_get_binary", params: []api.ValueType{i32}, results: []api.ValueType{i32}, fn: func(c *call) {
			v, _ := c.clusterGet(c.text(0))
			c.returnBytes([]byte(v))
		}},
		{name: "host_cluster_put_binary", params: []api.ValueType{i32, i32}, fn: func(c *call) {
			c.clusterPut(c.text(0), string(c.bytes(1)))
		}},
		{name: "host_cluster_get_string", params: []api.ValueType{i32}, results: []api.ValueType{i32}, fn: func(c *call) {
			v, _ := c.clusterGet(c.text(0))
			c.returnText(v)
		}},
		{name: "host_cluster_put_string", params: []api.ValueType{i32, i32}, fn: func(c *call) {
			c.clusterPut(c.text(0), c.text(1))
		}},
		{name: "host_cluster_get_integer", params: []api.ValueType{i32}, results: []api.ValueType{i64}, fn: func(c *call) {
			key := c.text(0)
			v, ok := c.clusterGet(key)
			n, err := parseInteger(key, v, ok)
			if err != nil {
				c.fail(err)
			}
			c.setI64(n)
		}},
		{name: "host_cluster_put_integer", params: []api.ValueType{i32, i64}, fn: func(c *call) {
			c.clusterPut(c.text(0), strconv.FormatInt(c.i64(1), 10))
		}},
		{name: "host_cluster_add_integer", params: []api.ValueType{i32, i64}, results: []api.ValueType{i64}, fn: func(c *call) {
			key, delta := c.text(0), c.i64(1)
			var sum int64
			c.clusterUpdate(key, func(old string, ok bool) (string, error) {
				n, err := parseInteger(key, old, ok)
				if err != nil {
					return "", err
				}
				sum = n + delta
				return strconv.FormatInt(sum, 10), nil
			})
			c.setI64(sum)
		}},
		{name: "host_cluster_get_float", params: []api.ValueType{i32}, results: []api.ValueType{f64}, fn: func(c *call) {
			key := c.text(0)
			v, ok := c.clusterGet(key)
			f, err := parseFloat(key, v, ok)
			if err != nil {
				c.fail(err)
			}
			c.setF64(f)
		}},
		{name: "host_cluster_put_float", params: []api.ValueType{i32, f64}, fn: func(c *call) {
			c.clusterPut(c.text(0), formatFloat(c.f64(1)))
		}},
		{name: "host_cluster_add_float", params: []api.ValueType{i32, f64}, results: []api.ValueType{f64}, fn: func(c *call) {
			key, delta := c.text(0), c.f64(1)
			var sum float64
			c.clusterUpdate(key, func(old string, ok bool) (string, error) {
				f, err := parseFloat(key, old, ok)
				if err != nil {
					return "", err
				}
				sum = f + delta
				return formatFloat(sum), nil
			})
			c.setF64(sum)
		}},
		{name: "host_cluster_count_key", params: []api.ValueType{i32}, results: []api.ValueType{i32}, fn: func(c *call) {
			n, err := c.cfg.cluster.CountPrefix(c.ctx, c.text(0))
			if err != nil {
				c.fail(err)
			}
			c.setI32(int32(n)) //nolint:gosec // key counts fit in i32
		}},
	}

	fns = append(fns, headerFuncs("host_req_", func(e *Exchange) http.Header { return e.Request.Header })...)
	fns = append(fns, headerFuncs("host_resp_", func(e *Exchange) http.Header { return e.Response.Header })...)
	return fns
}

// invoke runs f against guest with params on stack. The stack must have room
// for the result.
func (f hostFunc) invoke(ctx context.Context, cfg *config, guest Guest, stack []uint64) {
	c := &call{
		ctx:   ctx,
		cfg:   cfg,
		guest: guest,
		codec: newGuestCodec(ctx, cfg, guest),
		stack: stack,
		name:  f.name,
	}
	f.fn(c)
}
