// Package marshal implements the byte layouts exchanged between an Easegress
// WASM guest and its host.
//
// Every variable-length value crosses the boundary as a frame in linear
// memory, addressed by its offset. All integers are little-endian.
//
//   - bytes: u32 length, then the data
//   - text: u32 length counting a trailing zero, the UTF-8 data, then 0
//   - text list: u32 count, then that many text frames back to back
//   - header: one text frame of "name:value\r\n" lines
//   - cookie: one text frame holding a Set-Cookie line
//
// Scalars (status codes, integers, floats) are passed as plain values and
// never framed.
package marshal
