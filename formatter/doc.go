// Package formatter defines how log records are serialized into bytes.
//
// It exposes two interfaces: Formatter, which returns a []byte, and
// BufferFormatter, which formats into a caller-provided bytes.Buffer.
// Handlers check for BufferFormatter at construction time and prefer it
// when available, eliminating the intermediate byte slice allocation on
// the write path.
//
// Templates use single-brace placeholders: "{asctime} - {levelname} -
// {message}". A placeholder may carry a width directive after a colon,
// e.g. "{levelname:<8}" (left pad), "{name:>12}" (right align),
// "{message:^20}" (center) or "{thread_id:06}" (zero pad). A field that
// is neither derived nor present on the record renders as an empty
// string; formatting never fails on an unknown field.
//
// TextFormatter is interpretive and re-parses its template on every
// call; CompiledFormatter parses the template once into a token list at
// construction and is the formatter handlers should use on hot paths.
// Both produce identical output for the same template. JSONFormatter
// assembles its fixed keys by hand and falls back to goccy/go-json only
// for arbitrary (Any) field values.
//
// Buffers larger than 64 KiB are not returned to the pool to prevent
// a single large log line from permanently inflating memory usage.
package formatter
