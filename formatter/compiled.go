package formatter

import (
	"bytes"

	"github.com/voltlog/voltlog/core"
)

// CompiledFormatter parses its template exactly once, at construction,
// into a token list evaluated by a switch at format time. It is the
// formatter handlers should be configured with on hot paths.
type CompiledFormatter struct {
	Config
	tokens []token
}

// NewCompiledFormatter compiles the template. An invalid template is a
// configuration error and fails here, not at format time.
func NewCompiledFormatter(cfg Config) (*CompiledFormatter, error) {
	cfg.applyDefaults()
	tokens, err := parseTemplate(cfg.Pattern)
	if err != nil {
		return nil, err
	}
	return &CompiledFormatter{Config: cfg, tokens: tokens}, nil
}

// Format formats a record using the precompiled token list
func (f *CompiledFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatRecord(r, buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatRecord formats a record into the given buffer (implements BufferFormatter).
func (f *CompiledFormatter) FormatRecord(r *core.Record, buf *bytes.Buffer) {
	renderTokens(f.tokens, r, f.TimestampFormat, buf)
}
