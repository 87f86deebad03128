package formatter

import (
	"bytes"

	"github.com/voltlog/voltlog/core"
)

// TextFormatter is the interpretive formatter: it re-parses its template
// on every call. It exists as the functional fallback for templates the
// compiled formatter was not built for; hot paths should use
// CompiledFormatter, which produces identical output.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter. The template is parsed
// once here to surface configuration errors early, even though Format
// re-parses per call.
func NewTextFormatter(cfg Config) (*TextFormatter, error) {
	cfg.applyDefaults()
	if _, err := parseTemplate(cfg.Pattern); err != nil {
		return nil, err
	}
	return &TextFormatter{Config: cfg}, nil
}

// Format formats a record as text
func (f *TextFormatter) Format(r *core.Record) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.FormatRecord(r, buf)

	// Copy buffer content to return
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatRecord formats a record into the given buffer (implements BufferFormatter).
func (f *TextFormatter) FormatRecord(r *core.Record, buf *bytes.Buffer) {
	tokens, err := parseTemplate(f.Pattern)
	if err != nil {
		// The constructor validated the template; reaching this means the
		// pattern was mutated after construction. Emit the message alone
		// rather than dropping the record.
		buf.WriteString(r.Message)
		buf.WriteByte('\n')
		return
	}
	renderTokens(tokens, r, f.TimestampFormat, buf)
}
