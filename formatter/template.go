package formatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/voltlog/voltlog/core"
)

// Templates compile into a flat token list. Each token is either a
// literal chunk or a field reference; field references to the fixed
// record fields resolve through a derived-field id and a switch at
// format time, so no per-field closures are ever built.

type derivedField uint8

const (
	derivNone derivedField = iota
	derivAsctime
	derivLevelname
	derivThreadID
	derivProcessID
	derivName
	derivMessage
)

type padAlign uint8

const (
	alignNone padAlign = iota
	alignLeft
	alignRight
	alignCenter
)

type token struct {
	lit     string // literal chunk; empty for field tokens
	field   string // field name for record lookups
	derived derivedField
	align   padAlign
	width   int
	zeroPad bool
	isField bool
}

// derivedFieldFor maps template names onto the fixed record fields.
func derivedFieldFor(name string) derivedField {
	switch name {
	case "asctime":
		return derivAsctime
	case "levelname":
		return derivLevelname
	case "thread_id":
		return derivThreadID
	case "process_id":
		return derivProcessID
	case "name":
		return derivName
	case "message":
		return derivMessage
	default:
		return derivNone
	}
}

// parseTemplate scans a template into tokens. "{{" and "}}" escape
// literal braces. An unterminated or empty placeholder is a
// configuration error.
func parseTemplate(tmpl string) ([]token, error) {
	var tokens []token
	var lit bytes.Buffer

	flushLit := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{lit: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(tmpl); {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q: unterminated placeholder at offset %d", tmpl, i)
			}
			spec := tmpl[i+1 : i+1+end]
			if spec == "" {
				return nil, fmt.Errorf("template %q: empty placeholder at offset %d", tmpl, i)
			}
			tok, err := parseField(spec)
			if err != nil {
				return nil, fmt.Errorf("template %q: %w", tmpl, err)
			}
			flushLit()
			tokens = append(tokens, tok)
			i += end + 2
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, fmt.Errorf("template %q: unexpected '}' at offset %d", tmpl, i)
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flushLit()
	return tokens, nil
}

// parseField parses "name" or "name:directive" into a field token.
func parseField(spec string) (token, error) {
	tok := token{isField: true}
	name := spec
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		name = spec[:idx]
		if err := parseDirective(spec[idx+1:], &tok); err != nil {
			return token{}, err
		}
	}
	if name == "" {
		return token{}, fmt.Errorf("placeholder %q: missing field name", spec)
	}
	tok.field = name
	tok.derived = derivedFieldFor(name)
	return tok, nil
}

// parseDirective parses width/alignment directives: "<N", ">N", "^N",
// "0N" or a bare width (left pad, matching str.format defaults).
func parseDirective(d string, tok *token) error {
	if d == "" {
		return fmt.Errorf("empty format directive")
	}
	switch d[0] {
	case '<':
		tok.align = alignLeft
		d = d[1:]
	case '>':
		tok.align = alignRight
		d = d[1:]
	case '^':
		tok.align = alignCenter
		d = d[1:]
	case '0':
		tok.align = alignRight
		tok.zeroPad = true
		d = d[1:]
	default:
		tok.align = alignLeft
	}
	w, err := strconv.Atoi(d)
	if err != nil || w < 0 {
		return fmt.Errorf("invalid width %q in format directive", d)
	}
	tok.width = w
	return nil
}

// renderTokens evaluates a token list against a record.
func renderTokens(tokens []token, r *core.Record, tsFormat string, buf *bytes.Buffer) {
	for _, tok := range tokens {
		if !tok.isField {
			buf.WriteString(tok.lit)
			continue
		}
		// Unpadded record fields append straight into the buffer;
		// padding needs the rendered length first.
		if tok.derived == derivNone && tok.width == 0 {
			if f, ok := r.Lookup(tok.field); ok {
				buf.Write(f.AppendValue(buf.AvailableBuffer()))
			}
			continue
		}
		val := resolveField(tok, r, tsFormat)
		writePadded(buf, val, tok)
	}
	buf.WriteByte('\n')
}

// resolveField resolves a field token to its string value. Unknown
// fields degrade to the empty string.
func resolveField(tok token, r *core.Record, tsFormat string) string {
	switch tok.derived {
	case derivAsctime:
		return r.Time.Format(tsFormat)
	case derivLevelname:
		return r.Level.String()
	case derivThreadID:
		return strconv.FormatUint(r.ThreadID, 10)
	case derivProcessID:
		return strconv.Itoa(r.ProcessID)
	case derivName:
		return r.Name
	case derivMessage:
		return r.Message
	}
	if f, ok := r.Lookup(tok.field); ok {
		return f.StringValue()
	}
	return ""
}

func writePadded(buf *bytes.Buffer, val string, tok token) {
	pad := tok.width - len(val)
	if pad <= 0 {
		buf.WriteString(val)
		return
	}
	fill := byte(' ')
	if tok.zeroPad {
		fill = '0'
	}
	switch tok.align {
	case alignRight:
		writeFill(buf, fill, pad)
		buf.WriteString(val)
	case alignCenter:
		writeFill(buf, fill, pad/2)
		buf.WriteString(val)
		writeFill(buf, fill, pad-pad/2)
	default:
		buf.WriteString(val)
		writeFill(buf, fill, pad)
	}
}

func writeFill(buf *bytes.Buffer, c byte, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(c)
	}
}
