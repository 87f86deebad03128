package fast

import "fmt"

// staticScratchSize bounds the formatted output of a StaticFormatter.
const staticScratchSize = 8 << 10

// StaticFormatter fills a byte template whose {} placeholder offsets
// were computed once at construction. Format reuses one scratch buffer,
// so a StaticFormatter must not be shared between goroutines.
type StaticFormatter struct {
	template []byte
	offsets  []int
	scratch  []byte
}

// NewStaticFormatter precompiles the template. Placeholders are the
// two-byte sequence "{}".
func NewStaticFormatter(template []byte) *StaticFormatter {
	f := &StaticFormatter{
		template: append([]byte(nil), template...),
		scratch:  make([]byte, staticScratchSize),
	}
	for i := 0; i+1 < len(f.template); i++ {
		if f.template[i] == '{' && f.template[i+1] == '}' {
			f.offsets = append(f.offsets, i)
			i++
		}
	}
	return f
}

// NumPlaceholders returns how many {} slots the template has.
func (f *StaticFormatter) NumPlaceholders() int {
	return len(f.offsets)
}

// Format substitutes args into the template and returns a detached
// copy of the result. Argument count must match the placeholder count
// exactly; a mismatch or an output larger than the scratch buffer
// returns an error before anything is produced.
func (f *StaticFormatter) Format(args ...[]byte) ([]byte, error) {
	if len(args) != len(f.offsets) {
		return nil, fmt.Errorf("fast: template has %d placeholders, got %d args", len(f.offsets), len(args))
	}

	total := len(f.template)
	for _, arg := range args {
		total += len(arg) - 2
	}
	if total > len(f.scratch) {
		return nil, fmt.Errorf("fast: formatted output %d bytes exceeds %d byte scratch buffer", total, len(f.scratch))
	}

	pos := 0
	prev := 0
	for i, off := range f.offsets {
		pos += copy(f.scratch[pos:], f.template[prev:off])
		pos += copy(f.scratch[pos:], args[i])
		prev = off + 2
	}
	pos += copy(f.scratch[pos:], f.template[prev:])

	return append([]byte(nil), f.scratch[:pos]...), nil
}
