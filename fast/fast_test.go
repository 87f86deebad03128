package fast

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlog/voltlog/core"
)

func newTestLogger(t *testing.T, opts Options) (*UltraFastLogger, string) {
	t.Helper()
	if opts.Path == "" {
		opts.Path = filepath.Join(t.TempDir(), "fast.log")
	}
	l, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, opts.Path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestLogRaw(t *testing.T) {
	l, path := newTestLogger(t, Options{Level: core.InfoLevel})

	require.NoError(t, l.LogRaw(core.InfoLevel, []byte("already formatted\n")))
	require.NoError(t, l.LogRaw(core.DebugLevel, []byte("gated out\n")))

	assert.Equal(t, "already formatted\n", readFile(t, path))
}

func TestLogPreallocBuffersUntilFlush(t *testing.T) {
	l, path := newTestLogger(t, Options{})

	require.NoError(t, l.LogPrealloc(core.InfoLevel, []byte("hello")))
	assert.Empty(t, readFile(t, path), "buffered line must not hit the file yet")
	assert.Positive(t, l.Buffered())

	require.NoError(t, l.Flush())
	got := readFile(t, path)
	assert.True(t, strings.HasSuffix(got, " [INFO] hello\n"), "got %q", got)
	assert.Zero(t, l.Buffered())
}

func TestLogPreallocFlushesBeforeOverflow(t *testing.T) {
	l, path := newTestLogger(t, Options{BufferSize: 64})

	// Each line is ~33 bytes; the second one cannot fit alongside the
	// first in a 64 byte buffer.
	require.NoError(t, l.LogPrealloc(core.InfoLevel, []byte("first")))
	require.NoError(t, l.LogPrealloc(core.InfoLevel, []byte("second")))

	got := readFile(t, path)
	assert.Contains(t, got, "first")
	assert.NotContains(t, got, "second", "second line should still be buffered")

	require.NoError(t, l.Flush())
	assert.Contains(t, readFile(t, path), "second")
}

func TestLogPreallocOversizeBypassesBuffer(t *testing.T) {
	l, path := newTestLogger(t, Options{BufferSize: 64})

	big := bytes.Repeat([]byte("x"), 200)
	require.NoError(t, l.LogPrealloc(core.InfoLevel, big))

	got := readFile(t, path)
	assert.Contains(t, got, string(big))
	assert.Zero(t, l.Buffered())
}

func TestLogDirect(t *testing.T) {
	l, path := newTestLogger(t, Options{Level: core.WarningLevel})

	require.NoError(t, l.LogDirect(core.ErrorLevel, []byte("boom")))
	require.NoError(t, l.LogDirect(core.InfoLevel, []byte("quiet")))

	got := readFile(t, path)
	assert.Contains(t, got, " [ERROR] boom\n")
	assert.NotContains(t, got, "quiet")
}

func TestCloseFlushes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "close.log")
	l, err := New(Options{Path: path})
	require.NoError(t, err)

	require.NoError(t, l.LogPrealloc(core.InfoLevel, []byte("last words")))
	require.NoError(t, l.Close())

	assert.Contains(t, readFile(t, path), "last words")
}

func TestBatchLogger(t *testing.T) {
	l, path := newTestLogger(t, Options{})
	b := NewBatch(l)

	require.NoError(t, b.Add(core.InfoLevel, []byte("one")))
	require.NoError(t, b.Add(core.ErrorLevel, []byte("two")))
	require.NoError(t, b.Add(core.DebugLevel, []byte("gated")))
	assert.Equal(t, 2, b.Len())
	assert.Empty(t, readFile(t, path))

	require.NoError(t, b.Flush())
	assert.Zero(t, b.Len())

	lines := strings.Split(strings.TrimRight(readFile(t, path), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], " [INFO] one"))
	assert.True(t, strings.HasSuffix(lines[1], " [ERROR] two"))
}

func TestStaticFormatter(t *testing.T) {
	f := NewStaticFormatter([]byte("user {} logged in at {}"))
	require.Equal(t, 2, f.NumPlaceholders())

	out, err := f.Format([]byte("ada"), []byte("14:30"))
	require.NoError(t, err)
	assert.Equal(t, "user ada logged in at 14:30", string(out))

	// Output is a detached copy; a second Format must not clobber it
	out2, err := f.Format([]byte("bob"), []byte("15:00"))
	require.NoError(t, err)
	assert.Equal(t, "user ada logged in at 14:30", string(out))
	assert.Equal(t, "user bob logged in at 15:00", string(out2))
}

func TestStaticFormatterArgMismatch(t *testing.T) {
	f := NewStaticFormatter([]byte("{} and {}"))

	_, err := f.Format([]byte("only one"))
	assert.Error(t, err)

	_, err = f.Format([]byte("a"), []byte("b"), []byte("c"))
	assert.Error(t, err)
}

func TestStaticFormatterNoPlaceholders(t *testing.T) {
	f := NewStaticFormatter([]byte("static text"))
	require.Equal(t, 0, f.NumPlaceholders())

	out, err := f.Format()
	require.NoError(t, err)
	assert.Equal(t, "static text", string(out))
}

func TestStaticFormatterScratchOverflow(t *testing.T) {
	f := NewStaticFormatter([]byte("{}"))

	_, err := f.Format(bytes.Repeat([]byte("y"), staticScratchSize+1))
	assert.Error(t, err)
}

func TestTimestampBytesStable(t *testing.T) {
	a := timestampBytes()
	b := timestampBytes()
	if string(a) != string(b) {
		// Second rolled over between the calls; sample again
		a = timestampBytes()
		b = timestampBytes()
	}
	assert.Equal(t, string(a), string(b))
	assert.Len(t, a, len(stampTimestampFormat))
}

func BenchmarkLogPrealloc(b *testing.B) {
	l, err := New(Options{Path: filepath.Join(b.TempDir(), "bench.log")})
	if err != nil {
		b.Fatal(err)
	}
	defer l.Close()
	msg := []byte("benchmark message with a realistic payload length")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := l.LogPrealloc(core.InfoLevel, msg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkStaticFormat(b *testing.B) {
	f := NewStaticFormatter([]byte("user {} logged in at {}"))
	u, ts := []byte("ada"), []byte("14:30")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := f.Format(u, ts); err != nil {
			b.Fatal(err)
		}
	}
}
