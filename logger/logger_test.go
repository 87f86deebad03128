package logger

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/filter"
)

// sink is a test handler that copies message and field data out of
// pooled records before they are recycled.
type sink struct {
	mu      sync.Mutex
	level   core.Level
	entries []entry
}

type entry struct {
	message string
	fields  map[string]string
}

func (s *sink) Threshold() core.Level { return s.level }
func (s *sink) Close() error          { return nil }

func (s *sink) Emit(r *core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := entry{message: r.Message, fields: make(map[string]string)}
	for _, f := range r.Fields {
		e.fields[f.Key] = f.StringValue()
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *sink) snapshot() []entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entry(nil), s.entries...)
}

func (s *sink) messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.message
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func TestLoggerLevelGating(t *testing.T) {
	s := &sink{}
	l := New("gate")
	l.SetLevel(core.WarningLevel)
	l.AddHandler(s)

	l.Debug("dropped debug")
	l.Info("dropped info")
	l.Warning("kept warning")
	l.Error("kept error")
	l.Critical("kept critical")

	waitFor(t, func() bool { return len(s.messages()) == 3 })
	assert.Equal(t, []string{"kept warning", "kept error", "kept critical"}, s.messages())
}

func TestLoggerNoHandlers(t *testing.T) {
	l := New("void")
	// Must not panic and must not enqueue anything
	l.Info("nowhere to go")
}

func TestLoggerCallSiteFields(t *testing.T) {
	s := &sink{}
	l := New("fields")
	l.AddHandler(s)

	l.Info("checkout",
		String("user", "ada"),
		Int("items", 3),
		Float64("total", 19.5),
		Bool("gift", true),
		Duration("took", 250*time.Millisecond),
		Err(errors.New("card declined")),
	)

	waitFor(t, func() bool { return len(s.snapshot()) == 1 })
	got := s.snapshot()[0]
	assert.Equal(t, "checkout", got.message)
	assert.Equal(t, "ada", got.fields["user"])
	assert.Equal(t, "3", got.fields["items"])
	assert.Equal(t, "19.5", got.fields["total"])
	assert.Equal(t, "true", got.fields["gift"])
	assert.Equal(t, "250ms", got.fields["took"])
	assert.Equal(t, "card declined", got.fields["error"])
}

func TestBindOverlayIsolation(t *testing.T) {
	s := &sink{}
	parent := New("svc")
	parent.AddHandler(s)

	child := parent.Bind(String("request_id", "r-42"))
	child.Info("from child")
	parent.Info("from parent")

	waitFor(t, func() bool { return len(s.snapshot()) == 2 })
	for _, e := range s.snapshot() {
		switch e.message {
		case "from child":
			assert.Equal(t, "r-42", e.fields["request_id"])
		case "from parent":
			_, ok := e.fields["request_id"]
			assert.False(t, ok, "parent must not inherit the clone's overlay")
		default:
			t.Fatalf("unexpected message %q", e.message)
		}
	}
}

func TestBindSharesHandlersAndFilters(t *testing.T) {
	s := &sink{}
	parent := New("svc")
	child := parent.Bind(String("side", "child"))

	// Handler added after Bind is visible to the clone
	parent.AddHandler(s)
	child.Info("late handler")
	waitFor(t, func() bool { return len(s.snapshot()) == 1 })

	// Filter added on the clone applies to the parent too
	child.AddFilter(filter.Func(func(r *core.Record) bool {
		return r.Message != "blocked"
	}))
	parent.Info("blocked")
	parent.Info("passes")
	waitFor(t, func() bool { return len(s.snapshot()) == 2 })
	assert.NotContains(t, s.messages(), "blocked")
}

func TestWithContextRestore(t *testing.T) {
	s := &sink{}
	l := New("mdc")
	l.AddHandler(s)

	restore := l.WithContext(String("txn", "t-1"))
	l.Info("inside")
	restore()
	l.Info("outside")

	waitFor(t, func() bool { return len(s.snapshot()) == 2 })
	for _, e := range s.snapshot() {
		switch e.message {
		case "inside":
			assert.Equal(t, "t-1", e.fields["txn"])
		case "outside":
			_, ok := e.fields["txn"]
			assert.False(t, ok)
		}
	}
}

func TestWithContextNesting(t *testing.T) {
	s := &sink{}
	l := New("mdc")
	l.AddHandler(s)

	outer := l.WithContext(String("a", "1"))
	inner := l.WithContext(String("b", "2"))
	l.Info("both")
	inner()
	l.Info("outer only")
	outer()
	l.Info("none")

	waitFor(t, func() bool { return len(s.snapshot()) == 3 })
	got := s.snapshot()
	byMsg := make(map[string]entry, len(got))
	for _, e := range got {
		byMsg[e.message] = e
	}
	assert.Equal(t, "1", byMsg["both"].fields["a"])
	assert.Equal(t, "2", byMsg["both"].fields["b"])
	assert.Equal(t, "1", byMsg["outer only"].fields["a"])
	assert.NotContains(t, byMsg["outer only"].fields, "b")
	assert.Empty(t, byMsg["none"].fields)
}

func TestCallSiteOverridesContext(t *testing.T) {
	s := &sink{}
	l := New("override")
	l.AddHandler(s)

	defer l.WithContext(String("env", "staging"))()
	l.Info("deploy", String("env", "prod"))

	waitFor(t, func() bool { return len(s.snapshot()) == 1 })
	assert.Equal(t, "prod", s.snapshot()[0].fields["env"])
}

func TestSamplingFilterOnLogger(t *testing.T) {
	s := &sink{}
	l := New("sampled")
	l.AddHandler(s)

	sampling, err := filter.NewSampling(3)
	require.NoError(t, err)
	l.AddFilter(sampling)

	for i := 0; i < 9; i++ {
		l.Info("tick")
	}
	waitFor(t, func() bool { return len(s.messages()) == 3 })
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, s.messages(), 3)
}

func TestRemoveHandler(t *testing.T) {
	s := &sink{}
	l := New("rm")
	l.AddHandler(s)

	l.Info("before")
	waitFor(t, func() bool { return len(s.messages()) == 1 })

	l.RemoveHandler(s)
	l.Info("after")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"before"}, s.messages())
}

func TestDefaultLoggerDelegates(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	s := &sink{}
	l := New("root")
	l.AddHandler(s)
	SetDefault(l)

	Info("via package function")
	waitFor(t, func() bool { return len(s.messages()) == 1 })
	assert.Equal(t, "via package function", s.messages()[0])
}

func TestParseLevelReexport(t *testing.T) {
	lv, err := ParseLevel("ERROR")
	require.NoError(t, err)
	assert.Equal(t, ErrorLevel, lv)

	_, err = ParseLevel("SHOUTING")
	assert.Error(t, err)
}

func TestQuickSetupWritesFile(t *testing.T) {
	prev := Default()
	defer SetDefault(prev)

	path := t.TempDir() + "/app.log"
	l, err := QuickSetup(path, core.DebugLevel)
	require.NoError(t, err)
	require.Len(t, l.Handlers(), 2)
	assert.Equal(t, core.DebugLevel, l.Level())
	assert.Same(t, l, Default())
}
