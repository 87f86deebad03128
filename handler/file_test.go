package handler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltlog/voltlog/core"
	"github.com/voltlog/voltlog/formatter"
)

// messageOnly gives byte-exact output: len(message)+1 per line.
func messageOnly(t *testing.T) formatter.Formatter {
	t.Helper()
	f, err := formatter.NewCompiledFormatter(formatter.Config{Pattern: "{message}"})
	require.NoError(t, err)
	return f
}

func record(level core.Level, msg string) *core.Record {
	return &core.Record{Level: level, Message: msg}
}

// trippingFormatter fails on one marked message and renders the rest
// as message-plus-newline.
type trippingFormatter struct {
	trigger string
}

func (f trippingFormatter) Format(r *core.Record) ([]byte, error) {
	if r.Message == f.trigger {
		return nil, errors.New("unrenderable record")
	}
	return []byte(r.Message + "\n"), nil
}

func TestFileEmitWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{Path: path, Formatter: messageOnly(t)})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Emit(record(core.InfoLevel, "first")))
	require.NoError(t, h.Emit(record(core.InfoLevel, "second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestFileThresholdSkips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{Path: path, Level: core.WarningLevel, Formatter: messageOnly(t)})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Emit(record(core.InfoLevel, "dropped")))
	require.NoError(t, h.Emit(record(core.ErrorLevel, "kept")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kept\n", string(data))
	assert.Equal(t, uint64(1), h.Stats().Skipped)
	assert.Equal(t, uint64(1), h.Stats().Processed)
}

func TestFileRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{
		Path:        path,
		MaxBytes:    100,
		BackupCount: 2,
		Formatter:   messageOnly(t),
	})
	require.NoError(t, err)
	defer h.Close()

	// 10 messages of 20 bytes each (19 chars + newline). The pre-write
	// check fires once, when the file reaches 100 bytes.
	msg := strings.Repeat("x", 19)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Emit(record(core.InfoLevel, msg)))
	}

	assert.Equal(t, uint64(1), h.Stats().Rotations)

	active, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, active, 100) // last 5 messages

	backup, err := os.ReadFile(path + ".1")
	require.NoError(t, err)
	assert.Len(t, backup, 100) // first 5 messages

	_, err = os.Stat(path + ".2")
	assert.True(t, os.IsNotExist(err), "only one rotation occurred, .2 must not exist")
}

func TestFileBackupShifting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{
		Path:        path,
		MaxBytes:    10,
		BackupCount: 2,
		Formatter:   messageOnly(t),
	})
	require.NoError(t, err)
	defer h.Close()

	// Each 10-byte line fills the file; every following emit rotates.
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Emit(record(core.InfoLevel, "line-abcd")))
	}

	assert.Equal(t, uint64(4), h.Stats().Rotations)

	// backup_count+1 files total: active, .1, .2; .3 never exists.
	for _, name := range []string{path, path + ".1", path + ".2"} {
		_, err := os.Stat(name)
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(path + ".3")
	assert.True(t, os.IsNotExist(err))
}

func TestFileRotationNoBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{
		Path:        path,
		MaxBytes:    10,
		BackupCount: 0,
		Formatter:   messageOnly(t),
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Emit(record(core.InfoLevel, "123456789"))) // fills to 10
	require.NoError(t, h.Emit(record(core.InfoLevel, "after")))     // truncates first

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))

	_, err = os.Stat(path + ".1")
	assert.True(t, os.IsNotExist(err))
}

func TestFileEmitAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{Path: path, Formatter: messageOnly(t)})
	require.NoError(t, err)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close()) // idempotent

	err = h.Emit(record(core.InfoLevel, "late"))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFileCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "app.log")
	h, err := NewFile(FileConfig{Path: path, Formatter: messageOnly(t)})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Emit(record(core.InfoLevel, "hi")))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestFileMissingPath(t *testing.T) {
	_, err := NewFile(FileConfig{})
	assert.Error(t, err)
}

func TestFileEmitBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{Path: path, Level: core.InfoLevel, Formatter: messageOnly(t)})
	require.NoError(t, err)
	defer h.Close()

	batch := []*core.Record{
		record(core.InfoLevel, "a"),
		record(core.DebugLevel, "filtered"),
		record(core.ErrorLevel, "b"),
	}
	require.NoError(t, h.EmitBatch(batch))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", string(data))
	assert.Equal(t, uint64(2), h.Stats().Processed)
	assert.Equal(t, uint64(1), h.Stats().Skipped)
}

func TestFileBatchSurvivesFormatError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFile(FileConfig{Path: path, Formatter: trippingFormatter{trigger: "bad"}})
	require.NoError(t, err)
	defer h.Close()

	err = h.EmitBatch([]*core.Record{
		record(core.InfoLevel, "a"),
		record(core.InfoLevel, "bad"),
		record(core.InfoLevel, "b"),
	})
	assert.Error(t, err)

	// The healthy records around the failing one still land.
	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "a\nb\n", string(data))
	assert.Equal(t, uint64(2), h.Stats().Processed)
}
