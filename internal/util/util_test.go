package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCeilDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n, d, want uint64
	}{
		{0, 1024, 0},
		{1, 1024, 1},
		{1023, 1024, 1},
		{1024, 1024, 1},
		{1025, 1024, 2},
		{4096, 1024, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CeilDiv(tt.n, tt.d), "CeilDiv(%d, %d)", tt.n, tt.d)
	}
}

func TestPointer(t *testing.T) {
	t.Parallel()

	p := Pointer(42)
	assert.Equal(t, 42, *p)
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.TraceLevel, ZerologLevel(TraceLevel))
	assert.Equal(t, zerolog.DebugLevel, ZerologLevel(DebugLevel))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(InfoLevel))
	assert.Equal(t, zerolog.WarnLevel, ZerologLevel(WarnLevel))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel(ErrorLevel))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel(99))
}

func TestZerologWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := zerologWriter{logger: zerolog.New(&buf), level: zerolog.WarnLevel}

	n, err := w.Write([]byte("fuse says hi\n"))
	assert.NoError(t, err)
	assert.Equal(t, 13, n)
	assert.Contains(t, buf.String(), `"message":"fuse says hi"`)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
