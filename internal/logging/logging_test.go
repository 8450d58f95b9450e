package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Warn)

	l.Debugf("hidden %d", 1)
	l.Infof("also hidden")
	require.Empty(t, buf.String())

	l.Warnf("visible")
	require.Contains(t, buf.String(), "[warn] visible")
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
		ok   bool
	}{
		{"debug", Debug, true},
		{"INFO", Info, true},
		{"warn", Warn, true},
		{"warning", Warn, true},
		{"error", Error, true},
		{"bogus", 0, false},
	} {
		got, ok := ParseLevel(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		if ok {
			require.Equal(t, tc.want, got, tc.in)
		}
	}
}
