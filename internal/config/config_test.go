package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kristofer/tinybc/internal/logging"
)

func TestDefaultMatchesVMDefaults(t *testing.T) {
	s := Default()
	require.Equal(t, 256, s.StackSize)
	require.Equal(t, 64, s.MaxFrames)
	require.False(t, s.Trace)
	require.Equal(t, logging.Warn, s.LogLevel)
}

func TestApplyEnvOverridesUnsetFlags(t *testing.T) {
	os.Setenv("TINYBC_STACK_SIZE", "512")
	os.Setenv("TINYBC_TRACE", "1")
	defer os.Unsetenv("TINYBC_STACK_SIZE")
	defer os.Unsetenv("TINYBC_TRACE")

	s := Default().ApplyEnv(false, false, false, false)
	require.Equal(t, 512, s.StackSize)
	require.True(t, s.Trace)
	require.Equal(t, 64, s.MaxFrames) // untouched: no env var set
}

func TestApplyEnvDoesNotOverrideExplicitFlags(t *testing.T) {
	os.Setenv("TINYBC_STACK_SIZE", "512")
	defer os.Unsetenv("TINYBC_STACK_SIZE")

	s := Settings{StackSize: 1024, MaxFrames: 64, LogLevel: logging.Warn}.ApplyEnv(true, false, false, false)
	require.Equal(t, 1024, s.StackSize)
}

func TestVMConfigConversion(t *testing.T) {
	s := Settings{StackSize: 128, MaxFrames: 32, Trace: true}
	cfg := s.VMConfig()
	require.Equal(t, 128, cfg.InitialStackSize)
	require.Equal(t, 32, cfg.MaxFrames)
	require.True(t, cfg.Trace)
}
