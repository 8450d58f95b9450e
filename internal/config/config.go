// Package config resolves tinybc's small set of runtime knobs from CLI
// flags and environment variables. There is no config-file format: the
// retrieval pack carries no third-party config library to ground one on,
// and the teacher itself is flag/env-only (see DESIGN.md).
package config

import (
	"os"
	"strconv"

	"github.com/kristofer/tinybc/internal/logging"
	"github.com/kristofer/tinybc/pkg/vm"
)

// Settings holds every CLI-tunable knob, resolved with precedence
// flags > env > defaults.
type Settings struct {
	StackSize int
	MaxFrames int
	Trace     bool
	LogLevel  logging.Level
}

// Default returns tinybc's baseline settings before any flag or
// environment override is applied.
func Default() Settings {
	d := vm.DefaultConfig()
	return Settings{
		StackSize: d.InitialStackSize,
		MaxFrames: d.MaxFrames,
		Trace:     d.Trace,
		LogLevel:  logging.Warn,
	}
}

// ApplyEnv overrides any field in s that its corresponding flag did not
// set, using the matching TINYBC_* environment variable if present.
func (s Settings) ApplyEnv(stackSizeSet, maxFramesSet, traceSet, logLevelSet bool) Settings {
	if !stackSizeSet {
		if v, ok := lookupInt("TINYBC_STACK_SIZE"); ok {
			s.StackSize = v
		}
	}
	if !maxFramesSet {
		if v, ok := lookupInt("TINYBC_MAX_FRAMES"); ok {
			s.MaxFrames = v
		}
	}
	if !traceSet {
		if v, ok := os.LookupEnv("TINYBC_TRACE"); ok {
			s.Trace = v != "" && v != "0" && v != "false"
		}
	}
	if !logLevelSet {
		if v, ok := os.LookupEnv("TINYBC_LOG_LEVEL"); ok {
			if lvl, ok := logging.ParseLevel(v); ok {
				s.LogLevel = lvl
			}
		}
	}
	return s
}

func lookupInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VMConfig converts Settings into the vm.Config the interpreter consumes.
func (s Settings) VMConfig() vm.Config {
	return vm.Config{
		InitialStackSize: s.StackSize,
		MaxFrames:        s.MaxFrames,
		Trace:            s.Trace,
	}
}
