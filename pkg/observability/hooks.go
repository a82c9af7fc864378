// Package observability provides hooks for metrics, tracing, and logging.
//
// Consumers register hooks at startup to receive events about generator
// runs without the library packages depending on a logging or metrics
// backend.
//
// # Architecture
//
//   - Hook interfaces per event category
//   - No-op default implementations
//   - Registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetGeneratorHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Generator().OnExpandStart(ctx, len(layers))
//	// ... build rules ...
//	observability.Generator().OnExpandComplete(ctx, ruleCount, manipulatorCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// Generator Hooks
// =============================================================================

// GeneratorHooks receives events from the rule generator.
type GeneratorHooks interface {
	// Layer loading events. source is a file path or "built-in".
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, layerCount int, duration time.Duration, err error)

	// Expansion events
	OnExpandStart(ctx context.Context, layerCount int)
	OnExpandComplete(ctx context.Context, ruleCount, manipulatorCount int, duration time.Duration, err error)
}

// =============================================================================
// Output Hooks
// =============================================================================

// OutputHooks receives events about the generated file on disk.
type OutputHooks interface {
	// OnWriteStart records the start of an atomic write.
	OnWriteStart(ctx context.Context, path string)

	// OnWriteComplete records a finished write.
	OnWriteComplete(ctx context.Context, path string, size int, duration time.Duration, err error)

	// OnCheck records a comparison against the file on disk.
	OnCheck(ctx context.Context, path string, changes int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGeneratorHooks is a no-op implementation of GeneratorHooks.
type NoopGeneratorHooks struct{}

func (NoopGeneratorHooks) OnLoadStart(context.Context, string)                               {}
func (NoopGeneratorHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopGeneratorHooks) OnExpandStart(context.Context, int)                                {}
func (NoopGeneratorHooks) OnExpandComplete(context.Context, int, int, time.Duration, error)  {}

// NoopOutputHooks is a no-op implementation of OutputHooks.
type NoopOutputHooks struct{}

func (NoopOutputHooks) OnWriteStart(context.Context, string)                               {}
func (NoopOutputHooks) OnWriteComplete(context.Context, string, int, time.Duration, error) {}
func (NoopOutputHooks) OnCheck(context.Context, string, int, error)                        {}

// =============================================================================
// Logging Implementation
// =============================================================================

// LogHooks implements both hook interfaces by writing debug records.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks logging to l, or to log.Default() if l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source string) {
	h.Logger.Debug("loading layers", "source", source)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source string, layerCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("loading layers failed", "source", source, "err", err)
		return
	}
	h.Logger.Debug("loaded layers", "source", source, "layers", layerCount, "duration", d)
}

func (h *LogHooks) OnExpandStart(_ context.Context, layerCount int) {
	h.Logger.Debug("expanding layers", "layers", layerCount)
}

func (h *LogHooks) OnExpandComplete(_ context.Context, ruleCount, manipulatorCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("expansion failed", "err", err)
		return
	}
	h.Logger.Debug("expanded layers", "rules", ruleCount, "manipulators", manipulatorCount, "duration", d)
}

func (h *LogHooks) OnWriteStart(_ context.Context, path string) {
	h.Logger.Debug("writing config", "path", path)
}

func (h *LogHooks) OnWriteComplete(_ context.Context, path string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("write failed", "path", path, "err", err)
		return
	}
	h.Logger.Debug("wrote config", "path", path, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCheck(_ context.Context, path string, changes int, err error) {
	h.Logger.Debug("checked config", "path", path, "changes", changes, "err", err)
}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	generatorHooks GeneratorHooks = NoopGeneratorHooks{}
	outputHooks    OutputHooks    = NoopOutputHooks{}
	hooksMu        sync.RWMutex
)

// SetGeneratorHooks registers custom generator hooks.
// This should be called once at application startup before any generator runs.
func SetGeneratorHooks(h GeneratorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		generatorHooks = h
	}
}

// SetOutputHooks registers custom output hooks.
func SetOutputHooks(h OutputHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		outputHooks = h
	}
}

// Generator returns the registered generator hooks.
func Generator() GeneratorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return generatorHooks
}

// Output returns the registered output hooks.
func Output() OutputHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return outputHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	generatorHooks = NoopGeneratorHooks{}
	outputHooks = NoopOutputHooks{}
}
