package translator

import (
	"lingo-engine/internal/textproc"
	"lingo-engine/internal/vocab"
)

// DeviceID identifies the compute device an engine instance is bound to.
// With CPU-only inference this is simply the worker index.
type DeviceID int

// Engine is the inference collaborator. Init may be expensive (model load)
// and runs exactly once per instance, on the worker goroutine that owns it.
// Translate must return one output string per input segment.
type Engine interface {
	Init() error
	Translate(segments []textproc.Segment) ([]string, error)
}

// EngineFactory builds one uninitialized Engine bound to a device. The
// service calls it once per worker at construction time.
type EngineFactory func(device DeviceID, vocabs *vocab.Set) Engine
