package translator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lingo-engine/internal/textproc"
	"lingo-engine/internal/vocab"
)

func testVocabs(t *testing.T) *vocab.Set {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.vocab")
	trg := filepath.Join(dir, "trg.vocab")
	require.NoError(t, os.WriteFile(src, []byte("hello\nworld\n"), 0o600))
	require.NoError(t, os.WriteFile(trg, []byte("hallo\nwelt\n"), 0o600))
	set, err := vocab.LoadSet([]string{src, trg})
	require.NoError(t, err)
	return set
}

// upperEngine translates by upper-casing tokens. Counts Init calls so tests
// can assert one initialization per worker.
type upperEngine struct {
	mu        sync.Mutex
	initCalls int
}

func (e *upperEngine) Init() error {
	e.mu.Lock()
	e.initCalls++
	e.mu.Unlock()
	return nil
}

func (e *upperEngine) Translate(segments []textproc.Segment) ([]string, error) {
	outs := make([]string, len(segments))
	for i, seg := range segments {
		outs[i] = strings.ToUpper(strings.Join(seg, " "))
	}
	return outs, nil
}

func (e *upperEngine) inits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initCalls
}

// gatedEngine blocks every Translate call until released.
type gatedEngine struct {
	upperEngine
	release chan struct{}
}

func newGatedEngine() *gatedEngine {
	return &gatedEngine{release: make(chan struct{})}
}

func (e *gatedEngine) Translate(segments []textproc.Segment) ([]string, error) {
	<-e.release
	return e.upperEngine.Translate(segments)
}

// failingEngine always errors.
type failingEngine struct{ upperEngine }

func (e *failingEngine) Translate([]textproc.Segment) ([]string, error) {
	return nil, errors.New("model exploded")
}

// initFailEngine refuses to initialize.
type initFailEngine struct{ upperEngine }

func (e *initFailEngine) Init() error {
	return errors.New("bad weights")
}

// memoryCache is an in-memory ResponseCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, text string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[text]
	return payload, ok
}

func (c *memoryCache) Put(_ context.Context, text string, payload []byte) {
	c.mu.Lock()
	c.entries[text] = payload
	c.mu.Unlock()
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// countingProcessor wraps the default segmenter and counts invocations.
type countingProcessor struct {
	mu    sync.Mutex
	calls int
	inner textproc.LineSegmenter
}

func (p *countingProcessor) Process(text string) ([]textproc.Segment, []textproc.SourceRange) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.inner.Process(text)
}

func (p *countingProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func syncService(t *testing.T, capacity int64, eng Engine) *Service {
	t.Helper()
	svc, err := New(Config{
		Workers:       0,
		CapacityBytes: capacity,
		Vocabs:        testVocabs(t),
		NewEngine:     func(DeviceID, *vocab.Set) Engine { return eng },
	})
	require.NoError(t, err)
	return svc
}
