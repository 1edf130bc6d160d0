package translator

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lingo-engine/internal/vocab"
)

func cachedService(t *testing.T, capacity int64, eng Engine, mc *memoryCache) (*Service, *countingProcessor) {
	t.Helper()
	proc := &countingProcessor{}
	svc, err := New(Config{
		Workers:       0,
		CapacityBytes: capacity,
		Vocabs:        testVocabs(t),
		Processor:     proc,
		NewEngine:     func(DeviceID, *vocab.Set) Engine { return eng },
		Cache:         mc,
	})
	require.NoError(t, err)
	return svc, proc
}

func TestCacheHitBypassesAdmissionAndProcessing(t *testing.T) {
	mc := newMemoryCache()
	payload, err := json.Marshal(Response{ID: "cached", Source: "hello world", Text: "CACHED"})
	require.NoError(t, err)
	mc.Put(t.Context(), "hello world", payload)

	// Capacity smaller than the input: a hit must not touch the budget.
	svc, proc := cachedService(t, 4, &upperEngine{}, mc)

	tracker := svc.Translate("hello world")
	select {
	case <-tracker.Done():
	default:
		t.Fatal("cache hit must resolve immediately")
	}
	require.Equal(t, StatusSuccess, tracker.Status())
	require.Equal(t, "CACHED", tracker.Response().Text)
	require.Equal(t, 0, proc.count())
	require.Equal(t, int64(4), svc.CapacityBytes())
}

func TestSuccessfulCompletionWrittenBack(t *testing.T) {
	mc := newMemoryCache()
	svc, _ := cachedService(t, 1000, &upperEngine{}, mc)

	tracker := svc.Translate("hello world")
	require.Equal(t, StatusSuccess, tracker.Status())

	// The write-back is fire-and-forget.
	require.Eventually(t, func() bool {
		_, ok := mc.Get(t.Context(), "hello world")
		return ok
	}, 5*time.Second, time.Millisecond)

	payload, _ := mc.Get(t.Context(), "hello world")
	var resp Response
	require.NoError(t, json.Unmarshal(payload, &resp))
	require.Equal(t, "HELLO WORLD", resp.Text)
}

func TestEngineFailureIsNeverCached(t *testing.T) {
	mc := newMemoryCache()
	svc, _ := cachedService(t, 1000, &failingEngine{}, mc)

	tracker := svc.Translate("hello world")
	_, err := tracker.Wait(waitCtx(t))
	require.NoError(t, err)
	req := tracker.request()
	require.NotNil(t, req)
	require.True(t, req.Failed())

	// Empty failure output must not shadow a later retry.
	assert.Never(t, func() bool {
		return mc.len() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)

	// A retry after the engine recovers sees a miss, not the stale failure.
	svc2, _ := cachedService(t, 1000, &upperEngine{}, mc)
	retry := svc2.Translate("hello world")
	require.Equal(t, "HELLO WORLD", retry.Response().Text)
}
