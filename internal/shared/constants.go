package shared

import "time"

// Scheduling Configuration
const (
	DefaultNice      = 20
	MaxBatchSegments = 8
	// Queue holds twice as many batches as there are workers so producers
	// rarely block while every worker is busy translating.
	QueueDepthFactor = 2
)

// Id Configuration
const (
	PublicIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	PublicIDLength   = 12
)

// Cache Configuration
const (
	ResponseCacheTTL = 30 * time.Minute
)

// History Configuration
const (
	HistoryFlushInterval = 1 * time.Minute
	HistoryRetryDelay    = 5 * time.Second
	MaxFlushRetries      = 3
)

// Server Configuration
const (
	DefaultShutdownTimeout = 10 * time.Second
)
