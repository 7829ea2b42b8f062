// Package parallel provides chunked parallel execution for intra-batch
// gradient accumulation.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled    bool // whether parallel execution is enabled
	NumWorkers int  // number of worker goroutines to use
	MinChunk   int  // minimum items per chunk to avoid goroutine overhead
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:    n > 1,
		NumWorkers: n,
		MinChunk:   16,
	}
}

// Chunks splits [0, n) into contiguous half-open ranges. With
// parallelism disabled, or n too small to be worth splitting, a single
// range covering everything is returned. Chunk boundaries depend only
// on n and cfg, so callers can reduce per-chunk results in a fixed
// order regardless of execution order.
func Chunks(n int, cfg Config) [][2]int {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*cfg.MinChunk {
		return [][2]int{{0, n}}
	}

	size := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunk)
	chunks := make([][2]int, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		chunks = append(chunks, [2]int{start, min(start+size, n)})
	}
	return chunks
}

// Run executes f(i, start, end) for every chunk, concurrently when
// enabled and there is more than one chunk. f must not assume any
// execution order.
func Run(chunks [][2]int, cfg Config, f func(i, start, end int)) {
	if !cfg.Enabled || len(chunks) <= 1 {
		for i, c := range chunks {
			f(i, c[0], c[1])
		}
		return
	}

	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i, start, end int) {
			defer wg.Done()
			f(i, start, end)
		}(i, c[0], c[1])
	}
	wg.Wait()
}
