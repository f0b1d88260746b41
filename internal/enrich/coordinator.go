// Package enrich attaches asynchronous side effects to already-appended
// transcript entries: speech synthesis for assistant replies and image
// analysis for user-attached photos. Results flow back through the log's
// patch interface only; the coordinator never holds messages.
package enrich

import (
	"context"
	"sync"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/logger"
	"github.com/zadescoxp/Sahayak/internal/remote"
	"github.com/zadescoxp/Sahayak/internal/transcript"
)

// Coordinator issues enrichment RPCs keyed by transcript index.
type Coordinator struct {
	log     *transcript.Log
	backend remote.Backend
	creds   auth.CredentialSource

	mu      sync.Mutex
	pending map[int]struct{}
	wg      sync.WaitGroup
}

// New creates a coordinator writing into log.
func New(log *transcript.Log, backend remote.Backend, creds auth.CredentialSource) *Coordinator {
	return &Coordinator{
		log:     log,
		backend: backend,
		creds:   creds,
		pending: make(map[int]struct{}),
	}
}

// RequestAudio synthesizes speech for the entry at index and patches its
// audio reference in. A request for an index with one already in flight is
// a no-op, not a queued duplicate. Failures degrade silently: the entry
// simply keeps no audio, and a later re-request is permitted.
func (c *Coordinator) RequestAudio(ctx context.Context, index int, text string) {
	c.mu.Lock()
	if _, inFlight := c.pending[index]; inFlight {
		c.mu.Unlock()
		logger.L.Debug("audio synthesis already pending", "index", index)
		return
	}
	c.pending[index] = struct{}{}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			delete(c.pending, index)
			c.mu.Unlock()
		}()

		token, err := c.creds.Token(ctx)
		if err != nil {
			logger.L.Warn("audio synthesis skipped, no credential", "index", index)
			return
		}
		ref, err := c.backend.Synthesize(ctx, token, text)
		if err != nil {
			logger.L.Warn("audio synthesis failed", "index", index, "error", err)
			return
		}
		if err := c.log.Patch(index, transcript.Patch{AudioRef: ref}); err != nil {
			logger.L.Error("audio synthesis patch rejected", "index", index, "error", err)
		}
	}()
}

// AnalyzeImage runs the single-shot analysis call on behalf of the
// orchestrator. Failures propagate; the orchestrator owns the fallback.
func (c *Coordinator) AnalyzeImage(ctx context.Context, token string, image []byte) (string, string, error) {
	return c.backend.AnalyzeImage(ctx, token, image)
}

// Wait blocks until all in-flight enrichment work has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
