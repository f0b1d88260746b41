// Package record owns the microphone capture lifecycle: at most one active
// recording session process-wide, accumulating audio chunks and elapsed time
// until stop, then handing the finalized payload to transcription. The
// transcription result replaces the caller's pending input through the sink.
package record

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qmuntal/stateless"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/logger"
	"github.com/zadescoxp/Sahayak/internal/remote"
)

// Lifecycle states.
const (
	StateIdle         = "Idle"
	StateRecording    = "Recording"
	StateTranscribing = "Transcribing"
)

const (
	triggerStart   = "Start"
	triggerStop    = "Stop"
	triggerResolve = "Resolve"
)

var (
	// ErrDeviceUnavailable reports that microphone access could not be acquired.
	ErrDeviceUnavailable = errors.New("record: audio input unavailable")
	// ErrBusy reports a Start while a recording session is already active.
	// Starting over an active session is refused, never superseded.
	ErrBusy = errors.New("record: recording already active")
)

// Recorder is the recording state machine. Safe for concurrent use.
type Recorder struct {
	device  Device
	backend remote.Backend
	creds   auth.CredentialSource
	sink    func(text string)

	fsm *stateless.StateMachine

	mu      sync.Mutex
	stream  Stream
	elapsed atomic.Int64

	chunksMu sync.Mutex
	chunks   [][]byte

	tickStop    chan struct{}
	collectDone chan struct{}
}

// New creates an idle recorder. sink receives each successful transcription
// and is expected to replace, not append to, the pending input buffer.
func New(device Device, backend remote.Backend, creds auth.CredentialSource, sink func(text string)) *Recorder {
	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).Permit(triggerStart, StateRecording)
	fsm.Configure(StateRecording).Permit(triggerStop, StateTranscribing)
	fsm.Configure(StateTranscribing).Permit(triggerResolve, StateIdle)

	return &Recorder{
		device:  device,
		backend: backend,
		creds:   creds,
		sink:    sink,
		fsm:     fsm,
	}
}

// State returns the current lifecycle state.
func (r *Recorder) State() string {
	return r.fsm.MustState().(string)
}

// Elapsed returns whole seconds recorded in the current or last session.
func (r *Recorder) Elapsed() int64 {
	return r.elapsed.Load()
}

// Start acquires the input device and begins accumulating chunks, ticking
// the elapsed counter once per second. ErrBusy if a session is active.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != StateIdle {
		return ErrBusy
	}

	stream, err := r.device.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	if err := r.fsm.Fire(triggerStart); err != nil {
		stream.Close()
		return err
	}

	r.stream = stream
	r.elapsed.Store(0)
	r.chunksMu.Lock()
	r.chunks = nil
	r.chunksMu.Unlock()
	r.tickStop = make(chan struct{})
	r.collectDone = make(chan struct{})

	go r.collect(stream, r.collectDone)
	go r.tick(r.tickStop)

	logger.L.Info("recording started")
	return nil
}

func (r *Recorder) collect(stream Stream, done chan struct{}) {
	defer close(done)
	for chunk := range stream.Chunks() {
		if len(chunk) == 0 {
			continue
		}
		r.chunksMu.Lock()
		r.chunks = append(r.chunks, chunk)
		r.chunksMu.Unlock()
	}
}

func (r *Recorder) tick(stop chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.elapsed.Add(1)
		case <-stop:
			return
		}
	}
}

// Stop finalizes whatever was captured so far, releases the device, and runs
// transcription. A successful transcription is delivered to the sink; a
// failure leaves the sink untouched and is only logged. No-op unless the
// recorder is Recording. The recorder is Idle again when Stop returns.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.State() != StateRecording {
		return nil
	}

	close(r.tickStop)
	if err := r.stream.Close(); err != nil {
		logger.L.Warn("audio stream close failed", "error", err)
	}
	<-r.collectDone
	r.stream = nil

	r.chunksMu.Lock()
	var payload []byte
	for _, c := range r.chunks {
		payload = append(payload, c...)
	}
	r.chunks = nil
	r.chunksMu.Unlock()

	if err := r.fsm.Fire(triggerStop); err != nil {
		return err
	}
	defer func() {
		if err := r.fsm.Fire(triggerResolve); err != nil {
			logger.L.Error("recorder failed to return to idle", "error", err)
		}
	}()

	logger.L.Info("recording stopped, transcribing", "bytes", len(payload), "seconds", r.elapsed.Load())

	token, err := r.creds.Token(ctx)
	if err != nil {
		logger.L.Warn("transcription skipped, no credential")
		return nil
	}
	text, err := r.backend.Transcribe(ctx, token, payload)
	if err != nil {
		logger.L.Warn("transcription failed", "error", err)
		return nil
	}
	if r.sink != nil {
		r.sink(text)
	}
	return nil
}
