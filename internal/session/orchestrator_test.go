package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/remote"
	"github.com/zadescoxp/Sahayak/internal/transcript"
)

type fakeChat struct {
	mu        sync.Mutex
	reply     string
	err       error
	numCalls  int
	gate      chan struct{} // when set, ChatTurn blocks until closed
	lastInput string
}

func (f *fakeChat) ChatTurn(ctx context.Context, token, input string) (string, error) {
	f.mu.Lock()
	f.numCalls++
	f.lastInput = input
	gate := f.gate
	reply, err := f.reply, f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return reply, err
}

func (f *fakeChat) Synthesize(ctx context.Context, token, text string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeChat) Transcribe(ctx context.Context, token string, audio []byte) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeChat) AnalyzeImage(ctx context.Context, token string, image []byte) (string, string, error) {
	return "", "", errors.New("not used")
}

func (f *fakeChat) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.numCalls
}

type fakeEnricher struct {
	mu            sync.Mutex
	audioRequests []int
	analysis      string
	imageRef      string
	analysisErr   error
}

func (f *fakeEnricher) RequestAudio(ctx context.Context, index int, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioRequests = append(f.audioRequests, index)
}

func (f *fakeEnricher) AnalyzeImage(ctx context.Context, token string, image []byte) (string, string, error) {
	return f.analysis, f.imageRef, f.analysisErr
}

func (f *fakeEnricher) requests() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.audioRequests...)
}

func TestSubmitUserTurnFullExchange(t *testing.T) {
	log := transcript.New()
	backend := &fakeChat{reply: "Hi there"}
	enricher := &fakeEnricher{}
	o := New(log, backend, auth.Static("tok"), enricher)

	require.NoError(t, o.SubmitUserTurn(context.Background(), "Hello", nil))

	snap := log.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, transcript.RoleUser, snap[0].Role)
	require.Equal(t, "Hello", snap[0].Text)
	require.Equal(t, transcript.RoleAssistant, snap[1].Role)
	require.Equal(t, "Hi there", snap[1].Text)
	require.Equal(t, []int{1}, enricher.requests())
	require.Equal(t, StateIdle, o.State())
}

func TestSubmitBlankTurnIsNoOp(t *testing.T) {
	log := transcript.New()
	backend := &fakeChat{reply: "unused"}
	o := New(log, backend, auth.Static("tok"), &fakeEnricher{})

	require.NoError(t, o.SubmitUserTurn(context.Background(), "", nil))
	require.NoError(t, o.SubmitUserTurn(context.Background(), "   \t\n", nil))

	require.Equal(t, 0, log.Len())
	require.Equal(t, 0, backend.calls())
}

func TestSubmitClearsPendingInput(t *testing.T) {
	log := transcript.New()
	o := New(log, &fakeChat{reply: "ok"}, auth.Static("tok"), &fakeEnricher{})

	o.SetInput("Hello")
	require.NoError(t, o.SubmitUserTurn(context.Background(), o.Input(), nil))
	require.Empty(t, o.Input())
}

func TestSubmitWhileInFlightIsRejected(t *testing.T) {
	log := transcript.New()
	gate := make(chan struct{})
	backend := &fakeChat{reply: "slow", gate: gate}
	o := New(log, backend, auth.Static("tok"), &fakeEnricher{})

	done := make(chan error, 1)
	go func() { done <- o.SubmitUserTurn(context.Background(), "first", nil) }()

	require.Eventually(t, func() bool { return o.State() == StateAwaiting },
		time.Second, time.Millisecond)

	require.ErrorIs(t, o.SubmitUserTurn(context.Background(), "second", nil), ErrBusy)

	close(gate)
	require.NoError(t, <-done)
	require.Equal(t, 1, backend.calls())
	require.Equal(t, 2, log.Len()) // first turn only
}

func TestTransportFailureAppendsFallback(t *testing.T) {
	log := transcript.New()
	backend := &fakeChat{err: remote.ErrTransportFailure}
	enricher := &fakeEnricher{}
	o := New(log, backend, auth.Static("tok"), enricher)

	require.NoError(t, o.SubmitUserTurn(context.Background(), "Hello", nil))

	snap := log.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, FallbackReply, snap[1].Text)
	require.Empty(t, enricher.requests())
	require.Equal(t, StateIdle, o.State())
}

func TestMissingCredentialDropsTurnSilently(t *testing.T) {
	log := transcript.New()
	backend := &fakeChat{reply: "never"}
	o := New(log, backend, auth.Static(""), &fakeEnricher{})

	require.NoError(t, o.SubmitUserTurn(context.Background(), "Hello", nil))

	snap := log.Snapshot()
	require.Len(t, snap, 1) // user message only, no reply of any kind
	require.Equal(t, transcript.RoleUser, snap[0].Role)
	require.Equal(t, 0, backend.calls())
	require.Equal(t, StateIdle, o.State())
}

func TestImageTurnUsesAnalysis(t *testing.T) {
	log := transcript.New()
	backend := &fakeChat{}
	enricher := &fakeEnricher{analysis: "a prescription for ibuprofen", imageRef: "file:///img.jpg"}
	o := New(log, backend, auth.Static("tok"), enricher)

	att := &Attachment{Data: []byte{0xff, 0xd8}, Ref: "file:///preview.jpg"}
	require.NoError(t, o.SubmitUserTurn(context.Background(), "", att))

	snap := log.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, "file:///preview.jpg", snap[0].ImageRef)
	require.Equal(t, "a prescription for ibuprofen", snap[1].Text)
	require.Equal(t, "file:///img.jpg", snap[1].ImageRef)
	require.Equal(t, 0, backend.calls()) // analysis, not chat
	require.Equal(t, []int{1}, enricher.requests())
}

func TestImageAnalysisFailureAppendsFallback(t *testing.T) {
	log := transcript.New()
	enricher := &fakeEnricher{analysisErr: remote.ErrTransportFailure}
	o := New(log, &fakeChat{}, auth.Static("tok"), enricher)

	require.NoError(t, o.SubmitUserTurn(context.Background(), "", &Attachment{Data: []byte{1}}))

	snap := log.Snapshot()
	require.Len(t, snap, 2)
	require.Equal(t, FallbackReply, snap[1].Text)
	require.Empty(t, enricher.requests())
}
