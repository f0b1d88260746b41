package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/remote"
	"github.com/zadescoxp/Sahayak/internal/transcript"
)

type fakeBackend struct {
	mu         sync.Mutex
	synthCalls int
	synthRef   string
	synthErr   error
	gate       chan struct{} // when set, Synthesize blocks until closed
}

func (f *fakeBackend) ChatTurn(ctx context.Context, token, input string) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeBackend) Synthesize(ctx context.Context, token, text string) (string, error) {
	f.mu.Lock()
	f.synthCalls++
	gate := f.gate
	ref, err := f.synthRef, f.synthErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return ref, err
}

func (f *fakeBackend) Transcribe(ctx context.Context, token string, audio []byte) (string, error) {
	return "", errors.New("not used")
}

func (f *fakeBackend) AnalyzeImage(ctx context.Context, token string, image []byte) (string, string, error) {
	return "", "", errors.New("not used")
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.synthCalls
}

func TestRequestAudioPatchesLog(t *testing.T) {
	log := transcript.New()
	idx := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "hello"})

	backend := &fakeBackend{synthRef: "file:///a.mp3"}
	c := New(log, backend, auth.Static("tok"))

	c.RequestAudio(context.Background(), idx, "hello")
	c.Wait()

	require.Equal(t, 1, backend.calls())
	require.Equal(t, "file:///a.mp3", log.Snapshot()[idx].AudioRef)
}

func TestRequestAudioIsIdempotentWhilePending(t *testing.T) {
	log := transcript.New()
	idx := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "hello"})

	gate := make(chan struct{})
	backend := &fakeBackend{synthRef: "file:///a.mp3", gate: gate}
	c := New(log, backend, auth.Static("tok"))

	c.RequestAudio(context.Background(), idx, "hello")
	c.RequestAudio(context.Background(), idx, "hello") // suppressed
	close(gate)
	c.Wait()

	require.Equal(t, 1, backend.calls())
	require.Equal(t, "file:///a.mp3", log.Snapshot()[idx].AudioRef)
}

func TestRequestAudioFailureLeavesNoAudioAndAllowsRetrigger(t *testing.T) {
	log := transcript.New()
	idx := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "hello"})

	backend := &fakeBackend{synthErr: remote.ErrTransportFailure}
	c := New(log, backend, auth.Static("tok"))

	c.RequestAudio(context.Background(), idx, "hello")
	c.Wait()
	require.Empty(t, log.Snapshot()[idx].AudioRef)

	backend.mu.Lock()
	backend.synthErr = nil
	backend.synthRef = "file:///retry.mp3"
	backend.mu.Unlock()

	c.RequestAudio(context.Background(), idx, "hello")
	c.Wait()

	require.Equal(t, 2, backend.calls())
	require.Equal(t, "file:///retry.mp3", log.Snapshot()[idx].AudioRef)
}

func TestRequestAudioWithoutCredentialIssuesNoRPC(t *testing.T) {
	log := transcript.New()
	idx := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "hello"})

	backend := &fakeBackend{synthRef: "file:///a.mp3"}
	c := New(log, backend, auth.Static(""))

	c.RequestAudio(context.Background(), idx, "hello")
	c.Wait()

	require.Equal(t, 0, backend.calls())
	require.Empty(t, log.Snapshot()[idx].AudioRef)
}

func TestRequestsForDifferentIndicesRunIndependently(t *testing.T) {
	log := transcript.New()
	a := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "one"})
	b := log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: "two"})

	backend := &fakeBackend{synthRef: "file:///x.mp3"}
	c := New(log, backend, auth.Static("tok"))

	c.RequestAudio(context.Background(), a, "one")
	c.RequestAudio(context.Background(), b, "two")
	c.Wait()

	require.Equal(t, 2, backend.calls())
	require.NotEmpty(t, log.Snapshot()[a].AudioRef)
	require.NotEmpty(t, log.Snapshot()[b].AudioRef)
}
