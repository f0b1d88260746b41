package remote

import (
	"context"
	"errors"
)

// ErrTransportFailure normalizes every non-success status, network error, or
// malformed response from the backend. Callers never see raw transport
// errors; they test with errors.Is and degrade.
var ErrTransportFailure = errors.New("remote: transport failure")

// Backend is the authenticated channel to the inference/speech backend. The
// bearer token is produced per call by the identity collaborator. All four
// operations are single request/response; no streaming. Implementations must
// wrap every failure in ErrTransportFailure.
type Backend interface {
	// ChatTurn sends accumulated user input and returns the assistant reply.
	ChatTurn(ctx context.Context, token, input string) (string, error)
	// Synthesize converts text to speech, returning a reference to the audio.
	Synthesize(ctx context.Context, token, text string) (string, error)
	// Transcribe converts a recorded audio payload to text.
	Transcribe(ctx context.Context, token string, audio []byte) (string, error)
	// AnalyzeImage describes an image, returning the analysis text and a
	// reference to the stored image.
	AnalyzeImage(ctx context.Context, token string, image []byte) (analysis, imageRef string, err error)
}
