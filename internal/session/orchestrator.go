// Package session sequences conversation turns: user input enters the
// transcript immediately, exactly one remote call produces the assistant
// reply, and speech synthesis is triggered for the reply's index. Only one
// chat turn is admitted at a time so transcript order matches request order.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/qmuntal/stateless"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/logger"
	"github.com/zadescoxp/Sahayak/internal/remote"
	"github.com/zadescoxp/Sahayak/internal/transcript"
)

// FallbackReply is appended verbatim whenever a turn's remote call fails.
// Raw transport errors never reach the transcript.
const FallbackReply = "Sorry, there was an error processing your request."

// Turn states.
const (
	StateIdle     = "Idle"
	StateAwaiting = "AwaitingChatResponse"
)

const (
	triggerSubmit  = "Submit"
	triggerResolve = "Resolve"
)

// ErrBusy reports a SubmitUserTurn while another turn is in flight.
// Concurrent submissions are rejected, not queued.
var ErrBusy = errors.New("session: chat turn already in flight")

// Enricher is the slice of the enrichment coordinator the orchestrator
// needs; easy to fake in tests.
type Enricher interface {
	RequestAudio(ctx context.Context, index int, text string)
	AnalyzeImage(ctx context.Context, token string, image []byte) (analysis, imageRef string, err error)
}

// Attachment is an image selected for a user turn: the raw bytes sent for
// analysis plus an optional preview reference shown on the user message.
type Attachment struct {
	Data []byte
	Ref  string
}

// Orchestrator drives the per-turn state machine.
type Orchestrator struct {
	log      *transcript.Log
	backend  remote.Backend
	creds    auth.CredentialSource
	enricher Enricher

	mu    sync.Mutex
	fsm   *stateless.StateMachine
	input string
}

// New creates an idle orchestrator writing into log.
func New(log *transcript.Log, backend remote.Backend, creds auth.CredentialSource, enricher Enricher) *Orchestrator {
	fsm := stateless.NewStateMachine(StateIdle)
	fsm.Configure(StateIdle).Permit(triggerSubmit, StateAwaiting)
	fsm.Configure(StateAwaiting).Permit(triggerResolve, StateIdle)

	return &Orchestrator{
		log:      log,
		backend:  backend,
		creds:    creds,
		enricher: enricher,
		fsm:      fsm,
	}
}

// State returns the current turn state.
func (o *Orchestrator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fsm.MustState().(string)
}

// SetInput replaces the pending input buffer. Transcription results arrive
// through here.
func (o *Orchestrator) SetInput(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.input = text
}

// Input returns the pending input buffer.
func (o *Orchestrator) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

// SubmitUserTurn runs one full turn. Blank text with no attachment is a
// no-op: nothing is appended and no call is issued. The user message is
// observable in the transcript before the remote call starts. On success
// the assistant reply is appended and audio synthesis is requested for its
// index; on any failure the fixed fallback reply is appended instead. A
// missing credential ends the turn after the user message, with no reply at
// all.
func (o *Orchestrator) SubmitUserTurn(ctx context.Context, text string, image *Attachment) error {
	if strings.TrimSpace(text) == "" && image == nil {
		return nil
	}

	o.mu.Lock()
	if o.fsm.MustState() != StateIdle {
		o.mu.Unlock()
		return ErrBusy
	}
	if err := o.fsm.Fire(triggerSubmit); err != nil {
		o.mu.Unlock()
		return err
	}
	userMsg := transcript.Message{Role: transcript.RoleUser, Text: text}
	if image != nil {
		userMsg.ImageRef = image.Ref
	}
	o.log.Append(userMsg)
	o.input = ""
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		if err := o.fsm.Fire(triggerResolve); err != nil {
			logger.L.Error("orchestrator failed to return to idle", "error", err)
		}
		o.mu.Unlock()
	}()

	token, err := o.creds.Token(ctx)
	if err != nil {
		logger.L.Warn("user turn dropped, no credential")
		return nil
	}

	var reply string
	var imageRef string
	if image != nil {
		reply, imageRef, err = o.enricher.AnalyzeImage(ctx, token, image.Data)
	} else {
		reply, err = o.backend.ChatTurn(ctx, token, text)
	}
	if err != nil {
		logger.L.Warn("turn failed", "error", err)
		o.log.Append(transcript.Message{Role: transcript.RoleAssistant, Text: FallbackReply})
		return nil
	}

	idx := o.log.Append(transcript.Message{
		Role:     transcript.RoleAssistant,
		Text:     reply,
		ImageRef: imageRef,
	})
	o.enricher.RequestAudio(ctx, idx, reply)
	return nil
}
