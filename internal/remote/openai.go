package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/zadescoxp/Sahayak/internal/config"
	"github.com/zadescoxp/Sahayak/internal/media"
)

const analysisPrompt = "Describe this image and explain what it shows. " +
	"If it is a prescription or medical document, summarize its contents clearly."

// OpenAI implements Backend against an OpenAI-compatible API. Synthesized
// audio and analyzed images are persisted through the media store so the
// transcript only carries references.
type OpenAI struct {
	cfg   config.BackendConfig
	store *media.Store
}

// NewOpenAI creates a backend client for the configured API.
func NewOpenAI(cfg config.BackendConfig, store *media.Store) *OpenAI {
	return &OpenAI{cfg: cfg, store: store}
}

// client builds a per-call client carrying the bearer token.
func (o *OpenAI) client(token string) *openai.Client {
	cfg := openai.DefaultConfig(token)
	if o.cfg.BaseURL != "" {
		cfg.BaseURL = o.cfg.BaseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (o *OpenAI) ChatTurn(ctx context.Context, token, input string) (string, error) {
	resp, err := o.client(token).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: chat turn: %v", ErrTransportFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat turn: empty choices", ErrTransportFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, token, text string) (string, error) {
	resp, err := o.client(token).CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(o.cfg.SpeechModel),
		Input: text,
		Voice: openai.SpeechVoice(o.cfg.SpeechVoice),
	})
	if err != nil {
		return "", fmt.Errorf("%w: speech synthesis: %v", ErrTransportFailure, err)
	}
	defer resp.Close()
	data, err := io.ReadAll(resp)
	if err != nil {
		return "", fmt.Errorf("%w: speech synthesis read: %v", ErrTransportFailure, err)
	}
	ref, err := o.store.Put(data, ".mp3")
	if err != nil {
		return "", fmt.Errorf("%w: speech synthesis store: %v", ErrTransportFailure, err)
	}
	return ref, nil
}

func (o *OpenAI) Transcribe(ctx context.Context, token string, audio []byte) (string, error) {
	resp, err := o.client(token).CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.cfg.TranscriptionModel,
		Reader:   bytes.NewReader(audio),
		FilePath: "recording.wav",
	})
	if err != nil {
		return "", fmt.Errorf("%w: transcription: %v", ErrTransportFailure, err)
	}
	return strings.TrimSpace(resp.Text), nil
}

func (o *OpenAI) AnalyzeImage(ctx context.Context, token string, image []byte) (string, string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	resp, err := o.client(token).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: analysisPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: image analysis: %v", ErrTransportFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", "", fmt.Errorf("%w: image analysis: empty choices", ErrTransportFailure)
	}
	ref, err := o.store.Put(image, ".jpg")
	if err != nil {
		return "", "", fmt.Errorf("%w: image analysis store: %v", ErrTransportFailure, err)
	}
	return resp.Choices[0].Message.Content, ref, nil
}
