package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/zadescoxp/Sahayak/internal/auth"
	"github.com/zadescoxp/Sahayak/internal/config"
	"github.com/zadescoxp/Sahayak/internal/enrich"
	"github.com/zadescoxp/Sahayak/internal/logger"
	"github.com/zadescoxp/Sahayak/internal/markup"
	"github.com/zadescoxp/Sahayak/internal/media"
	"github.com/zadescoxp/Sahayak/internal/record"
	"github.com/zadescoxp/Sahayak/internal/remote"
	"github.com/zadescoxp/Sahayak/internal/session"
	"github.com/zadescoxp/Sahayak/internal/transcript"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive conversation session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.SetLevel(cfg.Log.Level)

			store, err := media.NewStore(cfg.Media.Dir)
			if err != nil {
				return err
			}

			creds := auth.Static(cfg.Backend.APIKey)
			backend := remote.NewOpenAI(cfg.Backend, store)
			log := transcript.New()
			enricher := enrich.New(log, backend, creds)
			orch := session.New(log, backend, creds, enricher)
			recorder := record.New(fileDevice{}, backend, creds, orch.SetInput)

			defer enricher.Wait()
			return runChatLoop(cmd, log, orch, recorder, store)
		},
	}
}

func runChatLoop(cmd *cobra.Command, log *transcript.Log, orch *session.Orchestrator, recorder *record.Recorder, store *media.Store) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintln(out, "Type a message, or: /image <path>, /record <wav>, /stop, /send, /quit")
	fmt.Fprint(out, "> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return nil

		case strings.HasPrefix(line, "/image "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/image "))
			if err := submitImage(ctx, orch, store, path); err != nil {
				fmt.Fprintln(out, "image:", err)
			}
			printLatest(out, log)

		case strings.HasPrefix(line, "/record "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/record "))
			if err := recorder.Start(withAudioPath(ctx, path)); err != nil {
				fmt.Fprintln(out, "record:", err)
			}

		case line == "/stop":
			if err := recorder.Stop(ctx); err != nil {
				fmt.Fprintln(out, "stop:", err)
			} else if buf := orch.Input(); buf != "" {
				fmt.Fprintf(out, "transcribed: %s\n", buf)
			}

		case line == "/send":
			if err := orch.SubmitUserTurn(ctx, orch.Input(), nil); err != nil {
				fmt.Fprintln(out, "send:", err)
			}
			printLatest(out, log)

		default:
			if err := orch.SubmitUserTurn(ctx, line, nil); err != nil {
				fmt.Fprintln(out, "send:", err)
			}
			printLatest(out, log)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func submitImage(ctx context.Context, orch *session.Orchestrator, store *media.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ref, err := store.Put(data, ".jpg")
	if err != nil {
		return err
	}
	return orch.SubmitUserTurn(ctx, "", &session.Attachment{Data: data, Ref: ref})
}

// printLatest renders the assistant's newest reply, if the last entry is one.
func printLatest(out io.Writer, log *transcript.Log) {
	snap := log.Snapshot()
	if len(snap) == 0 {
		return
	}
	last := snap[len(snap)-1]
	if last.Role != transcript.RoleAssistant {
		return
	}
	fmt.Fprintln(out, markup.Render(last.Text))
	if last.ImageRef != "" {
		fmt.Fprintln(out, "[image]", last.ImageRef)
	}
	if last.AudioRef != "" {
		fmt.Fprintln(out, "[audio]", last.AudioRef)
	}
}

type audioPathKey struct{}

func withAudioPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, audioPathKey{}, path)
}

// fileDevice is the CLI's stand-in capture device: it streams a wav file in
// fixed-size chunks. Real microphone capture is a platform concern outside
// this core.
type fileDevice struct{}

func (fileDevice) Acquire(ctx context.Context) (record.Stream, error) {
	path, _ := ctx.Value(audioPathKey{}).(string)
	if path == "" {
		return nil, fmt.Errorf("no audio file given")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := &fileStream{ch: make(chan []byte), done: make(chan struct{})}
	go s.read(f)
	return s, nil
}

type fileStream struct {
	ch        chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *fileStream) Chunks() <-chan []byte { return s.ch }

func (s *fileStream) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *fileStream) read(f *os.File) {
	defer close(s.ch)
	defer f.Close()
	buf := make([]byte, 4096)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.ch <- chunk:
			case <-s.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}
