package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/nyx/internal/assistant"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAskCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <utterance>",
		Short: "Answer a single utterance and exit",
		Example: `  nyx ask "list files"
  nyx ask --stream "tell me a story"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			p := newPrinter(e.out)
			return turn(cmd.Context(), app.Assistant, p, uuid.NewString(), strings.Join(args, " "), e.flags.stream)
		},
	}
}

func newReplCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Long: `Reads one utterance per line. Commands:
  /clear    forget the conversation
  /history  show the conversation so far
  /quit     exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(e.cfg, e.logger)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			wait := app.startJanitor(ctx)
			defer wait()
			defer cancel()

			return repl(ctx, app.Assistant, newPrinter(e.out), bufio.NewScanner(e.in), e.flags.stream, e.logger)
		},
	}
}

// repl loops until /quit, end of input or cancellation. A failed turn is
// reported and the loop continues.
func repl(ctx context.Context, a *assistant.Assistant, p *printer, in *bufio.Scanner, stream bool, logger *zap.Logger) error {
	sessionID := uuid.NewString()
	logger.Debug("session started", zap.String("session", sessionID))
	p.banner(sessionID)

	for {
		p.prompt()
		if !in.Scan() {
			p.newline()
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			a.HandleClear(sessionID)
			p.note("conversation cleared")
			continue
		case "/history":
			p.history(a.HandleHistory(sessionID))
			continue
		}

		if err := turn(ctx, a, p, sessionID, line, stream); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Debug("turn failed", zap.Error(err))
		}
	}
}

// turn answers one utterance and prints the reply. Errors are printed before
// being returned.
func turn(ctx context.Context, a *assistant.Assistant, p *printer, sessionID, utterance string, stream bool) error {
	var (
		reply assistant.Reply
		err   error
	)
	if stream {
		started := false
		reply, err = a.HandleChatStream(ctx, sessionID, utterance, func(piece string) {
			if !started {
				p.replyStart()
				started = true
			}
			p.piece(piece)
		})
		if started {
			p.newline()
		}
		if err == nil && reply.Action != nil {
			p.action(reply)
		}
	} else {
		reply, err = a.HandleChat(ctx, sessionID, utterance)
		if err == nil {
			p.reply(reply)
		}
	}
	if err != nil {
		if isCancelled(err) {
			p.errorf("cancelled")
		} else {
			p.errorf("%v", err)
		}
		return fmt.Errorf("reply failed: %w", err)
	}
	return nil
}
