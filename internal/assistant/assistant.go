// Package assistant is the transport-facing runtime: it classifies each
// utterance, sends tasks to the dispatcher and everything else to the
// decoding engine, and keeps per-session chat history.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/Cyclone1070/nyx/internal/decode"
	"github.com/Cyclone1070/nyx/internal/dispatch"
	"github.com/Cyclone1070/nyx/internal/intent"
	"github.com/Cyclone1070/nyx/internal/session"
	"go.uber.org/zap"
)

// FallbackReply is returned for chat when no model is loaded.
const FallbackReply = "I'm here to help! What would you like to know?"

type classifier interface {
	Classify(utterance string) intent.Intent
}

type dispatcher interface {
	Dispatch(ctx context.Context, in intent.Intent) dispatch.Result
}

type detokenizer interface {
	Decode(ids []int) string
	DecodeToken(id int) string
}

// Options control generation and request deadlines.
type Options struct {
	Strategy decode.Strategy
	Params   decode.Params
	Timeout  time.Duration // zero disables
}

// Reply answers one utterance. Action is set for tasks; Finish for chat
// replies produced by the model.
type Reply struct {
	Intent intent.Intent
	Text   string
	Action *dispatch.Result
	Finish decode.FinishReason
}

// Assistant is safe for concurrent use across sessions.
type Assistant struct {
	sessions   *session.Store
	classifier classifier
	dispatcher dispatcher
	engine     *decode.Engine
	tok        detokenizer
	opts       Options
	logger     *zap.Logger
}

// New wires an assistant. engine and tok may both be nil, in which case chat
// answers with FallbackReply while tasks keep working.
func New(
	sessions *session.Store,
	cls classifier,
	disp dispatcher,
	engine *decode.Engine,
	tok detokenizer,
	opts Options,
	logger *zap.Logger,
) *Assistant {
	if sessions == nil {
		panic("sessions is required")
	}
	if cls == nil {
		panic("classifier is required")
	}
	if disp == nil {
		panic("dispatcher is required")
	}
	if (engine == nil) != (tok == nil) {
		panic("engine and tokenizer must be provided together")
	}
	if logger == nil {
		panic("logger is required")
	}
	return &Assistant{
		sessions:   sessions,
		classifier: cls,
		dispatcher: disp,
		engine:     engine,
		tok:        tok,
		opts:       opts,
		logger:     logger,
	}
}

// HandleChat answers utterance within sessionID.
func (a *Assistant) HandleChat(ctx context.Context, sessionID, utterance string) (Reply, error) {
	return a.handle(ctx, sessionID, utterance, nil)
}

// HandleChatStream is HandleChat with onToken called for every decoded
// piece of a model reply, in emission order, before the reply is returned.
// Task replies arrive whole.
func (a *Assistant) HandleChatStream(ctx context.Context, sessionID, utterance string, onToken func(string)) (Reply, error) {
	if onToken == nil {
		onToken = func(string) {}
	}
	return a.handle(ctx, sessionID, utterance, onToken)
}

// HandleClear forgets a session.
func (a *Assistant) HandleClear(sessionID string) {
	a.sessions.Clear(sessionID)
}

// HandleHistory returns a copy of a session's turns, oldest first.
func (a *Assistant) HandleHistory(sessionID string) []session.Turn {
	return a.sessions.History(sessionID)
}

func (a *Assistant) handle(ctx context.Context, sessionID, utterance string, onToken func(string)) (Reply, error) {
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	in := a.classifier.Classify(utterance)
	a.logger.Debug("classified", zap.String("session", sessionID), zap.String("tag", string(in.Tag)))

	if in.Tag.IsTask() {
		res := a.dispatcher.Dispatch(ctx, in)
		return Reply{Intent: in, Text: res.Detail, Action: &res}, nil
	}
	return a.chat(ctx, sessionID, in, utterance, onToken)
}

// chat generates a reply from the session history plus utterance. Both turns
// are appended only when generation succeeds.
func (a *Assistant) chat(ctx context.Context, sessionID string, in intent.Intent, utterance string, onToken func(string)) (Reply, error) {
	if a.engine == nil {
		if onToken != nil {
			onToken(FallbackReply)
		}
		return Reply{Intent: in, Text: FallbackReply}, nil
	}

	req, err := decode.NewRequest(a.sessions.Prompt(sessionID, utterance), a.opts.Strategy, a.opts.Params)
	if err != nil {
		return Reply{Intent: in}, err
	}

	var res decode.Result
	if onToken == nil {
		res, err = a.engine.Generate(ctx, req)
	} else {
		res, err = a.stream(ctx, req, onToken)
	}
	if err != nil {
		a.logger.Debug("generation failed", zap.String("session", sessionID), zap.Error(err))
		return Reply{Intent: in, Finish: res.Finish}, err
	}

	text := strings.TrimSpace(a.tok.Decode(res.Tokens))
	a.sessions.Append(sessionID,
		session.Turn{Role: session.RoleUser, Text: utterance},
		session.Turn{Role: session.RoleAssistant, Text: text},
	)
	return Reply{Intent: in, Text: text, Finish: res.Finish}, nil
}

func (a *Assistant) stream(ctx context.Context, req decode.Request, onToken func(string)) (decode.Result, error) {
	s, err := a.engine.Stream(ctx, req)
	if err != nil {
		return decode.Result{}, err
	}
	for id := range s.Tokens() {
		if piece := a.tok.DecodeToken(id); piece != "" {
			onToken(piece)
		}
	}
	return s.Result()
}

// RunJanitor expires idle sessions every interval until ctx is done.
func (a *Assistant) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := a.sessions.Sweep(now); n > 0 {
				a.logger.Debug("expired sessions", zap.Int("count", n))
			}
		}
	}
}
