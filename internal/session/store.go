// Package session keeps per-session conversation history and renders it
// into model prompts.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/Cyclone1070/nyx/internal/config"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a conversation.
type Turn struct {
	Role Role
	Text string
}

// Encoder counts tokens for the rendered-token budget.
type Encoder interface {
	Encode(text string) []int
}

// Context is the history of one session. Its mutex orders every append,
// render and clear on that session.
type Context struct {
	mu       sync.Mutex
	turns    []Turn
	lastUsed time.Time
	closed   bool
}

// Store owns every session context, keyed by session id. Sessions never
// reference the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Context

	maxTurns  int
	maxTokens int
	ttl       time.Duration
	enc       Encoder
	now       func() time.Time
}

// NewStore creates a store with limits from cfg. enc may be nil, in which
// case whitespace-separated words are counted as tokens.
func NewStore(cfg config.ContextConfig, enc Encoder) *Store {
	return &Store{
		sessions:  make(map[string]*Context),
		maxTurns:  cfg.MaxTurns,
		maxTokens: cfg.MaxContextTokens,
		ttl:       time.Duration(cfg.SessionTTLSeconds) * time.Second,
		enc:       enc,
		now:       time.Now,
	}
}

// Append adds turns to a session in order, creating it if needed, then
// evicts the oldest turns until both limits hold. The newest turn is never
// evicted.
func (s *Store) Append(id string, turns ...Turn) {
	for {
		c := s.getOrCreate(id)
		c.mu.Lock()
		if c.closed {
			// cleared between lookup and lock
			c.mu.Unlock()
			continue
		}
		c.turns = append(c.turns, turns...)
		s.evict(c)
		c.lastUsed = s.now()
		c.mu.Unlock()
		return
	}
}

// Render returns the prompt for the stored turns. A missing session renders
// as the empty string.
func (s *Store) Render(id string) string {
	c, err := s.lookup(id)
	if err != nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = s.now()
	return render(c.turns)
}

// Prompt renders the stored turns followed by a pending user utterance that
// has not been appended. Older turns are left out of the prompt when it
// would exceed the token budget; the stored history is not changed.
func (s *Store) Prompt(id, utterance string) string {
	pending := Turn{Role: RoleUser, Text: utterance}
	var turns []Turn
	if c, err := s.lookup(id); err == nil {
		c.mu.Lock()
		turns = append(make([]Turn, 0, len(c.turns)+1), c.turns...)
		c.lastUsed = s.now()
		c.mu.Unlock()
	}
	turns = append(turns, pending)
	for len(turns) > 1 && (len(turns) > s.maxTurns || s.count(render(turns)) > s.maxTokens) {
		turns = turns[1:]
	}
	return render(turns)
}

// History returns a copy of the stored turns, oldest first.
func (s *Store) History(id string) []Turn {
	c, err := s.lookup(id)
	if err != nil {
		return []Turn{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Clear destroys a session. Clearing a missing session is a no-op.
func (s *Store) Clear(id string) {
	s.mu.Lock()
	c, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	c.mu.Lock()
	c.closed = true
	c.turns = nil
	c.mu.Unlock()
}

// Sweep destroys sessions idle for longer than the configured TTL and
// returns how many were removed. A zero TTL disables expiry.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	s.mu.RLock()
	var expired []string
	for id, c := range s.sessions {
		c.mu.Lock()
		if now.Sub(c.lastUsed) > s.ttl {
			expired = append(expired, id)
		}
		c.mu.Unlock()
	}
	s.mu.RUnlock()

	for _, id := range expired {
		s.Clear(id)
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) lookup(id string) (*Context, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return c, nil
}

func (s *Store) getOrCreate(id string) *Context {
	if c, err := s.lookup(id); err == nil {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sessions[id]; ok {
		return c
	}
	c := &Context{lastUsed: s.now()}
	s.sessions[id] = c
	return c
}

// evict drops oldest turns first. Caller holds c.mu.
func (s *Store) evict(c *Context) {
	for len(c.turns) > 1 && len(c.turns) > s.maxTurns {
		c.turns = c.turns[1:]
	}
	for len(c.turns) > 1 && s.count(render(c.turns)) > s.maxTokens {
		c.turns = c.turns[1:]
	}
	// release the backing array prefix once it has drifted
	if cap(c.turns) > 2*s.maxTurns+8 {
		c.turns = append([]Turn(nil), c.turns...)
	}
}

func (s *Store) count(text string) int {
	if s.enc != nil {
		return len(s.enc.Encode(text))
	}
	return len(strings.Fields(text))
}

// render formats turns as alternating "User:" and "Assistant:" lines and
// ends with an open "Assistant:" cue when the last turn is the user's.
func render(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(label(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Text)
	}
	if turns[len(turns)-1].Role == RoleUser {
		sb.WriteString("\nAssistant:")
	}
	return sb.String()
}

func label(r Role) string {
	if r == RoleAssistant {
		return "Assistant"
	}
	return "User"
}
