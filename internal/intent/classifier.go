package intent

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

var urlScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Classifier maps utterances to intents with deterministic pattern rules.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	now    func() time.Time
	logger *zap.Logger
}

// NewClassifier creates a classifier. now anchors relative datetimes; nil
// means time.Now.
func NewClassifier(now func() time.Time, logger *zap.Logger) *Classifier {
	if logger == nil {
		panic("logger is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Classifier{now: now, logger: logger}
}

// Classify never fails: utterances that match nothing are chat, and
// ambiguous utterances or invalid slots yield TagUnknown.
func (c *Classifier) Classify(utterance string) Intent {
	in, err := c.classify(utterance)
	if err != nil {
		c.logger.Debug("classification degraded to unknown",
			zap.String("utterance", utterance), zap.Error(err))
		return Intent{Tag: TagUnknown, Slots: map[string]any{}}
	}
	return in
}

func (c *Classifier) classify(utterance string) (Intent, error) {
	text := strings.TrimSpace(utterance)
	text = politeness.ReplaceAllString(text, "")
	text = trimTrailer(text)
	if text == "" {
		return Intent{Tag: TagChat, Slots: map[string]any{}}, nil
	}

	clauses := clauseBreak.Split(text, -1)
	taskClauses := 0
	for _, cl := range clauses {
		if _, _, ok := match(strings.TrimSpace(cl)); ok {
			taskClauses++
		}
	}
	if taskClauses > 1 {
		return Intent{}, ErrClassificationAmbiguous
	}

	tag, groups, ok := match(text)
	if !ok {
		if taskClauses > 0 {
			// only part of the utterance is a task
			return Intent{}, ErrClassificationAmbiguous
		}
		return Intent{Tag: TagChat, Slots: map[string]any{}}, nil
	}

	slots, err := c.extract(tag, groups)
	if err != nil {
		return Intent{}, err
	}
	return Intent{Tag: tag, Slots: slots}, nil
}

// match tries every rule in priority order and returns the named groups of
// the first match.
func match(text string) (Tag, map[string]string, bool) {
	for _, tag := range priority {
		for _, re := range rules[tag] {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			groups := make(map[string]string)
			for i, name := range re.SubexpNames() {
				if name != "" {
					groups[name] = m[i]
				}
			}
			return tag, groups, true
		}
	}
	return "", nil, false
}

func (c *Classifier) extract(tag Tag, g map[string]string) (map[string]any, error) {
	slots := make(map[string]any)
	switch tag {
	case TagFileCreate:
		p, err := validatePath(g[grpPath])
		if err != nil {
			return nil, err
		}
		slots[SlotPath] = p
		slots[SlotContent] = unquote(strings.TrimSpace(g[grpContent]))
	case TagFileRead, TagFileDelete, TagFolderCreate:
		p, err := validatePath(g[grpPath])
		if err != nil {
			return nil, err
		}
		slots[SlotPath] = p
	case TagFileList:
		raw := g[grpPath]
		if raw == "" {
			raw = "."
		}
		p, err := validatePath(raw)
		if err != nil {
			return nil, err
		}
		slots[SlotPath] = p
	case TagFileSearch:
		q := unquote(g[grpQuery])
		if q == "" || hasControl(q) {
			return nil, &SlotError{Slot: SlotQuery, Value: q, Reason: "empty or contains control characters"}
		}
		slots[SlotQuery] = q
	case TagSystemExec:
		argv, err := shlex.Split(g[grpLine])
		if err != nil {
			return nil, &SlotError{Slot: SlotCommand, Value: g[grpLine], Reason: err.Error()}
		}
		if len(argv) == 0 {
			return nil, &SlotError{Slot: SlotCommand, Value: g[grpLine], Reason: "no command"}
		}
		slots[SlotCommand] = argv[0]
		slots[SlotArgs] = argv[1:]
	case TagScheduleAdd:
		title, when, err := c.splitSchedule(g[grpKind], g[grpRest])
		if err != nil {
			return nil, err
		}
		slots[SlotTitle] = title
		slots[SlotWhen] = when.Format(time.RFC3339)
	}
	return slots, nil
}

// splitSchedule finds the leftmost suffix of rest that parses as a
// datetime; the words before it form the title.
func (c *Classifier) splitSchedule(kind, rest string) (string, time.Time, error) {
	words := strings.Fields(rest)
	now := c.now()
	for i, w := range words {
		if !startsWhen(w) {
			continue
		}
		when, err := parseWhen(strings.Join(words[i:], " "), now)
		if err != nil {
			continue
		}
		return title(kind, words[:i]), when, nil
	}
	return "", time.Time{}, &SlotError{Slot: SlotWhen, Value: rest, Reason: "no concrete date or time"}
}

func title(kind string, words []string) string {
	named := false
	if len(words) > 0 {
		switch strings.ToLower(words[0]) {
		case "called", "named", "titled":
			words, named = words[1:], true
		}
	}
	t := unquote(strings.Join(words, " "))
	switch {
	case kind == "" || named:
		return t
	case t == "":
		return strings.ToLower(kind)
	}
	return strings.ToLower(kind) + " " + t
}

// validatePath checks that raw is syntactically a path. Containment is
// enforced later by the sandbox.
func validatePath(raw string) (string, error) {
	p := unquote(raw)
	switch {
	case p == "":
		return "", &SlotError{Slot: SlotPath, Value: raw, Reason: "empty"}
	case strings.ContainsRune(p, 0) || hasControl(p):
		return "", &SlotError{Slot: SlotPath, Value: raw, Reason: "contains control characters"}
	case urlScheme.MatchString(p):
		return "", &SlotError{Slot: SlotPath, Value: raw, Reason: "is a URL"}
	}
	return p, nil
}

// trimTrailer drops closing punctuation and a trailing "please". A final
// period is kept when it is part of a path such as "." or "../..".
func trimTrailer(s string) string {
	for {
		t := strings.TrimRight(strings.TrimSpace(s), "!?")
		if len(t) > 1 && strings.HasSuffix(t, ".") &&
			!strings.HasSuffix(t, "..") && !strings.HasSuffix(t, "/.") && !strings.HasSuffix(t, " .") {
			t = t[:len(t)-1]
		}
		t = strings.TrimSpace(pleaseSuffix.ReplaceAllString(t, ""))
		if t == s {
			return t
		}
		s = t
	}
}

func hasControl(s string) bool {
	return strings.IndexFunc(s, unicode.IsControl) >= 0
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
