package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Tuesday morning.
var fixedNow = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func newClassifier() *Classifier {
	return NewClassifier(func() time.Time { return fixedNow }, zap.NewNop())
}

func TestClassify_FileIntents(t *testing.T) {
	tests := []struct {
		utterance string
		tag       Tag
		slots     map[string]any
	}{
		{"create a file notes.txt with content hello", TagFileCreate, map[string]any{SlotPath: "notes.txt", SlotContent: "hello"}},
		{"Please make a new file called Docs/Plan.md containing \"ship it\"", TagFileCreate, map[string]any{SlotPath: "Docs/Plan.md", SlotContent: "ship it"}},
		{"create a file list.txt with content salt and pepper", TagFileCreate, map[string]any{SlotPath: "list.txt", SlotContent: "salt and pepper"}},
		{"touch empty.log", TagFileCreate, map[string]any{SlotPath: "empty.log", SlotContent: ""}},
		{"create event.ics", TagFileCreate, map[string]any{SlotPath: "event.ics", SlotContent: ""}},
		{"delete ../../etc/passwd", TagFileDelete, map[string]any{SlotPath: "../../etc/passwd"}},
		{"remove the file old.txt.", TagFileDelete, map[string]any{SlotPath: "old.txt"}},
		{"read the file docs/readme.md", TagFileRead, map[string]any{SlotPath: "docs/readme.md"}},
		{"cat main.go", TagFileRead, map[string]any{SlotPath: "main.go"}},
		{"show me the contents of notes.txt", TagFileRead, map[string]any{SlotPath: "notes.txt"}},
		{"list files", TagFileList, map[string]any{SlotPath: "."}},
		{"list files in src", TagFileList, map[string]any{SlotPath: "src"}},
		{"show me the files", TagFileList, map[string]any{SlotPath: "."}},
		{"what files are in this directory?", TagFileList, map[string]any{SlotPath: "."}},
		{"ls docs", TagFileList, map[string]any{SlotPath: "docs"}},
		{"search for report", TagFileSearch, map[string]any{SlotQuery: "report"}},
		{"find files named todo", TagFileSearch, map[string]any{SlotQuery: "todo"}},
		{"create a new folder called Projects", TagFolderCreate, map[string]any{SlotPath: "Projects"}},
		{"make a folder called notes.txt", TagFolderCreate, map[string]any{SlotPath: "notes.txt"}},
		{"mkdir -p a/b/c", TagFolderCreate, map[string]any{SlotPath: "a/b/c"}},
	}
	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := c.Classify(tt.utterance)
			assert.Equal(t, tt.tag, got.Tag)
			assert.Equal(t, tt.slots, got.Slots)
		})
	}
}

func TestClassify_SystemExec(t *testing.T) {
	tests := []struct {
		utterance string
		command   string
		args      []string
	}{
		{"run command ls -la", "ls", []string{"-la"}},
		{"execute date", "date", []string{}},
		{"run echo 'hi there'; rm -rf /", "echo", []string{"hi there;", "rm", "-rf", "/"}},
		{"execute ls `whoami`", "ls", []string{"`whoami`"}},
		{"run echo hi | cat", "echo", []string{"hi", "|", "cat"}},
	}
	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := c.Classify(tt.utterance)
			require.Equal(t, TagSystemExec, got.Tag)
			assert.Equal(t, tt.command, got.Slot(SlotCommand))
			assert.Equal(t, tt.args, got.Slots[SlotArgs])
		})
	}
}

func TestClassify_Schedule(t *testing.T) {
	tests := []struct {
		utterance string
		title     string
		when      time.Time
	}{
		{"schedule a meeting with Bob tomorrow at 3pm", "meeting with Bob", time.Date(2026, 3, 11, 15, 0, 0, 0, time.UTC)},
		{"remind me to call mom at 17:30", "call mom", time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC)},
		{"add an event called standup on 2026-04-01 at 9:15am", "standup", time.Date(2026, 4, 1, 9, 15, 0, 0, time.UTC)},
		{"remind me to stretch in 20 minutes", "stretch", time.Date(2026, 3, 10, 10, 20, 0, 0, time.UTC)},
		{"remind me to check in with Sam friday", "check in with Sam", time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC)},
		{"book an appointment tomorrow", "appointment", time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
	}
	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got := c.Classify(tt.utterance)
			require.Equal(t, TagScheduleAdd, got.Tag)
			assert.Equal(t, tt.title, got.Slot(SlotTitle))
			assert.Equal(t, tt.when.Format(time.RFC3339), got.Slot(SlotWhen))
		})
	}
}

func TestClassify_InvalidSlotsDegradeToUnknown(t *testing.T) {
	c := newClassifier()
	for _, u := range []string{
		"schedule a meeting",
		"schedule a meeting on 2026-02-30",
		"remind me to water plants yesterday",
		"open file http://evil.example/x",
		"read file \"\"",
	} {
		t.Run(u, func(t *testing.T) {
			got := c.Classify(u)
			assert.Equal(t, TagUnknown, got.Tag)
			assert.Empty(t, got.Slots)
		})
	}
}

func TestClassify_CompoundRequestsAreAmbiguous(t *testing.T) {
	c := newClassifier()
	for _, u := range []string{
		"create folder backup and add event tomorrow",
		"delete a.txt and then delete b.txt",
		"run echo hi and rm x",
		"delete a.txt and b.txt, then list files",
	} {
		t.Run(u, func(t *testing.T) {
			assert.Equal(t, TagUnknown, c.Classify(u).Tag)
		})
	}

	_, err := c.classify("create folder backup and add event tomorrow")
	assert.ErrorIs(t, err, ErrClassificationAmbiguous)
}

func TestClassify_Chat(t *testing.T) {
	c := newClassifier()
	for _, u := range []string{"hello there", "what is the capital of France?", "", "   ", "tell me a joke"} {
		t.Run(u, func(t *testing.T) {
			got := c.Classify(u)
			assert.Equal(t, TagChat, got.Tag)
			assert.False(t, got.Tag.IsTask())
		})
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	c := newClassifier()
	u := "create a file notes.txt with content hello"
	assert.Equal(t, c.Classify(u), c.Classify(u))
}

func TestTag_IsTask(t *testing.T) {
	assert.True(t, TagSystemExec.IsTask())
	assert.True(t, TagFileList.IsTask())
	assert.False(t, TagChat.IsTask())
	assert.False(t, TagUnknown.IsTask())
}

func TestValidatePath(t *testing.T) {
	_, err := validatePath("bad\x00name")
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = validatePath("file:///etc/passwd")
	var serr *SlotError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, SlotPath, serr.Slot)

	p, err := validatePath("'my notes.txt'")
	require.NoError(t, err)
	assert.Equal(t, "my notes.txt", p)
}

func TestTrimTrailer(t *testing.T) {
	assert.Equal(t, "list files", trimTrailer("list files, please!"))
	assert.Equal(t, "delete notes.txt", trimTrailer("delete notes.txt."))
	assert.Equal(t, "list files in .", trimTrailer("list files in ."))
	assert.Equal(t, "delete ../..", trimTrailer("delete ../.."))
}
