package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/nyx/internal/assistant"
	"github.com/Cyclone1070/nyx/internal/calendar"
	"github.com/Cyclone1070/nyx/internal/config"
	"github.com/Cyclone1070/nyx/internal/decode"
	"github.com/Cyclone1070/nyx/internal/dispatch"
	"github.com/Cyclone1070/nyx/internal/model/ngram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Sandbox.Root = t.TempDir()
	missing := t.TempDir()
	cfg.Model.ModelPath = filepath.Join(missing, "model.cbor")
	cfg.Model.TokenizerPath = filepath.Join(missing, "tokenizer.json")
	return cfg
}

// writeTinyModel writes a tokenizer and a unigram model that always
// predicts "hi".
func writeTinyModel(t *testing.T, cfg *config.Config) {
	t.Helper()
	dir := t.TempDir()
	tok := map[string]any{
		"vocab_size":     5,
		"special_tokens": []string{"<pad>", "<unk>", "<bos>", "<eos>"},
		"merges":         [][2]string{{"h", "i"}, {"hi", "</w>"}},
		"vocab":          map[string]int{"<pad>": 0, "<unk>": 1, "<bos>": 2, "<eos>": 3, "hi</w>": 4},
	}
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	cfg.Model.TokenizerPath = filepath.Join(dir, "tokenizer.json")
	require.NoError(t, os.WriteFile(cfg.Model.TokenizerPath, data, 0o644))

	data, err = ngram.Marshal(ngram.Artifact{
		Order:     1,
		VocabSize: 5,
		Smoothing: 0.001,
		Entries:   []ngram.Entry{{History: []int{}, Next: map[int]uint32{4: 1000}}},
	})
	require.NoError(t, err)
	cfg.Model.ModelPath = filepath.Join(dir, "model.cbor")
	require.NoError(t, os.WriteFile(cfg.Model.ModelPath, data, 0o644))

	cfg.Decoding.Strategy = "greedy"
	cfg.Decoding.MaxNewTokens = 1
}

func TestBuildApp_WithoutModelFallsBack(t *testing.T) {
	cfg := testConfig(t)
	app, err := buildApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	reply, err := app.Assistant.HandleChat(context.Background(), "s", "hello there")
	require.NoError(t, err)
	assert.Equal(t, assistant.FallbackReply, reply.Text)

	_, err = os.Stat(calendar.DefaultPath(app.Root))
	assert.NoError(t, err)
}

func TestBuildApp_TasksRunInsideRoot(t *testing.T) {
	cfg := testConfig(t)
	app, err := buildApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	reply, err := app.Assistant.HandleChat(context.Background(), "s", "create a file notes.txt with content hello")
	require.NoError(t, err)
	require.NotNil(t, reply.Action)
	assert.Equal(t, dispatch.OutcomeOK, reply.Action.Outcome)

	data, err := os.ReadFile(filepath.Join(app.Root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	reply, err = app.Assistant.HandleChat(context.Background(), "s", "delete ../outside.txt")
	require.NoError(t, err)
	assert.Equal(t, dispatch.OutcomeDenied, reply.Action.Outcome)
}

func TestBuildApp_LoadsModel(t *testing.T) {
	cfg := testConfig(t)
	writeTinyModel(t, cfg)
	app, err := buildApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	reply, err := app.Assistant.HandleChat(context.Background(), "s", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", reply.Text)
	assert.Equal(t, decode.FinishMaxLength, reply.Finish)
	assert.Len(t, app.Assistant.HandleHistory("s"), 2)
}

func TestBuildApp_BadRootFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sandbox.Root = filepath.Join(cfg.Sandbox.Root, "missing")
	_, err := buildApp(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRepl_Commands(t *testing.T) {
	cfg := testConfig(t)
	app, err := buildApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	input := "hello\n\n/history\n/clear\n/history\n/quit\nnever read\n"
	var out bytes.Buffer
	err = repl(context.Background(), app.Assistant, newPrinter(&out), bufio.NewScanner(strings.NewReader(input)), false, zap.NewNop())

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, assistant.FallbackReply)
	assert.Contains(t, text, "no history")
	assert.Contains(t, text, "conversation cleared")
}

func TestRepl_EndOfInputStops(t *testing.T) {
	cfg := testConfig(t)
	writeTinyModel(t, cfg)
	app, err := buildApp(cfg, zap.NewNop())
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	err = repl(context.Background(), app.Assistant, newPrinter(&out), bufio.NewScanner(strings.NewReader("hello\n/history")), true, zap.NewNop())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "hi")
	assert.Contains(t, out.String(), "hello")
}

func writeConfigFile(t *testing.T, cfg *config.Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "sandbox:\n  root: " + cfg.Sandbox.Root + "\n" +
		"model:\n  model_path: " + cfg.Model.ModelPath + "\n  tokenizer_path: " + cfg.Model.TokenizerPath + "\n" +
		"logging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_EventsListAndCancel(t *testing.T) {
	cfg := testConfig(t)
	path := writeConfigFile(t, cfg)

	cal, err := calendar.Open(calendar.DefaultPath(cfg.Sandbox.Root))
	require.NoError(t, err)
	soon, err := cal.Add(context.Background(), calendar.Event{Title: "dentist", When: time.Now().Add(48 * time.Hour)})
	require.NoError(t, err)
	_, err = cal.Add(context.Background(), calendar.Event{Title: "conference", When: time.Now().AddDate(0, 0, 20)})
	require.NoError(t, err)
	require.NoError(t, cal.Close())

	out, err := runRoot(t, "--config", path, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "dentist")
	assert.Contains(t, out, soon.ID)
	assert.NotContains(t, out, "conference")

	out, err = runRoot(t, "--config", path, "events", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "conference")

	_, err = runRoot(t, "--config", path, "events", "cancel", soon.ID)
	require.NoError(t, err)
	out, err = runRoot(t, "--config", path, "events")
	require.NoError(t, err)
	assert.Contains(t, out, "no events in the next 7 days")

	_, err = runRoot(t, "--config", path, "events", "cancel", soon.ID)
	assert.ErrorIs(t, err, calendar.ErrEventNotFound)
}

func TestRootCmd_Ask(t *testing.T) {
	cfg := testConfig(t)
	path := writeConfigFile(t, cfg)

	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &out)
	root.SetArgs([]string{"--config", path, "ask", "create", "folder", "docs"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "folder.create ok")
	info, err := os.Stat(filepath.Join(cfg.Sandbox.Root, "docs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRootCmd_MissingConfigFails(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd(strings.NewReader(""), &out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "nope.json"), "ask", "hi"})

	assert.Error(t, root.Execute())
}

func TestJanitorInterval(t *testing.T) {
	assert.Equal(t, time.Minute, janitorInterval(0))
	assert.Equal(t, time.Minute, janitorInterval(time.Hour))
	assert.Equal(t, 5*time.Second, janitorInterval(20*time.Second))
}
