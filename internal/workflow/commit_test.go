package workflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/samzong/cmg/internal/llm"
	"github.com/samzong/cmg/internal/logger"
	"github.com/samzong/cmg/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	staged    bool
	stagedErr error
	files     []string
	filesErr  error
	diff      string
	diffErr   error
	calls     []string
}

func (g *fakeGit) HasStagedChanges() (bool, error) {
	g.calls = append(g.calls, "HasStagedChanges")
	return g.staged, g.stagedErr
}

func (g *fakeGit) StagedFileNames() ([]string, error) {
	g.calls = append(g.calls, "StagedFileNames")
	return g.files, g.filesErr
}

func (g *fakeGit) StagedDiff() (string, error) {
	g.calls = append(g.calls, "StagedDiff")
	return g.diff, g.diffErr
}

type fakeLLM struct {
	message string
	err     error
	calls   int
	gotDiff string
}

func (l *fakeLLM) GenerateCommitMessage(_ context.Context, diff string) (string, error) {
	l.calls++
	l.gotDiff = diff
	return l.message, l.err
}

type fakeClipboard struct {
	ok     bool
	copied []string
}

func (c *fakeClipboard) Copy(message string) bool {
	c.copied = append(c.copied, message)
	return c.ok
}

type fakeEditor struct {
	result string
	err    error
	got    string
}

func (e *fakeEditor) Edit(message string) (string, error) {
	e.got = message
	return e.result, e.err
}

func newFlow(git GitClient, l LLMClient, clip ClipboardSink, opts CommitOptions) (*CommitFlow, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	opts.OutWriter = out
	opts.ErrWriter = errOut
	return NewCommitFlow(git, l, clip, opts), out, errOut
}

const sampleDiff = "--- a/f.txt\n+++ b/f.txt\n+hello"

func TestRun_NothingStaged(t *testing.T) {
	git := &fakeGit{staged: false}
	gen := &fakeLLM{}
	clip := &fakeClipboard{}
	flow, out, _ := newFlow(git, gen, clip, CommitOptions{})

	require.NoError(t, flow.Run(context.Background()))

	assert.Equal(t, "No staged changes to generate a commit message.\n", out.String())
	assert.Equal(t, []string{"HasStagedChanges"}, git.calls)
	assert.Zero(t, gen.calls)
	assert.Empty(t, clip.copied)
}

func TestRun_Success(t *testing.T) {
	git := &fakeGit{staged: true, files: []string{"a.txt", "b.txt"}, diff: sampleDiff}
	gen := &fakeLLM{message: "Add hello line"}
	clip := &fakeClipboard{ok: true}
	flow, out, _ := newFlow(git, gen, clip, CommitOptions{})

	require.NoError(t, flow.Run(context.Background()))

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, sampleDiff, gen.gotDiff)
	assert.Equal(t, []string{"Add hello line"}, clip.copied)

	var want bytes.Buffer
	ui.Present(&want, "Add hello line", []string{"a.txt", "b.txt"})
	assert.Equal(t, want.String(), out.String())
}

func TestRun_ClipboardFailureDoesNotFail(t *testing.T) {
	git := &fakeGit{staged: true, files: []string{"a.txt"}, diff: sampleDiff}
	clip := &fakeClipboard{ok: false}
	flow, _, _ := newFlow(git, &fakeLLM{message: "msg"}, clip, CommitOptions{})

	assert.NoError(t, flow.Run(context.Background()))
	assert.Equal(t, []string{"msg"}, clip.copied)
}

func TestRun_NoClipboard(t *testing.T) {
	git := &fakeGit{staged: true, diff: sampleDiff}
	clip := &fakeClipboard{ok: true}
	flow, _, _ := newFlow(git, &fakeLLM{message: "msg"}, clip, CommitOptions{NoClipboard: true})

	require.NoError(t, flow.Run(context.Background()))
	assert.Empty(t, clip.copied)
}

func TestRun_GenerationFailures(t *testing.T) {
	tests := []struct {
		name       string
		llm        *fakeLLM
		wantErrOut []string
	}{
		{
			name:       "missing api key",
			llm:        &fakeLLM{err: llm.ErrMissingAPIKey},
			wantErrOut: []string{"OPENAI_API_KEY environment variable is not set."},
		},
		{
			name: "provider error",
			llm: &fakeLLM{err: &llm.ProviderError{
				StatusCode: 401,
				Body:       `{"error":{"message":"bad key"}}`,
			}},
			wantErrOut: []string{"status code: 401", `Response: {"error":{"message":"bad key"}}`},
		},
		{
			name:       "empty choices",
			llm:        &fakeLLM{err: llm.ErrEmptyResponse},
			wantErrOut: []string{"no choices"},
		},
		{
			name: "empty message",
			llm:  &fakeLLM{message: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			git := &fakeGit{staged: true, files: []string{"a.txt"}, diff: sampleDiff}
			clip := &fakeClipboard{ok: true}
			flow, out, errOut := newFlow(git, tt.llm, clip, CommitOptions{})

			err := flow.Run(context.Background())
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.Equal(t, "Failed to generate commit message.\n", out.String())
			for _, want := range tt.wantErrOut {
				assert.Contains(t, errOut.String(), want)
			}
			assert.Empty(t, clip.copied)
		})
	}
}

func TestRun_ProviderErrorIsLogged(t *testing.T) {
	var logBuf bytes.Buffer
	logger.Init("warn", &logBuf)
	t.Cleanup(func() { logger.Init("warn", nil) })

	gen := &fakeLLM{err: &llm.ProviderError{StatusCode: 503, Body: "upstream down"}}
	flow, _, _ := newFlow(&fakeGit{staged: true, diff: sampleDiff}, gen, nil, CommitOptions{})

	assert.ErrorIs(t, flow.Run(context.Background()), ErrGenerationFailed)
	assert.Contains(t, logBuf.String(), "ERROR")
	assert.Contains(t, logBuf.String(), "status=503")
	assert.Contains(t, logBuf.String(), `"upstream down"`)
}

func TestRun_TransportFaultPropagates(t *testing.T) {
	fault := errors.New("failed to call LLM: connection refused")
	git := &fakeGit{staged: true, diff: sampleDiff}
	flow, out, _ := newFlow(git, &fakeLLM{err: fault}, &fakeClipboard{}, CommitOptions{})

	err := flow.Run(context.Background())
	assert.ErrorIs(t, err, fault)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
	assert.Empty(t, out.String())
}

func TestRun_GitFaults(t *testing.T) {
	boom := errors.New("boom")

	t.Run("probe", func(t *testing.T) {
		flow, _, _ := newFlow(&fakeGit{stagedErr: boom}, &fakeLLM{}, nil, CommitOptions{})
		assert.ErrorIs(t, flow.Run(context.Background()), boom)
	})

	t.Run("file list", func(t *testing.T) {
		gen := &fakeLLM{}
		flow, _, _ := newFlow(&fakeGit{staged: true, filesErr: boom}, gen, nil, CommitOptions{})
		err := flow.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to list staged files")
		assert.Zero(t, gen.calls)
	})

	t.Run("diff", func(t *testing.T) {
		gen := &fakeLLM{}
		flow, _, _ := newFlow(&fakeGit{staged: true, diffErr: boom}, gen, nil, CommitOptions{})
		err := flow.Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "failed to get git diff")
		assert.Zero(t, gen.calls)
	})
}

func TestRun_Edit(t *testing.T) {
	t.Run("edited text replaces message", func(t *testing.T) {
		git := &fakeGit{staged: true, files: []string{"a.txt"}, diff: sampleDiff}
		clip := &fakeClipboard{ok: true}
		editor := &fakeEditor{result: "feat: edited"}
		flow, out, _ := newFlow(git, &fakeLLM{message: "generated"}, clip, CommitOptions{Edit: true})
		flow.SetEditor(editor)

		require.NoError(t, flow.Run(context.Background()))
		assert.Equal(t, "generated", editor.got)
		assert.Contains(t, out.String(), "Proposed Commit Message:\nfeat: edited\n")
		assert.Equal(t, []string{"feat: edited"}, clip.copied)
	})

	t.Run("empty edit keeps generated", func(t *testing.T) {
		git := &fakeGit{staged: true, diff: sampleDiff}
		flow, out, errOut := newFlow(git, &fakeLLM{message: "generated"}, nil, CommitOptions{Edit: true})
		flow.SetEditor(&fakeEditor{result: ""})

		require.NoError(t, flow.Run(context.Background()))
		assert.Contains(t, out.String(), "Proposed Commit Message:\ngenerated\n")
		assert.Contains(t, errOut.String(), "using original message")
	})

	t.Run("editor error is fatal", func(t *testing.T) {
		boom := errors.New("editor crashed")
		git := &fakeGit{staged: true, diff: sampleDiff}
		flow, _, _ := newFlow(git, &fakeLLM{message: "generated"}, nil, CommitOptions{Edit: true})
		flow.SetEditor(&fakeEditor{err: boom})

		assert.ErrorIs(t, flow.Run(context.Background()), boom)
	})
}
