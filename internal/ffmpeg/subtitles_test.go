package ffmpeg

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestBurnSubtitles_Command(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	video := touch(t, filepath.Join(dir, "clip.mp4"))
	subs := touch(t, filepath.Join(dir, "subs.srt"))
	stem := filepath.Join(dir, "audio")
	touch(t, stem+".mp3")
	out := filepath.Join(dir, "final", "burned.mp4")

	runner := &fakeRunner{}
	p := New(runner, Settings{}, nil)

	if err := p.BurnSubtitles(context.Background(), video, subs, stem, out); err != nil {
		t.Fatalf("burn: %v", err)
	}
	calls := runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(calls))
	}
	args := calls[0].args
	if argValue(args, "-vf") != "subtitles="+escapeFilterPath(subs) {
		t.Fatalf("unexpected filter: %q", argValue(args, "-vf"))
	}
	if argValue(args, "-c:v") != "libx264" || argValue(args, "-b:a") != "192k" {
		t.Fatalf("unexpected codec policy: %v", args)
	}
	found := false
	for _, a := range args {
		if a == "-shortest" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected -shortest: %v", args)
	}
	if args[len(args)-1] != out {
		t.Fatalf("unexpected output: %v", args)
	}
}

func TestBurnSubtitles_WrapsFailures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	video := touch(t, filepath.Join(dir, "clip.mp4"))
	subs := touch(t, filepath.Join(dir, "subs.srt"))
	stem := filepath.Join(dir, "audio")
	touch(t, stem+".mp3")
	out := filepath.Join(dir, "burned.mp4")

	failing := &fakeRunner{fn: func(_ context.Context, name string, args []string) (Result, error) {
		return Result{}, &ExternalToolError{Tool: name, Args: args, ExitCode: 1, Err: errors.New("exit status 1")}
	}}
	err := New(failing, Settings{}, nil).BurnSubtitles(context.Background(), video, subs, stem, out)
	var burnErr *SubtitleBurnError
	var toolErr *ExternalToolError
	if !errors.As(err, &burnErr) || !errors.As(err, &toolErr) {
		t.Fatalf("expected SubtitleBurnError wrapping ExternalToolError, got %v", err)
	}

	silent := &fakeRunner{fn: func(context.Context, string, []string) (Result, error) {
		return Result{}, nil
	}}
	err = New(silent, Settings{}, nil).BurnSubtitles(context.Background(), video, subs, stem, out)
	var missing *ArtifactMissingError
	if !errors.As(err, &burnErr) || !errors.As(err, &missing) {
		t.Fatalf("expected SubtitleBurnError wrapping ArtifactMissingError, got %v", err)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"/tmp/subs.srt":      "/tmp/subs.srt",
		`C:\subs\a.srt`:      `C\:\\subs\\a.srt`,
		"/tmp/it's here.srt": `/tmp/it\'s here.srt`,
		"/tmp/a,b;[c].srt":   `/tmp/a\,b\;\[c\].srt`,
	}
	for in, want := range cases {
		if got := escapeFilterPath(in); got != want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", in, got, want)
		}
	}
}
