package ffmpeg

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSilence_PairedMarkers(t *testing.T) {
	t.Parallel()

	text := "[silencedetect @ 0x1] silence_start: 2.0\n" +
		"[silencedetect @ 0x1] silence_end: 5.0 | silence_duration: 3.0\n"
	got := ParseSilence(text)
	want := []SilenceInterval{{Start: 2, End: 5, Duration: 3}}
	if len(got) != len(want) || got[0] != want[0] {
		t.Fatalf("unexpected intervals: %+v", got)
	}
}

func TestParseSilence_TrailingOpenStartDropped(t *testing.T) {
	t.Parallel()

	text := "silence_start: 1.5\nsilence_end: 7 | silence_duration: 5.5\nsilence_start: 20.25\n"
	got := ParseSilence(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 interval, got %+v", got)
	}
	if got[0].Start != 1.5 || got[0].End != 7 {
		t.Fatalf("unexpected interval: %+v", got[0])
	}
}

func TestParseSilence_UnpairedEndIgnored(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"silence_end: 3.0 | silence_duration: 3.0",
		"silence_start: 10",
		"silence_end: 16 | silence_duration: 6",
		"silence_end: 30 | silence_duration: 1",
	}, "\n")
	got := ParseSilence(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 interval, got %+v", got)
	}
	if got[0] != (SilenceInterval{Start: 10, End: 16, Duration: 6}) {
		t.Fatalf("unexpected interval: %+v", got[0])
	}
}

func TestParseSilence_OrderAndMissingDuration(t *testing.T) {
	t.Parallel()

	text := "size=N/A time=00:00:01\nsilence_start: 0\nsilence_end: 6.5\nnoise\nsilence_start: 12\nsilence_end: 18 | silence_duration: 6\n"
	got := ParseSilence(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %+v", got)
	}
	if got[0].Duration != 6.5 {
		t.Fatalf("expected computed duration 6.5, got %v", got[0].Duration)
	}
	if got[0].Start > got[1].Start {
		t.Fatalf("expected intervals in marker order, got %+v", got)
	}
	for _, iv := range got {
		if iv.End-iv.Start != iv.Duration {
			t.Fatalf("duration mismatch in %+v", iv)
		}
	}
}

func TestParseSilence_Empty(t *testing.T) {
	t.Parallel()

	if got := ParseSilence(""); len(got) != 0 {
		t.Fatalf("expected no intervals, got %+v", got)
	}
}

func TestDetectSilence_CommandAndParse(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stem := filepath.Join(dir, "audio")
	touch(t, stem+".mp3")

	runner := &fakeRunner{fn: func(_ context.Context, _ string, _ []string) (Result, error) {
		return Result{Stderr: "silence_start: 2.0\nsilence_end: 5.0 | silence_duration: 3.0\n"}, nil
	}}
	p := New(runner, Settings{}, nil)

	got, err := p.DetectSilence(context.Background(), stem)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(got) != 1 || got[0] != (SilenceInterval{Start: 2, End: 5, Duration: 3}) {
		t.Fatalf("unexpected intervals: %+v", got)
	}

	calls := runner.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(calls))
	}
	args := calls[0].args
	if argValue(args, "-i") != stem+".mp3" {
		t.Fatalf("unexpected input: %v", args)
	}
	if argValue(args, "-af") != "silencedetect=noise=-20dB:d=5" {
		t.Fatalf("unexpected filter: %q", argValue(args, "-af"))
	}
	if argValue(args, "-f") != "null" || args[len(args)-1] != "-" {
		t.Fatalf("expected media output to be discarded: %v", args)
	}
}

func TestDetectSilence_ToolFailureCarriesStderr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stem := filepath.Join(dir, "audio")
	touch(t, stem+".mp3")

	runner := &fakeRunner{fn: func(_ context.Context, name string, args []string) (Result, error) {
		return Result{Stderr: "Invalid data found"}, &ExternalToolError{Tool: name, Args: args, ExitCode: 1, Stderr: "Invalid data found", Err: errors.New("exit status 1")}
	}}
	p := New(runner, Settings{}, nil)

	_, err := p.DetectSilence(context.Background(), stem)
	var toolErr *ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ExternalToolError, got %v", err)
	}
	if toolErr.Stderr != "Invalid data found" {
		t.Fatalf("expected stderr to be preserved, got %q", toolErr.Stderr)
	}
}

func TestDetectSilence_CloseTrailingAtProbedDuration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stem := filepath.Join(dir, "audio")
	touch(t, stem+".mp3")

	runner := &fakeRunner{fn: func(_ context.Context, name string, _ []string) (Result, error) {
		if name == "ffprobe" {
			return Result{Stdout: `{"format":{"duration":"30.000000"}}`}, nil
		}
		return Result{Stderr: "silence_start: 24\n"}, nil
	}}
	p := New(runner, Settings{CloseTrailingSilence: true}, nil)

	got, err := p.DetectSilence(context.Background(), stem)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(got) != 1 || got[0] != (SilenceInterval{Start: 24, End: 30, Duration: 6}) {
		t.Fatalf("unexpected intervals: %+v", got)
	}
}

func TestDetectSilence_MissingAudio(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	p := New(runner, Settings{}, nil)
	_, err := p.DetectSilence(context.Background(), filepath.Join(t.TempDir(), "nope"))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(runner.Calls()) != 0 {
		t.Fatalf("expected no invocations")
	}
}
