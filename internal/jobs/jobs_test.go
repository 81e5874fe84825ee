package jobs

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/ffmpeg"
)

type fakePipeline struct {
	mu    sync.Mutex
	calls []string

	extractErr error
	silenceErr error
	segmentErr error
	burnErr    error

	silences []ffmpeg.SilenceInterval
	burnOut  string
}

func (f *fakePipeline) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakePipeline) ExtractAudio(_ context.Context, videoPath, outputDir, jobID string) (string, error) {
	f.record("extract")
	if f.extractErr != nil {
		return "", f.extractErr
	}
	return filepath.Join(outputDir, "audio_"+jobID), nil
}

func (f *fakePipeline) DetectSilence(_ context.Context, audioStem string) ([]ffmpeg.SilenceInterval, error) {
	f.record("silence")
	if f.silenceErr != nil {
		return nil, f.silenceErr
	}
	if f.silences == nil {
		return []ffmpeg.SilenceInterval{}, nil
	}
	return f.silences, nil
}

func (f *fakePipeline) SegmentByTimestamps(_ context.Context, _, _ string, topics []ffmpeg.TimeRange, outputDir string) ([]string, error) {
	f.record("segment")
	if f.segmentErr != nil {
		return nil, f.segmentErr
	}
	out := make([]string, len(topics))
	for i := range topics {
		out[i] = filepath.Join(outputDir, "segment_"+string(rune('0'+i))+".mp4")
	}
	return out, nil
}

func (f *fakePipeline) BurnSubtitles(_ context.Context, _, _, _, outputPath string) error {
	f.record("burn")
	f.mu.Lock()
	f.burnOut = outputPath
	f.mu.Unlock()
	return f.burnErr
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestProcessVideoJob_AllStages(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{silences: []ffmpeg.SilenceInterval{{Start: 1, End: 7, Duration: 6}}}
	topics := []ffmpeg.TimeRange{{Start: 0, End: 5}, {Start: 5, End: 10}}
	job := NewProcessVideoJob(p, quietLogger(), "j1", "/in.mp4", "/out", topics, "/subs.srt")

	out, err := job.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	res, ok := out.(*ProcessVideoResult)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}

	if want := []string{"extract", "silence", "segment", "burn"}; !reflect.DeepEqual(p.calls, want) {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}
	if res.AudioPath != filepath.Join("/out", "audio_j1") {
		t.Fatalf("audio path = %q", res.AudioPath)
	}
	if len(res.Silences) != 1 || len(res.Segments) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if want := filepath.Join("/out", "subtitled_j1.mp4"); res.SubtitledPath != want || p.burnOut != want {
		t.Fatalf("subtitled path = %q (burn got %q), want %q", res.SubtitledPath, p.burnOut, want)
	}
}

func TestProcessVideoJob_SkipsOptionalStages(t *testing.T) {
	t.Parallel()

	p := &fakePipeline{}
	job := NewProcessVideoJob(p, quietLogger(), "j2", "/in.mp4", "/out", nil, "")

	out, err := job.Execute(context.Background())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := []string{"extract", "silence"}; !reflect.DeepEqual(p.calls, want) {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}
	res := out.(*ProcessVideoResult)
	if res.Segments != nil || res.SubtitledPath != "" {
		t.Fatalf("optional stages should not produce output: %+v", res)
	}
}

func TestProcessVideoJob_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	cause := &ffmpeg.ExternalToolError{Tool: "ffmpeg", ExitCode: 1}
	p := &fakePipeline{silenceErr: cause}
	job := NewProcessVideoJob(p, quietLogger(), "j3", "/in.mp4", "/out", []ffmpeg.TimeRange{{Start: 0, End: 1}}, "/subs.srt")

	_, err := job.Execute(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var toolErr *ffmpeg.ExternalToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ExternalToolError in chain, got %v", err)
	}
	if want := []string{"extract", "silence"}; !reflect.DeepEqual(p.calls, want) {
		t.Fatalf("calls = %v, want %v", p.calls, want)
	}
}

func TestSingleStageJobs(t *testing.T) {
	t.Parallel()

	log := quietLogger()
	p := &fakePipeline{}
	ctx := context.Background()

	out, err := NewExtractAudioJob(p, log, "a", "/in.mp4", "/out").Execute(ctx)
	if err != nil || out.(map[string]string)["audio_path"] != filepath.Join("/out", "audio_a") {
		t.Fatalf("extract: %v %v", out, err)
	}

	out, err = NewDetectSilenceJob(p, log, "b", "/out/audio_a").Execute(ctx)
	if err != nil {
		t.Fatalf("silence: %v", err)
	}
	if iv := out.(map[string]interface{})["intervals"].([]ffmpeg.SilenceInterval); len(iv) != 0 {
		t.Fatalf("expected empty intervals, got %v", iv)
	}

	out, err = NewSegmentJob(p, log, "c", "/in.mp4", "/out/audio_a", []ffmpeg.TimeRange{{Start: 0, End: 5}}, "/out").Execute(ctx)
	if err != nil || len(out.(map[string]interface{})["segments"].([]string)) != 1 {
		t.Fatalf("segment: %v %v", out, err)
	}

	p.burnErr = errors.New("boom")
	burn := NewBurnSubtitlesJob(p, log, "d", "/in.mp4", "/subs.srt", "/out/audio_a", "/out/final.mp4")
	if _, err := burn.Execute(ctx); err == nil {
		t.Fatal("expected burn failure to propagate")
	}
	if burn.Type() != TypeBurnSubtitles || burn.ID() != "d" {
		t.Fatalf("unexpected identity %s/%s", burn.Type(), burn.ID())
	}
}
