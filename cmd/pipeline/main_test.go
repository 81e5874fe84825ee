package main

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/db"
	"videothingy/media-pipeline/internal/ffmpeg"
	"videothingy/media-pipeline/internal/handlers"
)

func TestParseTopic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ffmpeg.TimeRange
		wantErr bool
	}{
		{in: "00:00:00-00:00:05", want: ffmpeg.TimeRange{Start: 0, End: 5}},
		{in: "1:30-2:00", want: ffmpeg.TimeRange{Start: 90, End: 120}},
		{in: " 12.5-20 ", want: ffmpeg.TimeRange{Start: 12.5, End: 20}},
		{in: "00:01:00", wantErr: true},
		{in: "a-b", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTopic(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTopic(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseTopic(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}

	if _, err := parseTopics([]string{"0-5", "bad"}); err == nil {
		t.Error("parseTopics should fail on any bad topic")
	}
}

func TestRenderSilenceTable(t *testing.T) {
	t.Parallel()

	out := renderSilenceTable([]ffmpeg.SilenceInterval{
		{Start: 61, End: 67.5, Duration: 6.5},
		{Start: 90, End: 95, Duration: 5},
	})
	for _, want := range []string{"START", "00:01:01", "00:01:07", "6.500", "TOTAL", "11.500"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJobTable(t *testing.T) {
	t.Parallel()

	msg := "ffmpeg failed (exit 1)"
	out := renderJobTable(&db.VideoJobStatus{
		JobID:        "abc",
		JobType:      "PROCESS_VIDEO",
		Status:       db.StatusFailed,
		ErrorMessage: &msg,
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	for _, want := range []string{"abc", "PROCESS_VIDEO", "FAILED", msg, "2024-05"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "│ -") {
		t.Errorf("zero updated_at should render as '-':\n%s", out)
	}

	long := strings.Repeat("x", 3*jobValueWidth)
	out = renderJobTable(&db.VideoJobStatus{JobID: "abc", OutputDetails: []byte(long)})
	for _, line := range strings.Split(out, "\n") {
		if n := len([]rune(line)); n > jobValueWidth+20 {
			t.Fatalf("line not wrapped (%d runes): %s", n, line)
		}
	}
}

func TestNewApp_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	log := logrus.New()
	log.SetOutput(io.Discard)
	app := newApp(handlers.NewApplicationHandler(nil, nil, nil, log), log)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil || resp.StatusCode != fiber.StatusOK {
		t.Fatalf("health: %v %v", resp, err)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"status":"error"`) {
		t.Fatalf("expected error envelope, got %s", body)
	}
}

func TestRootCommand_RequiresFlags(t *testing.T) {
	t.Setenv("PIPELINE_SQLITE_PATH", t.TempDir()+"/jobs.db")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"segment", "--topic", "0-5"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "required flag") {
		t.Fatalf("expected required flag error, got %v", err)
	}
}
