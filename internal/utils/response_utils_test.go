package utils

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	VideoPath string `validate:"required"`
	Start     float64
	End       float64 `validate:"gtfield=Start"`
}

func TestFormatValidationErrors(t *testing.T) {
	t.Parallel()

	err := validator.New().Struct(sample{Start: 5, End: 2})
	msgs := FormatValidationErrors(err)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", msgs)
	}
	if !strings.Contains(msgs[0], "'sample.VideoPath' failed on the 'required' tag") {
		t.Errorf("unexpected message: %s", msgs[0])
	}
	if !strings.Contains(msgs[1], "(value: Start)") {
		t.Errorf("expected param in message: %s", msgs[1])
	}

	if got := FormatValidationErrors(errors.New("plain")); len(got) != 1 || got[0] != "plain" {
		t.Errorf("unexpected passthrough: %v", got)
	}
	if FormatValidationErrors(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	if got := SanitizePath("  /tmp/in.mp4\n"); got != "/tmp/in.mp4" {
		t.Fatalf("got %q", got)
	}
}
