package main

import (
	"fmt"
	"strings"

	"videothingy/media-pipeline/internal/ffmpeg"
)

// parseTopic reads "START-END", each side HH:MM:SS, MM:SS or seconds.
func parseTopic(s string) (ffmpeg.TimeRange, error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return ffmpeg.TimeRange{}, fmt.Errorf("topic %q: expected START-END", s)
	}
	start, err := ffmpeg.ParseTimestamp(startStr)
	if err != nil {
		return ffmpeg.TimeRange{}, fmt.Errorf("topic %q: start: %w", s, err)
	}
	end, err := ffmpeg.ParseTimestamp(endStr)
	if err != nil {
		return ffmpeg.TimeRange{}, fmt.Errorf("topic %q: end: %w", s, err)
	}
	return ffmpeg.TimeRange{Start: start, End: end}, nil
}

func parseTopics(values []string) ([]ffmpeg.TimeRange, error) {
	topics := make([]ffmpeg.TimeRange, 0, len(values))
	for _, v := range values {
		t, err := parseTopic(v)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, nil
}
