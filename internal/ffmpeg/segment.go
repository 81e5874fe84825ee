package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// TimeRange is one topic window, in seconds.
type TimeRange struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtfield=Start"`
}

func validateTopics(topics []TimeRange) error {
	if len(topics) == 0 {
		return &ValidationError{Field: "topics", Message: "no valid topics found to segment the video"}
	}
	for i, t := range topics {
		if t.Start < 0 || t.End <= t.Start {
			return &ValidationError{
				Field:   "topics",
				Message: fmt.Sprintf("topic %d has invalid range [%g, %g]", i+1, t.Start, t.End),
			}
		}
		// cut points are whole seconds
		if FormatTime(t.Start) == FormatTime(t.End) {
			return &ValidationError{
				Field:   "topics",
				Message: fmt.Sprintf("topic %d range [%g, %g] is shorter than one second at %s", i+1, t.Start, t.End, FormatTime(t.Start)),
			}
		}
	}
	return nil
}

// SegmentByTimestamps cuts one clip per topic into outputDir/segment_<i>.mp4,
// taking video from videoPath and audio from audioStem+".mp3", both stream
// copied. All extractions run concurrently; the returned paths follow topic
// order. The first failure cancels the remaining extractions, and clips that
// were already written stay on disk.
func (p *Processor) SegmentByTimestamps(ctx context.Context, videoPath, audioStem string, topics []TimeRange, outputDir string) ([]string, error) {
	if err := validateTopics(topics); err != nil {
		return nil, err
	}
	if err := requireFile("videoPath", videoPath); err != nil {
		return nil, err
	}
	audioPath := audioStem + audioExt
	if err := requireFile("audioPath", audioPath); err != nil {
		return nil, err
	}
	if outputDir == "" {
		return nil, &ValidationError{Field: "outputDir", Message: "path is required"}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	segments := make([]string, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.MaxParallelSegments > 0 {
		g.SetLimit(p.cfg.MaxParallelSegments)
	}

	for i, topic := range topics {
		index := i + 1
		out := filepath.Join(outputDir, fmt.Sprintf("segment_%d.mp4", index))
		start, end := FormatTime(topic.Start), FormatTime(topic.End)
		g.Go(func() error {
			if _, err := p.runner.Run(gctx, p.cfg.FFmpegPath,
				"-i", videoPath,
				"-i", audioPath,
				"-ss", start,
				"-to", end,
				"-map", "0:v:0",
				"-map", "1:a:0",
				"-c:v", "copy",
				"-c:a", "copy",
				"-y",
				out,
			); err != nil {
				return &SegmentError{Index: index, Err: err}
			}
			if err := ensureArtifact(fmt.Sprintf("segment %d", index), out); err != nil {
				return &SegmentError{Index: index, Err: err}
			}
			segments[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		p.log.WithFields(logrus.Fields{
			"video": videoPath,
			"error": err.Error(),
		}).Error("Segmentation failed")
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"video":    videoPath,
		"segments": len(segments),
	}).Info("Segmented video by timestamps")
	return segments, nil
}
