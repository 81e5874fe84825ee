package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const audioExt = ".mp3"

// ExtractAudio produces an mp3 track for videoPath inside outputDir and
// returns its path without the extension.
//
// The source is first stream-copied into copied_video.<ext> to normalize
// container quirks, then the audio is extracted from that copy. A non-empty
// jobID is appended to both intermediate names. The copy is left on disk.
func (p *Processor) ExtractAudio(ctx context.Context, videoPath, outputDir, jobID string) (string, error) {
	if err := requireFile("videoPath", videoPath); err != nil {
		return "", err
	}
	if outputDir == "" {
		return "", &ValidationError{Field: "outputDir", Message: "path is required"}
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", &AudioExtractionError{VideoPath: videoPath, Err: fmt.Errorf("create output dir: %w", err)}
	}

	ext := filepath.Ext(videoPath)
	if ext == "" {
		ext = ".mp4"
	}
	copied := filepath.Join(outputDir, artifactName("copied_video", jobID)+ext)
	audioPath := filepath.Join(outputDir, artifactName("audio", jobID)+audioExt)

	entry := p.log.WithFields(logrus.Fields{
		"video":  videoPath,
		"output": outputDir,
		"job_id": jobID,
	})

	if _, err := p.runner.Run(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-c", "copy",
		copied,
	); err != nil {
		return "", &AudioExtractionError{VideoPath: videoPath, Err: err}
	}
	if err := ensureArtifact("copy video", copied); err != nil {
		return "", &AudioExtractionError{VideoPath: videoPath, Err: err}
	}

	if _, err := p.runner.Run(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", copied,
		"-map", "a",
		"-vn",
		"-c:a", p.cfg.AudioCodec,
		"-b:a", p.cfg.AudioBitrate,
		audioPath,
	); err != nil {
		return "", &AudioExtractionError{VideoPath: videoPath, Err: err}
	}
	if err := ensureArtifact("extract audio", audioPath); err != nil {
		return "", &AudioExtractionError{VideoPath: videoPath, Err: err}
	}

	entry.WithField("audio", audioPath).Info("Extracted audio track")
	return strings.TrimSuffix(audioPath, audioExt), nil
}
