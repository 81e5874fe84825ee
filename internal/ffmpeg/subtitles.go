package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// BurnSubtitles renders subtitlePath into the pixels of videoPath, muxes in
// audioStem+".mp3" and writes outputPath. Output length is the shorter of
// the two inputs.
func (p *Processor) BurnSubtitles(ctx context.Context, videoPath, subtitlePath, audioStem, outputPath string) error {
	if err := requireFile("videoPath", videoPath); err != nil {
		return err
	}
	if err := requireFile("subtitlePath", subtitlePath); err != nil {
		return err
	}
	audioPath := audioStem + audioExt
	if err := requireFile("audioPath", audioPath); err != nil {
		return err
	}
	if outputPath == "" {
		return &ValidationError{Field: "outputPath", Message: "path is required"}
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &SubtitleBurnError{OutputPath: outputPath, Err: err}
		}
	}

	if _, err := p.runner.Run(ctx, p.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-vf", "subtitles="+escapeFilterPath(subtitlePath),
		"-c:v", p.cfg.SubtitleVideoCodec,
		"-c:a", p.cfg.SubtitleAudioCodec,
		"-b:a", p.cfg.AudioBitrate,
		"-shortest",
		outputPath,
	); err != nil {
		return &SubtitleBurnError{OutputPath: outputPath, Err: err}
	}
	if err := ensureArtifact("burn subtitles", outputPath); err != nil {
		return &SubtitleBurnError{OutputPath: outputPath, Err: err}
	}

	p.log.WithFields(logrus.Fields{
		"video":     videoPath,
		"subtitles": subtitlePath,
		"output":    outputPath,
	}).Info("Burned subtitles into video")
	return nil
}

// escapeFilterPath quotes a path for use as a filtergraph option value.
// The filter string is parsed by ffmpeg itself, so it is escaped even though
// no shell is involved.
func escapeFilterPath(p string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
		`[`, `\[`,
		`]`, `\]`,
		`;`, `\;`,
	)
	return r.Replace(p)
}
