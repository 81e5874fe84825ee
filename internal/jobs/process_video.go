package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/ffmpeg"
)

// ProcessVideoJob runs the whole pipeline for one source video: audio
// extraction, silence detection, then segmentation when topics are given
// and a subtitle render when a subtitle file is given. Stages run in order
// and the first failure ends the job.
type ProcessVideoJob struct {
	JobID        string             `json:"job_id"`
	VideoPath    string             `json:"video_path"`
	OutputDir    string             `json:"output_dir"`
	Topics       []ffmpeg.TimeRange `json:"topics,omitempty"`
	SubtitlePath string             `json:"subtitle_path,omitempty"`

	pipeline Pipeline
	log      *logrus.Logger
}

// ProcessVideoResult is the output recorded for a completed ProcessVideoJob.
type ProcessVideoResult struct {
	AudioPath     string                   `json:"audio_path"`
	Silences      []ffmpeg.SilenceInterval `json:"silences"`
	Segments      []string                 `json:"segments,omitempty"`
	SubtitledPath string                   `json:"subtitled_path,omitempty"`
}

// NewProcessVideoJob creates a ProcessVideoJob.
func NewProcessVideoJob(p Pipeline, log *logrus.Logger, jobID, videoPath, outputDir string, topics []ffmpeg.TimeRange, subtitlePath string) *ProcessVideoJob {
	return &ProcessVideoJob{
		JobID:        jobID,
		VideoPath:    videoPath,
		OutputDir:    outputDir,
		Topics:       topics,
		SubtitlePath: subtitlePath,
		pipeline:     p,
		log:          log,
	}
}

func (j *ProcessVideoJob) ID() string { return j.JobID }
func (j *ProcessVideoJob) Type() string { return TypeProcessVideo }
func (j *ProcessVideoJob) Payload() interface{} { return j }

// Execute runs the stages and returns a *ProcessVideoResult.
func (j *ProcessVideoJob) Execute(ctx context.Context) (interface{}, error) {
	entry := j.log.WithFields(logrus.Fields{"job_id": j.JobID, "video": j.VideoPath})
	entry.Info("Executing ProcessVideoJob")

	stem, err := j.pipeline.ExtractAudio(ctx, j.VideoPath, j.OutputDir, j.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: extract audio: %w", j.JobID, err)
	}
	res := &ProcessVideoResult{AudioPath: stem}

	res.Silences, err = j.pipeline.DetectSilence(ctx, stem)
	if err != nil {
		return nil, fmt.Errorf("job %s: detect silence: %w", j.JobID, err)
	}
	entry.WithField("silences", len(res.Silences)).Debug("Silence detection done")

	if len(j.Topics) > 0 {
		res.Segments, err = j.pipeline.SegmentByTimestamps(ctx, j.VideoPath, stem, j.Topics, j.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("job %s: segment: %w", j.JobID, err)
		}
	}

	if j.SubtitlePath != "" {
		out := filepath.Join(j.OutputDir, fmt.Sprintf("subtitled_%s.mp4", j.JobID))
		if err := j.pipeline.BurnSubtitles(ctx, j.VideoPath, j.SubtitlePath, stem, out); err != nil {
			return nil, fmt.Errorf("job %s: burn subtitles: %w", j.JobID, err)
		}
		res.SubtitledPath = out
	}

	entry.Info("ProcessVideoJob completed")
	return res, nil
}
