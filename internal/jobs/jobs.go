package jobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/ffmpeg"
)

// Job types recorded in the status table.
const (
	TypeExtractAudio  = "EXTRACT_AUDIO"
	TypeDetectSilence = "DETECT_SILENCE"
	TypeSegment       = "SEGMENT"
	TypeBurnSubtitles = "BURN_SUBTITLES"
	TypeProcessVideo  = "PROCESS_VIDEO"
)

// Pipeline is the set of media operations jobs delegate to.
type Pipeline interface {
	ExtractAudio(ctx context.Context, videoPath, outputDir, jobID string) (string, error)
	DetectSilence(ctx context.Context, audioStem string) ([]ffmpeg.SilenceInterval, error)
	SegmentByTimestamps(ctx context.Context, videoPath, audioStem string, topics []ffmpeg.TimeRange, outputDir string) ([]string, error)
	BurnSubtitles(ctx context.Context, videoPath, subtitlePath, audioStem, outputPath string) error
}

var _ Pipeline = (*ffmpeg.Processor)(nil)

// ExtractAudioJob extracts the audio track of a video.
type ExtractAudioJob struct {
	JobID     string `json:"job_id"`
	VideoPath string `json:"video_path"`
	OutputDir string `json:"output_dir"`

	pipeline Pipeline
	log      *logrus.Logger
}

// NewExtractAudioJob creates an ExtractAudioJob.
func NewExtractAudioJob(p Pipeline, log *logrus.Logger, jobID, videoPath, outputDir string) *ExtractAudioJob {
	return &ExtractAudioJob{JobID: jobID, VideoPath: videoPath, OutputDir: outputDir, pipeline: p, log: log}
}

func (j *ExtractAudioJob) ID() string { return j.JobID }
func (j *ExtractAudioJob) Type() string { return TypeExtractAudio }
func (j *ExtractAudioJob) Payload() interface{} { return j }

// Execute runs the extraction and returns {"audio_path": stem}.
func (j *ExtractAudioJob) Execute(ctx context.Context) (interface{}, error) {
	j.log.WithFields(logrus.Fields{"job_id": j.JobID, "video": j.VideoPath}).Info("Executing ExtractAudioJob")
	stem, err := j.pipeline.ExtractAudio(ctx, j.VideoPath, j.OutputDir, j.JobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.JobID, err)
	}
	return map[string]string{"audio_path": stem}, nil
}

// DetectSilenceJob analyses an extracted audio track.
type DetectSilenceJob struct {
	JobID     string `json:"job_id"`
	AudioPath string `json:"audio_path"`

	pipeline Pipeline
	log      *logrus.Logger
}

// NewDetectSilenceJob creates a DetectSilenceJob for an audio path stem.
func NewDetectSilenceJob(p Pipeline, log *logrus.Logger, jobID, audioStem string) *DetectSilenceJob {
	return &DetectSilenceJob{JobID: jobID, AudioPath: audioStem, pipeline: p, log: log}
}

func (j *DetectSilenceJob) ID() string { return j.JobID }
func (j *DetectSilenceJob) Type() string { return TypeDetectSilence }
func (j *DetectSilenceJob) Payload() interface{} { return j }

// Execute returns {"intervals": [...]}.
func (j *DetectSilenceJob) Execute(ctx context.Context) (interface{}, error) {
	j.log.WithFields(logrus.Fields{"job_id": j.JobID, "audio": j.AudioPath}).Info("Executing DetectSilenceJob")
	intervals, err := j.pipeline.DetectSilence(ctx, j.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.JobID, err)
	}
	return map[string]interface{}{"intervals": intervals}, nil
}

// SegmentJob cuts one clip per topic.
type SegmentJob struct {
	JobID     string             `json:"job_id"`
	VideoPath string             `json:"video_path"`
	AudioPath string             `json:"audio_path"`
	Topics    []ffmpeg.TimeRange `json:"topics"`
	OutputDir string             `json:"output_dir"`

	pipeline Pipeline
	log      *logrus.Logger
}

// NewSegmentJob creates a SegmentJob.
func NewSegmentJob(p Pipeline, log *logrus.Logger, jobID, videoPath, audioStem string, topics []ffmpeg.TimeRange, outputDir string) *SegmentJob {
	return &SegmentJob{
		JobID:     jobID,
		VideoPath: videoPath,
		AudioPath: audioStem,
		Topics:    topics,
		OutputDir: outputDir,
		pipeline:  p,
		log:       log,
	}
}

func (j *SegmentJob) ID() string { return j.JobID }
func (j *SegmentJob) Type() string { return TypeSegment }
func (j *SegmentJob) Payload() interface{} { return j }

// Execute returns {"segments": [...]}.
func (j *SegmentJob) Execute(ctx context.Context) (interface{}, error) {
	j.log.WithFields(logrus.Fields{"job_id": j.JobID, "topics": len(j.Topics)}).Info("Executing SegmentJob")
	segments, err := j.pipeline.SegmentByTimestamps(ctx, j.VideoPath, j.AudioPath, j.Topics, j.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", j.JobID, err)
	}
	return map[string]interface{}{"segments": segments}, nil
}

// BurnSubtitlesJob renders hard subtitles into a video.
type BurnSubtitlesJob struct {
	JobID        string `json:"job_id"`
	VideoPath    string `json:"video_path"`
	SubtitlePath string `json:"subtitle_path"`
	AudioPath    string `json:"audio_path"`
	OutputPath   string `json:"output_path"`

	pipeline Pipeline
	log      *logrus.Logger
}

// NewBurnSubtitlesJob creates a BurnSubtitlesJob.
func NewBurnSubtitlesJob(p Pipeline, log *logrus.Logger, jobID, videoPath, subtitlePath, audioStem, outputPath string) *BurnSubtitlesJob {
	return &BurnSubtitlesJob{
		JobID:        jobID,
		VideoPath:    videoPath,
		SubtitlePath: subtitlePath,
		AudioPath:    audioStem,
		OutputPath:   outputPath,
		pipeline:     p,
		log:          log,
	}
}

func (j *BurnSubtitlesJob) ID() string { return j.JobID }
func (j *BurnSubtitlesJob) Type() string { return TypeBurnSubtitles }
func (j *BurnSubtitlesJob) Payload() interface{} { return j }

// Execute returns {"output_path": path}.
func (j *BurnSubtitlesJob) Execute(ctx context.Context) (interface{}, error) {
	j.log.WithFields(logrus.Fields{"job_id": j.JobID, "subtitles": j.SubtitlePath}).Info("Executing BurnSubtitlesJob")
	if err := j.pipeline.BurnSubtitles(ctx, j.VideoPath, j.SubtitlePath, j.AudioPath, j.OutputPath); err != nil {
		return nil, fmt.Errorf("job %s: %w", j.JobID, err)
	}
	return map[string]string{"output_path": j.OutputPath}, nil
}
