package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// probeOutput is the part of ffprobe's JSON output we read.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration uses ffprobe to get the duration of a media file.
func (p *Processor) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	if err := requireFile("path", path); err != nil {
		return 0, err
	}

	res, err := p.runner.Run(ctx, p.cfg.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, err
	}

	var out probeOutput
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return 0, fmt.Errorf("error unmarshalling ffprobe output: %w", err)
	}
	if out.Format.Duration == "" {
		return 0, fmt.Errorf("could not retrieve duration from ffprobe output for %s", path)
	}

	seconds, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration string '%s': %w", out.Format.Duration, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// ProbeMetadata returns ffprobe's full format and stream description of path
// as decoded JSON.
func (p *Processor) ProbeMetadata(ctx context.Context, path string) (map[string]interface{}, error) {
	if err := requireFile("path", path); err != nil {
		return nil, err
	}

	res, err := p.runner.Run(ctx, p.cfg.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal([]byte(res.Stdout), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe JSON output: %w", err)
	}
	return metadata, nil
}
