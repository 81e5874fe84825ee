package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// SilenceInterval is one span of near-silence in an audio track, in seconds.
type SilenceInterval struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[0-9]+(?:\.[0-9]+)?)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[0-9]+(?:\.[0-9]+)?)(?:\s*\|\s*silence_duration:\s*(-?[0-9]+(?:\.[0-9]+)?))?`)
)

// silenceParser pairs start and end markers. It is open while a start has
// been seen and its end has not.
type silenceParser struct {
	intervals []SilenceInterval
	pending   float64
	open      bool
}

func (sp *silenceParser) feed(line string) {
	if m := silenceStartRe.FindStringSubmatch(line); m != nil {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return
		}
		sp.pending = start
		sp.open = true
		return
	}

	m := silenceEndRe.FindStringSubmatch(line)
	if m == nil || !sp.open {
		// unpaired end markers are ignored
		return
	}
	end, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return
	}
	duration := end - sp.pending
	if m[2] != "" {
		if d, err := strconv.ParseFloat(m[2], 64); err == nil {
			duration = d
		}
	}
	sp.intervals = append(sp.intervals, SilenceInterval{Start: sp.pending, End: end, Duration: duration})
	sp.pending = 0
	sp.open = false
}

// ParseSilence extracts silence intervals from silencedetect diagnostic
// text, in the order the markers appear. A start marker left open at the
// end of the text is dropped.
func ParseSilence(text string) []SilenceInterval {
	intervals, _, _ := parseSilence(text)
	return intervals
}

func parseSilence(text string) ([]SilenceInterval, float64, bool) {
	var sp silenceParser
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		sp.feed(sc.Text())
	}
	return sp.intervals, sp.pending, sp.open
}

// DetectSilence runs silencedetect over audioStem+".mp3" and returns the
// parsed intervals. Media output is discarded; only stderr is inspected.
func (p *Processor) DetectSilence(ctx context.Context, audioStem string) ([]SilenceInterval, error) {
	audioPath := audioStem + audioExt
	if err := requireFile("audioPath", audioPath); err != nil {
		return nil, err
	}

	filter := fmt.Sprintf("silencedetect=noise=%sdB:d=%s",
		strconv.FormatFloat(p.cfg.SilenceNoiseDB, 'f', -1, 64),
		strconv.FormatFloat(p.cfg.SilenceMinDuration, 'f', -1, 64),
	)
	res, err := p.runner.Run(ctx, p.cfg.FFmpegPath,
		"-hide_banner",
		"-nostats",
		"-i", audioPath,
		"-af", filter,
		"-f", "null",
		"-",
	)
	if err != nil {
		return nil, err
	}

	intervals, pending, open := parseSilence(res.Stderr)
	if open && p.cfg.CloseTrailingSilence {
		total, err := p.ProbeDuration(ctx, audioPath)
		if err != nil {
			p.log.WithError(err).Warn("Dropping open trailing silence: duration unknown")
		} else if end := total.Seconds(); end > pending {
			intervals = append(intervals, SilenceInterval{Start: pending, End: end, Duration: end - pending})
		}
	}

	if intervals == nil {
		intervals = []SilenceInterval{}
	}
	p.log.WithFields(logrus.Fields{
		"audio":     audioPath,
		"intervals": len(intervals),
	}).Info("Silence detection finished")
	return intervals, nil
}
