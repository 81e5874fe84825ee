package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"videothingy/media-pipeline/internal/ffmpeg"
)

func newExtractAudioCommand(ctx *commandContext) *cobra.Command {
	var videoPath, outputDir, jobID string

	cmd := &cobra.Command{
		Use:   "extract-audio",
		Short: "Extract the audio track of a video as mp3",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			stem, err := newProcessor(cfg, log).ExtractAudio(cmd.Context(), videoPath, outputDir, jobID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), stem+".mp3")
			return nil
		},
	}
	cmd.Flags().StringVar(&videoPath, "video", "", "Source video file")
	cmd.Flags().StringVar(&outputDir, "out", ".", "Directory for the extracted audio")
	cmd.Flags().StringVar(&jobID, "job-id", "", "Suffix for intermediate file names")
	_ = cmd.MarkFlagRequired("video")
	return cmd
}

func newDetectSilenceCommand(ctx *commandContext) *cobra.Command {
	var audioStem string

	cmd := &cobra.Command{
		Use:   "detect-silence",
		Short: "List silent intervals of an extracted audio track",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			intervals, err := newProcessor(cfg, log).DetectSilence(cmd.Context(), strings.TrimSuffix(audioStem, ".mp3"))
			if err != nil {
				return err
			}
			if len(intervals) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No silence detected")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSilenceTable(intervals))
			return nil
		},
	}
	cmd.Flags().StringVar(&audioStem, "audio", "", "Audio path, with or without the .mp3 extension")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var videoPath, audioStem, outputDir string
	var topicFlags []string

	cmd := &cobra.Command{
		Use:   "segment",
		Short: "Cut one clip per --topic START-END range",
		RunE: func(cmd *cobra.Command, args []string) error {
			topics, err := parseTopics(topicFlags)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			segments, err := newProcessor(cfg, log).SegmentByTimestamps(cmd.Context(), videoPath, strings.TrimSuffix(audioStem, ".mp3"), topics, outputDir)
			if err != nil {
				return err
			}
			for _, s := range segments {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&videoPath, "video", "", "Source video file")
	cmd.Flags().StringVar(&audioStem, "audio", "", "Extracted audio path, with or without .mp3")
	cmd.Flags().StringVar(&outputDir, "out", ".", "Directory for the clips")
	cmd.Flags().StringArrayVar(&topicFlags, "topic", nil, "Clip range START-END (repeatable), e.g. 00:01:00-00:02:30")
	_ = cmd.MarkFlagRequired("video")
	_ = cmd.MarkFlagRequired("audio")
	return cmd
}

func newBurnSubtitlesCommand(ctx *commandContext) *cobra.Command {
	var videoPath, subtitlePath, audioStem, outputPath string

	cmd := &cobra.Command{
		Use:   "burn-subtitles",
		Short: "Render a subtitle file into the video frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			if err := newProcessor(cfg, log).BurnSubtitles(cmd.Context(), videoPath, subtitlePath, strings.TrimSuffix(audioStem, ".mp3"), outputPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&videoPath, "video", "", "Source video file")
	cmd.Flags().StringVar(&subtitlePath, "subs", "", "Subtitle file (SRT, ASS, ...)")
	cmd.Flags().StringVar(&audioStem, "audio", "", "Extracted audio path, with or without .mp3")
	cmd.Flags().StringVar(&outputPath, "out", "", "Output video path")
	for _, name := range []string{"video", "subs", "audio", "out"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "probe <file>",
		Short: "Print the duration of a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log, err := ctx.logger(os.Stderr)
			if err != nil {
				return err
			}
			processor := newProcessor(cfg, log)
			if full {
				metadata, err := processor.ProbeMetadata(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(metadata)
			}
			d, err := processor.ProbeDuration(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%.3fs)\n", ffmpeg.FormatTime(d.Seconds()), d.Seconds())
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Print the full ffprobe format and stream metadata as JSON")
	return cmd
}
