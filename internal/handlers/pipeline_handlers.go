package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/ffmpeg"
	"videothingy/media-pipeline/internal/middleware"
	"videothingy/media-pipeline/internal/utils"
)

type extractAudioRequest struct {
	VideoPath string `json:"videoPath" validate:"required"`
	OutputDir string `json:"outputDir" validate:"required"`
}

type detectSilenceRequest struct {
	AudioPath string `json:"audioPath" validate:"required"`
}

// Topics are checked per range here; an empty list is left to the segmenter.
type segmentRequest struct {
	VideoPath string             `json:"videoPath" validate:"required"`
	AudioPath string             `json:"audioPath" validate:"required"`
	Topics    []ffmpeg.TimeRange `json:"topics" validate:"dive"`
	OutputDir string             `json:"outputDir" validate:"required"`
}

type burnSubtitlesRequest struct {
	VideoPath    string `json:"videoPath" validate:"required"`
	SubtitlePath string `json:"subtitlePath" validate:"required"`
	AudioPath    string `json:"audioPath" validate:"required"`
	OutputPath   string `json:"outputPath" validate:"required"`
}

// ExtractAudioLegacy serves the flat contract of the original service:
// {audioPath} on success, {error} with an error status otherwise.
// POST /extract-audio
func (h *ApplicationHandler) ExtractAudioLegacy(c *fiber.Ctx) error {
	var req extractAudioRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse request body"})
	}
	req.VideoPath = utils.SanitizePath(req.VideoPath)
	req.OutputDir = utils.SanitizePath(req.OutputDir)

	stem, err := h.Pipeline.ExtractAudio(c.UserContext(), req.VideoPath, req.OutputDir, middleware.RequestID(c))
	if err != nil {
		h.Logger.WithError(err).WithField("video", req.VideoPath).Error("Audio extraction failed")
		return c.Status(statusForError(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"audioPath": stem})
}

// ExtractAudio extracts the audio track of a video.
// POST /api/v1/audio/extract
func (h *ApplicationHandler) ExtractAudio(c *fiber.Ctx) error {
	var req extractAudioRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	req.VideoPath = utils.SanitizePath(req.VideoPath)
	req.OutputDir = utils.SanitizePath(req.OutputDir)
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithValidationErrors(c, err)
	}

	requestID := middleware.RequestID(c)
	stem, err := h.Pipeline.ExtractAudio(c.UserContext(), req.VideoPath, req.OutputDir, requestID)
	if err != nil {
		h.Logger.WithError(err).WithField("request_id", requestID).Error("Audio extraction failed")
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"audioPath": stem})
}

// DetectSilence lists the silent intervals of an extracted audio track.
// POST /api/v1/silence/detect
func (h *ApplicationHandler) DetectSilence(c *fiber.Ctx) error {
	var req detectSilenceRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	req.AudioPath = utils.SanitizePath(req.AudioPath)
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithValidationErrors(c, err)
	}

	intervals, err := h.Pipeline.DetectSilence(c.UserContext(), req.AudioPath)
	if err != nil {
		h.Logger.WithError(err).WithField("audio", req.AudioPath).Error("Silence detection failed")
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"intervals": intervals})
}

// Segment cuts one clip per topic range.
// POST /api/v1/segments
func (h *ApplicationHandler) Segment(c *fiber.Ctx) error {
	var req segmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	req.VideoPath = utils.SanitizePath(req.VideoPath)
	req.AudioPath = utils.SanitizePath(req.AudioPath)
	req.OutputDir = utils.SanitizePath(req.OutputDir)
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithValidationErrors(c, err)
	}

	segments, err := h.Pipeline.SegmentByTimestamps(c.UserContext(), req.VideoPath, req.AudioPath, req.Topics, req.OutputDir)
	if err != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{"video": req.VideoPath, "topics": len(req.Topics)}).Error("Segmentation failed")
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"segments": segments})
}

// BurnSubtitles renders hard subtitles into a new video file.
// POST /api/v1/subtitles/burn
func (h *ApplicationHandler) BurnSubtitles(c *fiber.Ctx) error {
	var req burnSubtitlesRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	req.VideoPath = utils.SanitizePath(req.VideoPath)
	req.SubtitlePath = utils.SanitizePath(req.SubtitlePath)
	req.AudioPath = utils.SanitizePath(req.AudioPath)
	req.OutputPath = utils.SanitizePath(req.OutputPath)
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithValidationErrors(c, err)
	}

	if err := h.Pipeline.BurnSubtitles(c.UserContext(), req.VideoPath, req.SubtitlePath, req.AudioPath, req.OutputPath); err != nil {
		h.Logger.WithError(err).WithField("output", req.OutputPath).Error("Subtitle burn failed")
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"outputPath": req.OutputPath})
}
