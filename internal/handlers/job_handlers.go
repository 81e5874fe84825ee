package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/db"
	"videothingy/media-pipeline/internal/ffmpeg"
	"videothingy/media-pipeline/internal/jobs"
	"videothingy/media-pipeline/internal/middleware"
	"videothingy/media-pipeline/internal/utils"
	"videothingy/media-pipeline/internal/worker"
)

// submitJobRequest selects the job kind with Type; PROCESS_VIDEO is the
// default. Which paths are required depends on the kind.
type submitJobRequest struct {
	Type         string             `json:"type" validate:"omitempty,oneof=PROCESS_VIDEO EXTRACT_AUDIO DETECT_SILENCE SEGMENT BURN_SUBTITLES"`
	VideoPath    string             `json:"videoPath"`
	AudioPath    string             `json:"audioPath"`
	OutputDir    string             `json:"outputDir"`
	OutputPath   string             `json:"outputPath"`
	Topics       []ffmpeg.TimeRange `json:"topics" validate:"omitempty,dive"`
	SubtitlePath string             `json:"subtitlePath"`
}

func (r *submitJobRequest) sanitize() {
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = jobs.TypeProcessVideo
	}
	r.VideoPath = utils.SanitizePath(r.VideoPath)
	r.AudioPath = utils.SanitizePath(r.AudioPath)
	r.OutputDir = utils.SanitizePath(r.OutputDir)
	r.OutputPath = utils.SanitizePath(r.OutputPath)
	r.SubtitlePath = utils.SanitizePath(r.SubtitlePath)
}

func requireFields(fields map[string]string) error {
	for _, name := range []string{"videoPath", "audioPath", "outputDir", "outputPath", "subtitlePath"} {
		if v, ok := fields[name]; ok && v == "" {
			return &ffmpeg.ValidationError{Field: name, Message: "path is required"}
		}
	}
	return nil
}

// newJob builds the job for req.Type, checking the paths that kind needs.
func (h *ApplicationHandler) newJob(req submitJobRequest, jobID string) (worker.Job, error) {
	switch req.Type {
	case jobs.TypeExtractAudio:
		if err := requireFields(map[string]string{"videoPath": req.VideoPath, "outputDir": req.OutputDir}); err != nil {
			return nil, err
		}
		return jobs.NewExtractAudioJob(h.Pipeline, h.Logger, jobID, req.VideoPath, req.OutputDir), nil
	case jobs.TypeDetectSilence:
		if err := requireFields(map[string]string{"audioPath": req.AudioPath}); err != nil {
			return nil, err
		}
		return jobs.NewDetectSilenceJob(h.Pipeline, h.Logger, jobID, req.AudioPath), nil
	case jobs.TypeSegment:
		if err := requireFields(map[string]string{"videoPath": req.VideoPath, "audioPath": req.AudioPath, "outputDir": req.OutputDir}); err != nil {
			return nil, err
		}
		if len(req.Topics) == 0 {
			return nil, &ffmpeg.ValidationError{Field: "topics", Message: "no valid topics found to segment the video"}
		}
		return jobs.NewSegmentJob(h.Pipeline, h.Logger, jobID, req.VideoPath, req.AudioPath, req.Topics, req.OutputDir), nil
	case jobs.TypeBurnSubtitles:
		if err := requireFields(map[string]string{
			"videoPath":    req.VideoPath,
			"subtitlePath": req.SubtitlePath,
			"audioPath":    req.AudioPath,
			"outputPath":   req.OutputPath,
		}); err != nil {
			return nil, err
		}
		return jobs.NewBurnSubtitlesJob(h.Pipeline, h.Logger, jobID, req.VideoPath, req.SubtitlePath, req.AudioPath, req.OutputPath), nil
	default:
		if err := requireFields(map[string]string{"videoPath": req.VideoPath, "outputDir": req.OutputDir}); err != nil {
			return nil, err
		}
		return jobs.NewProcessVideoJob(h.Pipeline, h.Logger, jobID, req.VideoPath, req.OutputDir, req.Topics, req.SubtitlePath), nil
	}
}

// SubmitJob queues a pipeline job. The request id becomes the job id.
// POST /api/v1/jobs
func (h *ApplicationHandler) SubmitJob(c *fiber.Ctx) error {
	var req submitJobRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Cannot parse request body")
	}
	req.sanitize()
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithValidationErrors(c, err)
	}

	jobID := middleware.RequestID(c)
	job, err := h.newJob(req, jobID)
	if err != nil {
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}
	if err := h.Dispatcher.SubmitJob(c.UserContext(), job); err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Failed to submit job")
		return utils.RespondWithError(c, statusForError(err), err.Error())
	}

	h.Logger.WithFields(logrus.Fields{"job_id": jobID, "job_type": job.Type()}).Info("Job accepted")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"jobId": jobID, "type": job.Type()})
}

// GetJobStatus retrieves the status of a specific processing job.
// GET /api/v1/jobs/:jobId
func (h *ApplicationHandler) GetJobStatus(c *fiber.Ctx) error {
	jobIDStr := c.Params("jobId")
	jobID, err := uuid.Parse(jobIDStr)
	if err != nil {
		h.Logger.Warnf("Invalid job ID format: %s", jobIDStr)
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	job, err := h.Store.GetJob(c.UserContext(), jobID.String())
	if errors.Is(err, db.ErrJobNotFound) {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
	}
	if err != nil {
		h.Logger.WithError(err).WithField("job_id", jobID).Error("Error fetching job")
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not retrieve job status")
	}

	h.Logger.Debugf("Retrieved status for job ID: %s. Status: %s", jobID, job.Status)
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}
