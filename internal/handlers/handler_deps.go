package handlers

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"videothingy/media-pipeline/internal/db"
	"videothingy/media-pipeline/internal/ffmpeg"
	"videothingy/media-pipeline/internal/jobs"
	"videothingy/media-pipeline/internal/worker"
)

var validate = validator.New()

// JobSubmitter queues asynchronous jobs. *worker.Dispatcher implements it.
type JobSubmitter interface {
	SubmitJob(ctx context.Context, job worker.Job) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Pipeline   jobs.Pipeline
	Dispatcher JobSubmitter
	Store      db.Store
	Logger     *logrus.Logger
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(pipeline jobs.Pipeline, dispatcher JobSubmitter, store db.Store, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Pipeline:   pipeline,
		Dispatcher: dispatcher,
		Store:      store,
		Logger:     logger,
	}
}

// statusForError maps pipeline and job errors to an HTTP status.
func statusForError(err error) int {
	var verr *ffmpeg.ValidationError
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest
	case errors.Is(err, db.ErrJobNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, worker.ErrQueueFull), errors.Is(err, worker.ErrStopped):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
