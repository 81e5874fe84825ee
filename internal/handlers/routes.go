package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the health check, the flat extraction endpoint and
// the /api/v1 group on app.
func (h *ApplicationHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Media pipeline is healthy",
		})
	})

	app.Post("/extract-audio", h.ExtractAudioLegacy)

	apiV1 := app.Group("/api/v1")
	apiV1.Post("/audio/extract", h.ExtractAudio)
	apiV1.Post("/silence/detect", h.DetectSilence)
	apiV1.Post("/segments", h.Segment)
	apiV1.Post("/subtitles/burn", h.BurnSubtitles)

	jobsGroup := apiV1.Group("/jobs")
	jobsGroup.Post("", h.SubmitJob)
	jobsGroup.Get("/:jobId", h.GetJobStatus)
}
