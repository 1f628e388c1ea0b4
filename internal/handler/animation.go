package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Suryansh777777/Mathmatika/internal/codegen"
	"github.com/Suryansh777777/Mathmatika/internal/model"
	"github.com/Suryansh777777/Mathmatika/internal/service"
	"github.com/Suryansh777777/Mathmatika/pkg/response"
)

type AnimationHandler struct {
	service   *service.AnimationService
	store     *service.JobStore
	validator *validator.Validate
}

func NewAnimationHandler(svc *service.AnimationService, store *service.JobStore, v *validator.Validate) *AnimationHandler {
	return &AnimationHandler{
		service:   svc,
		store:     store,
		validator: v,
	}
}

// Generate handles POST /api/animations/generate. Pipeline failures are part
// of the result payload, not transport errors, so the response is 200 either
// way.
func (h *AnimationHandler) Generate(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result := h.service.RenderAnimation(c.Context(), req.Concept, req.Quality)
	return response.OK(c, result)
}

// GenerateMultiple handles POST /api/animations/generate-multiple.
func (h *AnimationHandler) GenerateMultiple(c *fiber.Ctx) error {
	var req model.GenerateMultipleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	results := h.service.RenderMultiple(c.Context(), req.Concepts, req.Quality)
	return response.OK(c, fiber.Map{
		"results": results,
		"total":   len(results),
	})
}

// Active handles GET /api/animations/active.
func (h *AnimationHandler) Active(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"count": h.service.ActiveCount(),
		"jobs":  h.service.ActiveJobs(),
	})
}

// Templates handles GET /api/animations/templates.
func (h *AnimationHandler) Templates(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{
		"templates": codegen.TemplateCatalogue(),
	})
}

// Status handles GET /api/animations/:jobId.
func (h *AnimationHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.store.Get(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

func formatValidationErrors(err error) interface{} {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		errors := make(map[string]string)
		for _, e := range validationErrors {
			errors[e.Field()] = e.Tag()
		}
		return errors
	}
	return nil
}
