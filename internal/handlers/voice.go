package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/foxxcyber/shopvoice/internal/models"
	"github.com/foxxcyber/shopvoice/internal/services"
)

// SubmitVoiceCommand runs a recognized transcript through the command pipeline
func (h *Handler) SubmitVoiceCommand(c *fiber.Ctx) error {
	var req models.VoiceCommandRequest
	if err := c.BodyParser(&req); err != nil {
		return Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return Error(c, fiber.StatusBadRequest, "transcript is required")
	}

	sess, err := h.session(c)
	if err != nil {
		return Error(c, fiber.StatusUnauthorized, err.Error())
	}

	lang := req.Lang
	if lang == "" {
		lang = h.cfg.DefaultLanguage
	}
	final := req.Final == nil || *req.Final

	result, err := sess.SubmitTranscript(c.UserContext(), req.Transcript, lang, final)
	if err != nil {
		return sessionError(c, err)
	}
	if result == nil {
		// interim transcript, nothing to do yet
		return c.Status(fiber.StatusAccepted).JSON(APIResponse{Success: true})
	}

	return Success(c, voiceResponse(result))
}

func voiceResponse(result *services.CommandResult) models.VoiceCommandResponse {
	resp := models.VoiceCommandResponse{
		Action:      result.Intent.Action,
		Item:        result.Intent.DisplayItem,
		Quantity:    result.Intent.Quantity,
		Status:      result.Status,
		Outcome:     string(result.Outcome),
		Items:       result.Items,
		Suggestions: result.Suggestions,
	}
	if result.Search != nil {
		resp.Query = &result.Search.Query
		resp.Products = result.Search.Products
	}
	return resp
}
