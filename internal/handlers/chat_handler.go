package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/limbahku/backend/internal/models"
	"github.com/limbahku/backend/internal/services"
)

type ChatHandler struct {
	assistant *services.AssistantService
}

func NewChatHandler(assistant *services.AssistantService) *ChatHandler {
	return &ChatHandler{assistant: assistant}
}

// Chat answers a user message with the in-app assistant. The assistant
// always produces a reply, so this endpoint only fails on bad input.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	reply := h.assistant.Reply(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(reply))
}
