package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/dvloznov/finance-copilot/internal/api/middleware"
	"github.com/dvloznov/finance-copilot/internal/assistant"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Chat is a conversation with the assistant.
type Chat interface {
	Send(ctx context.Context, text string) (assistant.Message, assistant.Reply, error)
	Messages() []assistant.Message
	BackupMode() bool
}

// Dispatcher executes intents.
type Dispatcher interface {
	Dispatch(ctx context.Context, in intent.Intent) (dispatch.Outcome, error)
}

// AssistantHandler serves the chat transcript and action execution.
type AssistantHandler struct {
	chat       Chat
	dispatcher Dispatcher
	log        zerolog.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(chat Chat, dispatcher Dispatcher, log zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{chat: chat, dispatcher: dispatcher, log: log}
}

// Routes registers the assistant endpoints on r.
func (h *AssistantHandler) Routes(r chi.Router) {
	r.Get("/messages", h.ListMessages)
	r.Post("/messages", h.SendMessage)
	r.Post("/actions", h.RunAction)
}

// ListMessages handles GET /api/assistant/messages
func (h *AssistantHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"messages":    h.chat.Messages(),
		"backup":      h.chat.BackupMode(),
		"suggestions": assistant.Suggestions,
	})
}

type sendMessageResponse struct {
	Message assistant.Message `json:"message"`
	Backup  bool              `json:"backup"`
	Outcome *dispatch.Outcome `json:"outcome,omitempty"`
}

// SendMessage handles POST /api/assistant/messages. With "dispatch": true
// the action found in the reply is executed right away.
func (h *AssistantHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Dispatch bool   `json:"dispatch"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, reply, err := h.chat.Send(r.Context(), req.Text)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		middleware.WriteError(w, http.StatusBadRequest, "Message text is required")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to send assistant message")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	resp := sendMessageResponse{Message: msg, Backup: reply.Backup}
	if req.Dispatch && reply.Intent != nil {
		outcome, err := h.dispatcher.Dispatch(r.Context(), *reply.Intent)
		if err != nil {
			h.log.Error().Err(err).Str("kind", string(reply.Intent.Kind)).Msg("Failed to dispatch assistant action")
		} else {
			resp.Outcome = &outcome
		}
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// RunAction handles POST /api/assistant/actions, executing an action button.
func (h *AssistantHandler) RunAction(w http.ResponseWriter, r *http.Request) {
	var in intent.Intent
	if !decodeJSON(w, r, &in) {
		return
	}

	outcome, err := h.dispatcher.Dispatch(r.Context(), in)
	if errors.Is(err, intent.ErrUnknownKind) {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("kind", string(in.Kind)).Msg("Failed to dispatch action")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to run action")
		return
	}

	status := http.StatusOK
	if outcome.JobID != "" {
		status = http.StatusAccepted
	}
	middleware.WriteJSON(w, status, outcome)
}
