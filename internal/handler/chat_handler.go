package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pairchat/internal/pkg/req"
	"pairchat/internal/pkg/resp"
)

// SendMessageInput is the request body for posting a message to a conversation.
type SendMessageInput struct {
	Text string `json:"text"`
}

// HandleSendMessage appends a message to the conversation log and fans it out
// to the live channels.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		chatID := chi.URLParam(r, "chatID")

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		message, customErr := deps.Chats.Send(r.Context(), identity.ID, chatID, input.Text)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": message,
		})
	}
}

// HandleChatHistory returns the full ordered message history of a conversation.
func HandleChatHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := requireIdentity(w, r, deps)
		if identity == nil {
			return
		}

		chatID := chi.URLParam(r, "chatID")

		messages, customErr := deps.Chats.History(r.Context(), identity.ID, chatID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
		})
	}
}
