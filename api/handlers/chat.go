package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/sashabaranov/go-openai"

	"github.com/safevoice-app/safevoice-api/config"
)

// supportSystemPrompt frames every assistant reply. The assistant never gives
// legal or medical advice and always points the user back at the directory
// of vetted services for anything beyond general guidance.
const supportSystemPrompt = `You are the SafeVoice support assistant. You help survivors of ` +
	`gender-based violence find information and navigate the SafeVoice platform. ` +
	`Be warm, brief and non-judgmental. Never ask for identifying details. ` +
	`Do not give legal or medical advice; instead point the user to the ` +
	`support-service directory for professional help. If the user appears to be ` +
	`in immediate danger, tell them to contact local emergency services first.`

var (
	errChatDisabled = errors.New("OPENAI_API_KEY is not set")
	errChatEmpty    = errors.New("no choices in completion response")
)

// Chat handles support assistant requests
type Chat struct {
	Client *openai.Client
	Model  string
}

// NewChat builds a chat handler from the environment. Returns a disabled
// handler when no API key is configured.
func NewChat() Chat {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	if apiKey == "" {
		return Chat{Model: model}
	}
	return Chat{Client: openai.NewClient(apiKey), Model: model}
}

type chatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages" validate:"required,min=1,max=20,dive"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// SupportChatHandler forwards the conversation to the assistant and returns a
// single reply. The handler is stateless; the client sends the full history
// each turn and nothing is persisted server side.
func (c Chat) SupportChatHandler(w http.ResponseWriter, r *http.Request) {
	if c.Client == nil {
		config.ErrorStatus("support assistant is not configured", http.StatusServiceUnavailable, w, errChatDisabled)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid chat request", http.StatusBadRequest, w, err)
		return
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: supportSystemPrompt,
	})
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.Client.CreateChatCompletion(r.Context(), openai.ChatCompletionRequest{
		Model:    c.Model,
		Messages: messages,
	})
	if err != nil {
		config.ErrorStatus("support assistant request failed", http.StatusBadGateway, w, err)
		return
	}
	if len(resp.Choices) == 0 {
		config.ErrorStatus("support assistant returned no reply", http.StatusBadGateway, w, errChatEmpty)
		return
	}

	b, err := json.Marshal(chatResponse{Reply: resp.Choices[0].Message.Content})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
