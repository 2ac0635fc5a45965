package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/colecperry/slack-bot/domain/model"
)

type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI returns nil (no error) when no API key is configured; the
// digest then runs without the highlights section.
func NewOpenAI(apiKey, modelName string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, nil
	}
	if modelName == "" {
		modelName = openai.ChatModelGPT4oMini
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{
		client: &c,
		model:  modelName,
	}, nil
}

// GenerateHighlights produces a short prose summary of a day's standups
// for the top of the digest message.
func (h *OpenAI) GenerateHighlights(dayLabel string, standups []model.Standup) (string, error) {
	var sb strings.Builder
	for _, s := range standups {
		name := s.UserName
		if name == "" {
			name = s.UserID
		}
		fmt.Fprintf(&sb, "time:%s author:%s update:%s\n", s.Timestamp, name, s.Message)
	}

	prompt := fmt.Sprintf(`The following are a team's standup updates for %s.
Write a summary of at most three sentences for the team channel:
- call out shared themes or blockers if any
- keep it factual, no praise or filler
- plain text, no markdown headers

## Updates
%s`, dayLabel, sb.String())

	response, err := h.client.Chat.Completions.New(context.TODO(), openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: h.model,
	})

	if err != nil {
		return "", fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	return response.Choices[0].Message.Content, nil
}
