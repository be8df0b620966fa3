package recommendations

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db/models"
)

const pitchSystemPrompt = "You write one short, friendly sentence suggesting why a shopper " +
	"viewing a product might also like the listed alternatives. No emojis, no markdown."

type openAICopywriter struct {
	client *openai.Client
	model  string
}

// NewOpenAICopywriter returns a Copywriter backed by the OpenAI chat API, or
// nil when no API key is configured.
func NewOpenAICopywriter(cfg config.OpenAIConfig) Copywriter {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	return &openAICopywriter{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

func (c *openAICopywriter) ProductPitch(ctx context.Context, product *models.Product, similar []models.Product) (string, error) {
	names := make([]string, 0, len(similar))
	for _, p := range similar {
		names = append(names, p.Name)
	}
	prompt := fmt.Sprintf("Shopper is viewing %q. Alternatives: %s.", product.Name, strings.Join(names, ", "))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: 80,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: pitchSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
