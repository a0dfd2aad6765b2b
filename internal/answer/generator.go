package answer

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/sableworks/findex/internal/models"
)

// generateTimeout is the hard wall-clock bound on one generation call. The
// backend may stream internally, but the caller sees a single string or a
// timeout error.
const generateTimeout = 5 * time.Minute

// maxPromptContent caps how much file content goes into one prompt.
const maxPromptContent = 8000

const systemPrompt = "You are a document question answering assistant. " +
	"Answer the question using only the provided document content. " +
	"If the document does not contain the answer, say the information is not available."

// Generator produces answers from file content through an OpenAI-compatible
// chat backend (a local model server in the default setup).
type Generator struct {
	client llms.Model
}

// NewGenerator creates a generator against baseURL with the given model.
// Local backends that skip authentication accept any token.
func NewGenerator(baseURL, model string) (*Generator, error) {
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken("none"),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}
	return &Generator{client: client}, nil
}

// Generate answers query from the content of one file. Backend failures and
// timeouts surface as models.ErrUpstream so the controller can move on to the
// next candidate.
func (g *Generator) Generate(ctx context.Context, query, path, content string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	if len(content) > maxPromptContent {
		// Back up to a rune boundary so the prompt never ends mid-character.
		cut := maxPromptContent
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}
	messages := []llms.MessageContent{
		{
			Role:  schema.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(systemPrompt)},
		},
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(
				fmt.Sprintf("Document: %s\n\n%s\n\nQuestion: %s", path, content, query),
			)},
		},
	}

	response, err := g.client.GenerateContent(ctx, messages, llms.WithTemperature(0.0))
	if err != nil {
		return "", fmt.Errorf("%w: generate: %v", models.ErrUpstream, err)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Content), nil
}
