package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/CloudGreet/voice-service/internal/domain"
	"github.com/CloudGreet/voice-service/internal/repository"
	"github.com/CloudGreet/voice-service/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Reply is the generated next thing the agent should say
type Reply struct {
	Text           string
	ShouldTransfer bool
}

// Generator produces the agent's next reply for a caller utterance
type Generator interface {
	Generate(ctx context.Context, business *domain.Business, agent *domain.AIAgent, callControlID, utterance string) (*Reply, error)
}

// transferMarker is emitted by the model when the caller should be handed
// off to a human; it is stripped from the spoken reply.
const transferMarker = "[TRANSFER]"

const generateTimeout = 20 * time.Second

// OpenAIGenerator generates replies with a chat completion model, replaying
// the call's stored turn history for context and persisting each new turn
// pair after a successful generation.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	repos  repository.RepositoryManager
}

// NewOpenAIGenerator creates a generator backed by the OpenAI API
func NewOpenAIGenerator(apiKey, model string, repos repository.RepositoryManager) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
		repos:  repos,
	}
}

// Generate produces the reply for one caller utterance and appends the
// (utterance, reply) pair to the call's conversation history.
func (g *OpenAIGenerator) Generate(ctx context.Context, business *domain.Business, agent *domain.AIAgent, callControlID, utterance string) (*Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	history, err := g.repos.Conversation().GetByCallControlID(ctx, callControlID)
	if err != nil {
		return nil, fmt.Errorf("load conversation history: %w", err)
	}

	messages := buildMessages(business, agent, history, utterance)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	shouldTransfer := strings.Contains(text, transferMarker)
	if shouldTransfer {
		text = strings.TrimSpace(strings.ReplaceAll(text, transferMarker, ""))
	}

	if text == "" {
		return nil, fmt.Errorf("chat completion returned empty reply")
	}

	if _, err := g.repos.Conversation().Append(ctx, &domain.ConversationTurn{
		CallControlID: callControlID,
		BusinessID:    business.ID,
		UserMessage:   utterance,
		AIResponse:    text,
	}); err != nil {
		// The reply is already generated; losing one history row degrades
		// context for later turns but must not fail this one.
		logger.L().Errorw("failed to persist conversation turn",
			"call_control_id", callControlID, "business_id", business.ID, "error", err)
	}

	return &Reply{Text: text, ShouldTransfer: shouldTransfer}, nil
}

// buildMessages assembles the chat transcript: system prompt from the
// business and agent configuration, then the stored history, then the new
// utterance.
func buildMessages(business *domain.Business, agent *domain.AIAgent, history []*domain.ConversationTurn, utterance string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)*2+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt(business, agent),
	})

	for _, turn := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.UserMessage},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.AIResponse},
		)
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: utterance,
	})
}

func systemPrompt(business *domain.Business, agent *domain.AIAgent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, the phone receptionist for %s", agent.AgentName, business.BusinessName)
	if business.BusinessType != "" {
		fmt.Fprintf(&b, ", a %s business", business.BusinessType)
	}
	b.WriteString(".\n\n")
	b.WriteString("You are speaking with a caller on a live phone call. Keep replies short, natural, and spoken-friendly. ")
	b.WriteString("Help the caller with their request, collect their name and callback number when they want service, and never invent prices or commitments.\n")
	fmt.Fprintf(&b, "If the caller asks for a human, insists on speaking to the owner, or you cannot help, include the literal token %s in your reply.\n", transferMarker)

	if agent.CustomInstructions != "" {
		b.WriteString("\nAdditional instructions from the business owner:\n")
		b.WriteString(agent.CustomInstructions)
		b.WriteString("\n")
	}

	return b.String()
}
