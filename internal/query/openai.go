package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const answerPrompt = `You are a support assistant for the Blaze product. Answer the user's question from your knowledge of the product documentation. Reply with a single JSON object: {"answer": "<your answer>", "confidence": <0-100 integer, how reliable the answer is>}. No other text.`

// OpenAIClient answers questions with a chat completion that reports
// its own confidence. It returns no ranked sources: there is no
// retrieval layer behind it.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone request to avoid mutating the original
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

func NewOpenAI(apiKey, baseURL, model, referrer, title string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	// Inject optional headers (useful for OpenRouter)
	if referrer != "" || title != "" {
		h := http.Header{}
		if referrer != "" {
			h.Set("HTTP-Referer", referrer)
		}
		if title != "" {
			h.Set("X-Title", title)
		}
		base := http.DefaultTransport
		config.HTTPClient = &http.Client{Transport: headerTransport{rt: base, headers: h}}
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Query(ctx context.Context, question string) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: answerPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, fmt.Errorf("empty completion response")
	}
	return Response{AIResponse: parseAnswer(resp.Choices[0].Message.Content)}, nil
}

// parseAnswer extracts the {"answer","confidence"} object from the
// model output, tolerating code fences around it.
func parseAnswer(content string) AIResponse {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	var ai AIResponse
	if err := json.Unmarshal([]byte(s), &ai); err != nil {
		// Model ignored the format: take the text as-is, zero confidence
		return AIResponse{Answer: content}
	}
	if ai.Confidence < 0 {
		ai.Confidence = 0
	}
	if ai.Confidence > 100 {
		ai.Confidence = 100
	}
	return ai
}
