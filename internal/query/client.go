package query

import "context"

// Source is one ranked documentation hit backing an answer.
type Source struct {
	Question string  `json:"question"`
	URL      string  `json:"url"`
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}

// AIResponse is the answer itself with a 0-100 reliability score.
type AIResponse struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Response is the full payload a query engine returns for a question.
type Response struct {
	AIResponse AIResponse `json:"ai_response"`
	TopResults []Source   `json:"top_results"`
}

// Client answers a natural-language question. The copilot treats it as
// a black box: the answer, confidence and sources come back as-is.
type Client interface {
	Query(ctx context.Context, question string) (Response, error)
}
