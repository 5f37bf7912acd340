package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"friday/internal/session"
)

// FunClient fetches jokes and trivia questions from their public APIs.
type FunClient struct {
	jokeBaseURL   string
	triviaBaseURL string
	client        *http.Client
	randInt       func(n int) int
}

// NewFunClient targets the public JokeAPI and Open Trivia DB endpoints.
func NewFunClient(randInt func(n int) int) *FunClient {
	if randInt == nil {
		randInt = rand.Intn
	}
	return &FunClient{
		jokeBaseURL:   "https://v2.jokeapi.dev",
		triviaBaseURL: "https://opentdb.com",
		client:        &http.Client{Timeout: 10 * time.Second},
		randInt:       randInt,
	}
}

// NewFunClientWithBaseURLs is for tests.
func NewFunClientWithBaseURLs(jokeBaseURL, triviaBaseURL string, randInt func(n int) int) *FunClient {
	c := NewFunClient(randInt)
	c.jokeBaseURL = jokeBaseURL
	c.triviaBaseURL = triviaBaseURL
	return c
}

// Joke fetches one joke of any category. Two-part jokes are joined with
// a beat so the pause survives synthesis.
func (c *FunClient) Joke(ctx context.Context) (string, error) {
	var body struct {
		Type     string `json:"type"`
		Joke     string `json:"joke"`
		Setup    string `json:"setup"`
		Delivery string `json:"delivery"`
	}
	if err := c.getJSON(ctx, c.jokeBaseURL+"/joke/Any?safe-mode", &body); err != nil {
		return "", err
	}
	if body.Type == "twopart" {
		return body.Setup + " ... " + body.Delivery, nil
	}
	if body.Joke == "" {
		return "", fmt.Errorf("joke api: empty response")
	}
	return body.Joke, nil
}

// Trivia fetches one multiple-choice question and returns it with the
// shuffled options and, after a separator, the answer.
func (c *FunClient) Trivia(ctx context.Context) (string, error) {
	var body struct {
		Results []struct {
			Question   string   `json:"question"`
			Correct    string   `json:"correct_answer"`
			Incorrects []string `json:"incorrect_answers"`
		} `json:"results"`
	}
	if err := c.getJSON(ctx, c.triviaBaseURL+"/api.php?amount=1&type=multiple", &body); err != nil {
		return "", err
	}
	if len(body.Results) == 0 {
		return "", fmt.Errorf("trivia api: empty response")
	}
	q := body.Results[0]

	options := make([]string, 0, len(q.Incorrects)+1)
	options = append(options, html.UnescapeString(q.Correct))
	for _, o := range q.Incorrects {
		options = append(options, html.UnescapeString(o))
	}
	for i := len(options) - 1; i > 0; i-- {
		j := c.randInt(i + 1)
		options[i], options[j] = options[j], options[i]
	}

	return fmt.Sprintf("%s Your options are: %s. The answer is %s.",
		html.UnescapeString(q.Question),
		strings.Join(options, ", "),
		html.UnescapeString(q.Correct)), nil
}

func (c *FunClient) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func newFunHandler(svc Services) Handler {
	return func(ctx context.Context, s *session.Session, utterance string) string {
		if svc.Fun == nil {
			return "Jokes and trivia aren't configured."
		}
		lower := strings.ToLower(utterance)
		switch {
		case strings.Contains(lower, "joke"):
			joke, err := svc.Fun.Joke(ctx)
			if err != nil {
				return "I couldn't fetch a joke right now."
			}
			return s.Mood.Decorate(joke)
		case strings.Contains(lower, "trivia"), strings.Contains(lower, "question"):
			trivia, err := svc.Fun.Trivia(ctx)
			if err != nil {
				return "I couldn't fetch a trivia question right now."
			}
			return s.Mood.Decorate(trivia)
		default:
			return "Ask me for a joke or a trivia question."
		}
	}
}
