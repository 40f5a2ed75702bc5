// Package research provides the HTTP client for the document research
// service that answers interrogation questions against stored sources.
package research

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/deposition/depo/config"
	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

// DefaultSearchInstructions steers the researcher toward grounded,
// citation-bearing answers. Caller instructions are appended to it.
const DefaultSearchInstructions = `**SEARCH STORED DOCUMENTS** in the document database to answer the query.

When analyzing contracts or legal documents, make sure to:
1. Search for relevant legal provisions and laws that apply to the question
2. Cross-reference the contract clauses with applicable legal requirements
3. Cite specific law articles (with law_name, article_number) when they are relevant to the analysis
4. Identify any discrepancies between the contract and legal requirements`

// Client calls the researcher service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	validator  *ResponseValidator // nil disables payload validation
}

// NewClient builds a researcher client from configuration.
func NewClient(cfg config.ResearcherConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	client := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	if cfg.ValidateResponses {
		client.validator = NewResponseValidator()
	}
	return client
}

// searchRequest is the wire shape of a research call.
type searchRequest struct {
	Query        string `json:"query"`
	Context      string `json:"context,omitempty"`
	Instructions string `json:"instructions"`
}

// Search asks the researcher to answer one question against its stored
// documents. A 404 maps to ErrNotFound; transport and server failures
// map to RetrievalError.
func (c *Client) Search(ctx context.Context, query ports.Query) (ports.Answer, error) {
	reqBody := searchRequest{
		Query:        query.Question,
		Context:      query.Context,
		Instructions: combineInstructions(query.Instructions),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return ports.Answer{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/research"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return ports.Answer{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Answer{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.Answer{}, &ports.RetrievalError{Message: "failed to read researcher response", Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ports.Answer{}, ports.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return ports.Answer{}, &ports.RetrievalError{
			Message: fmt.Sprintf("researcher returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if c.validator != nil {
		if err := c.validator.Validate(body); err != nil {
			return ports.Answer{}, &ports.RetrievalError{Message: "researcher response failed validation", Err: err}
		}
	}

	var answer ports.Answer
	if err := json.Unmarshal(body, &answer); err != nil {
		return ports.Answer{}, &ports.RetrievalError{Message: "failed to decode researcher response", Err: err}
	}

	return answer, nil
}

// combineInstructions appends caller instructions to the built-in
// search guidance.
func combineInstructions(userInstructions string) string {
	userInstructions = strings.TrimSpace(userInstructions)
	if userInstructions == "" {
		return DefaultSearchInstructions
	}
	return DefaultSearchInstructions + "\n\n" + userInstructions
}

// Ensure Client implements the Researcher interface.
var _ ports.Researcher = (*Client)(nil)
