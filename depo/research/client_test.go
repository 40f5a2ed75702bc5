package research

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/deposition/depo/config"
	ports "github.com/ZanzyTHEbar/deposition/depo/interrogation/ports"
)

func newTestClient(baseURL string, validate bool) *Client {
	return NewClient(config.ResearcherConfig{
		BaseURL:           baseURL,
		Timeout:           5 * time.Second,
		ValidateResponses: validate,
	})
}

func TestClientSearch(t *testing.T) {
	var gotPath string
	var gotReq searchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"answer": "Article 28 requires a written contract.",
			"evidence": []map[string]any{
				{"sourceId": "gdpr/art-28", "excerpt": "governed by a contract", "locator": "Article 28(3)"},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)

	answer, err := client.Search(context.Background(), ports.Query{
		Question:     "What does Article 28 require?",
		Context:      "processor relationship",
		Instructions: "focus on contract terms",
	})
	require.NoError(t, err)

	assert.Equal(t, "/research", gotPath)
	assert.Equal(t, "What does Article 28 require?", gotReq.Query)
	assert.Equal(t, "processor relationship", gotReq.Context)

	// Caller instructions ride behind the built-in search guidance.
	assert.True(t, strings.HasPrefix(gotReq.Instructions, "**SEARCH STORED DOCUMENTS**"))
	assert.Contains(t, gotReq.Instructions, "focus on contract terms")

	assert.Equal(t, "Article 28 requires a written contract.", answer.Text)
	require.Len(t, answer.Evidence, 1)
	assert.Equal(t, "gdpr/art-28", answer.Evidence[0].SourceID)
	assert.Equal(t, "Article 28(3)", answer.Evidence[0].Locator)
}

func TestClientSearchDefaultInstructions(t *testing.T) {
	var gotReq searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{"answer": "ok"})
	}))
	defer server.Close()

	client := newTestClient(server.URL, false)
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})
	require.NoError(t, err)

	assert.Equal(t, DefaultSearchInstructions, gotReq.Instructions)
}

func TestClientSearchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no documents matched", http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server.URL, false)
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})

	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestClientSearchServerErrorIsRetrievalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, false)
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})

	var re *ports.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Message, "status 500")
	assert.Contains(t, re.Message, "internal failure")
}

func TestClientSearchValidationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Evidence items missing the required excerpt.
		json.NewEncoder(w).Encode(map[string]any{
			"answer":   "text",
			"evidence": []map[string]any{{"sourceId": "a"}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, true)
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})

	var re *ports.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Message, "failed validation")
}

func TestClientSearchInvalidPayloadWithoutValidator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, false)
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})

	var re *ports.RetrievalError
	require.True(t, errors.As(err, &re))
	assert.Contains(t, re.Message, "decode")
}

func TestClientSearchSendsBearerToken(t *testing.T) {
	t.Setenv("RESEARCHER_API_KEY", "secret-token")

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{"answer": "ok"})
	}))
	defer server.Close()

	client := NewClient(config.ResearcherConfig{
		BaseURL:   server.URL,
		APIKeyEnv: "RESEARCHER_API_KEY",
		Timeout:   5 * time.Second,
	})
	_, err := client.Search(context.Background(), ports.Query{Question: "q?"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestCombineInstructions(t *testing.T) {
	assert.Equal(t, DefaultSearchInstructions, combineInstructions(""))
	assert.Equal(t, DefaultSearchInstructions, combineInstructions("   "))

	combined := combineInstructions("cite clause numbers")
	assert.True(t, strings.HasPrefix(combined, DefaultSearchInstructions))
	assert.True(t, strings.HasSuffix(combined, "cite clause numbers"))
}
