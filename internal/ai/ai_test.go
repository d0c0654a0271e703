package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/checkcard/internal/model"
)

func chatServer(t *testing.T, status int, content string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			body := map[string]any{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*seen = body
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			return
		}
		resp := map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testClient(url string) *Client {
	return NewClient(model.AIConfig{
		APIKey:         "test-key",
		BaseURL:        url + "/v1",
		Model:          "test-model",
		TimeoutSeconds: 5,
		Language:       "Portuguese",
	}, nil)
}

func TestExtractCardsDecodesObject(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK,
		`{"cards":[{"frente":"Q1? A) x B) y","gabarito":"B","verso":"because"}]}`, &seen)

	drafts := testClient(srv.URL).ExtractCards(context.Background(), "some python source")
	require.Equal(t, []CardDraft{{Frente: "Q1? A) x B) y", Gabarito: "B", Verso: "because"}}, drafts)
	require.Equal(t, "test-model", seen["model"])
	format, ok := seen["response_format"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json_object", format["type"])
}

func TestExtractCardsAcceptsFencedArray(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "```json\n[{\"frente\":\"Q\",\"gabarito\":\"c\",\"verso\":\"\"}]\n```", nil)
	drafts := testClient(srv.URL).ExtractCards(context.Background(), "text")
	require.Len(t, drafts, 1)
	require.Equal(t, "c", drafts[0].Gabarito)
}

func TestExtractCardsReturnsEmptyOnFailure(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	require.Empty(t, testClient(srv.URL).ExtractCards(context.Background(), "text"))

	malformed := chatServer(t, http.StatusOK, "not json at all", nil)
	require.Empty(t, testClient(malformed.URL).ExtractCards(context.Background(), "text"))
}

func TestExplain(t *testing.T) {
	var seen map[string]any
	srv := chatServer(t, http.StatusOK, "  Paris is the capital.  ", &seen)
	got := testClient(srv.URL).Explain(context.Background(), ExplainRequest{
		Question:        "Capital of France?",
		CorrectAnswer:   "B",
		ExplanationText: "Paris",
		UserAnswer:      "A",
	})
	require.Equal(t, "Paris is the capital.", got)

	messages, ok := seen["messages"].([]any)
	require.True(t, ok)
	user := messages[len(messages)-1].(map[string]any)
	prompt := user["content"].(string)
	require.True(t, strings.Contains(prompt, "Capital of France?"))
	require.True(t, strings.Contains(prompt, "My Answer: A"))
	require.Nil(t, seen["response_format"])
}

func TestExplainFallback(t *testing.T) {
	srv := chatServer(t, http.StatusBadGateway, "", nil)
	require.Equal(t, ExplainFallback, testClient(srv.URL).Explain(context.Background(), ExplainRequest{}))

	empty := chatServer(t, http.StatusOK, "   ", nil)
	require.Equal(t, ExplainFallback, testClient(empty.URL).Explain(context.Background(), ExplainRequest{}))
}

func TestNewWithoutKeyIsDisabled(t *testing.T) {
	collab := New(model.AIConfig{Model: "m", TimeoutSeconds: 1}, nil)
	_, ok := collab.(Disabled)
	require.True(t, ok)
	require.Empty(t, collab.ExtractCards(context.Background(), "x"))
	require.Equal(t, ExplainFallback, collab.Explain(context.Background(), ExplainRequest{}))
}
