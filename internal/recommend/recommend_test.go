package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// completionRequest is the part of the chat completion payload the tests inspect.
type completionRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat struct {
		Type       string `json:"type"`
		JSONSchema struct {
			Name   string          `json:"name"`
			Strict bool            `json:"strict"`
			Schema json.RawMessage `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

func completionServer(t *testing.T, status int, content string) (*httptest.Server, *completionRequest) {
	t.Helper()
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if status != http.StatusOK {
			http.Error(w, "upstream broke", status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  got.Model,
			"choices": []map[string]any{
				{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func TestRecommend_Success(t *testing.T) {
	srv, got := completionServer(t, http.StatusOK,
		`{"recommendations":[{"strain":"ACDC","reason":"High CBD, very low THC, calming."},{"strain":"Harlequin","reason":"Relaxing with a mild high."}]}`)
	c := NewClient(srv.URL+"/", "sk-test", "test-model", zap.NewNop())

	recs, err := c.Recommend(context.Background(), "relaxing, low THC")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEmpty(t, r.Strain)
		assert.NotEmpty(t, r.Reason)
	}

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "relaxing, low THC", got.Messages[1].Content)
}

func TestRecommend_RequestsStrictJSONSchema(t *testing.T) {
	srv, got := completionServer(t, http.StatusOK, `{"recommendations":[{"strain":"Blue Dream","reason":"Balanced."}]}`)
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	_, err := c.Recommend(context.Background(), "balanced")
	require.NoError(t, err)

	format := got.ResponseFormat
	assert.Equal(t, "json_schema", format.Type)
	assert.Equal(t, schemaName, format.JSONSchema.Name)
	assert.True(t, format.JSONSchema.Strict)

	var schema struct {
		Type       string   `json:"type"`
		Required   []string `json:"required"`
		Properties map[string]struct {
			Type  string `json:"type"`
			Items struct {
				Required             []string `json:"required"`
				AdditionalProperties bool     `json:"additionalProperties"`
			} `json:"items"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(format.JSONSchema.Schema, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"recommendations"}, schema.Required)
	list := schema.Properties["recommendations"]
	assert.Equal(t, "array", list.Type)
	assert.ElementsMatch(t, []string{"strain", "reason"}, list.Items.Required)
	assert.False(t, list.Items.AdditionalProperties)
}

func TestRecommend_MissingReasonRejected(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, `{"recommendations":[{"strain":"ACDC"}]}`)
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	recs, err := c.Recommend(context.Background(), "relaxing, low THC")
	assert.ErrorIs(t, err, ErrSchema)
	assert.Nil(t, recs)
}

func TestRecommend_EmptyListRejected(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, `{"recommendations":[]}`)
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	_, err := c.Recommend(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrSchema)
}

func TestRecommend_UpstreamError(t *testing.T) {
	srv, _ := completionServer(t, http.StatusBadGateway, "")
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	_, err := c.Recommend(context.Background(), "sleepy")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRecommend_EmptyPreferences(t *testing.T) {
	c := NewClient("http://127.0.0.1:0", "", "m", zap.NewNop())
	_, err := c.Recommend(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyPreferences)
}

func TestRecommend_CanceledContext(t *testing.T) {
	srv, _ := completionServer(t, http.StatusOK, `{"recommendations":[]}`)
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Recommend(ctx, "anything")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestRecommend_LongMultibytePreferences(t *testing.T) {
	srv, got := completionServer(t, http.StatusOK, `{"recommendations":[{"strain":"Blue Dream","reason":"Balanced."}]}`)
	c := NewClient(srv.URL, "sk-test", "m", zap.NewNop())

	// The cut point lands inside the first two-byte rune.
	prefs := strings.Repeat("a", maxPreferenceLen-1) + strings.Repeat("é", 10)
	_, err := c.Recommend(context.Background(), prefs)
	require.NoError(t, err)

	sent := got.Messages[1].Content
	assert.True(t, utf8.ValidString(sent))
	assert.NotContains(t, sent, string(utf8.RuneError))
	assert.Equal(t, strings.Repeat("a", maxPreferenceLen-1), sent)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "日本", truncate("日本語", 8))
	assert.Equal(t, "日本語", truncate("日本語", 9))
	assert.Equal(t, "", truncate("語", 2))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"valid", `{"recommendations":[{"strain":"Blue Dream","reason":"Balanced."}]}`, false},
		{"empty list", `{"recommendations":[]}`, true},
		{"missing list", `{}`, true},
		{"blank strain", `{"recommendations":[{"strain":" ","reason":"x"}]}`, true},
		{"missing reason", `{"recommendations":[{"strain":"x"}]}`, true},
		{"unknown field", `{"recommendations":[{"strain":"x","reason":"y","thc":"20%"}]}`, true},
		{"wrong type", `{"recommendations":[{"strain":1,"reason":"y"}]}`, true},
		{"not json", `Sure! Here are some strains...`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Parse([]byte(tt.content))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSchema)
				assert.Nil(t, recs)
				return
			}
			require.NoError(t, err)
			assert.Len(t, recs, 1)
		})
	}
}
