//
// Tencent is pleased to support the open source community by making trpc-raggen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-raggen-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-raggen-go/normalizer"
)

// newChatServer returns a test server answering chat completion requests
// with the given message content.
func newChatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Contains(t, r.URL.Path, "chat/completions")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error": {"message": "internal error"}}`))
			return
		}
		response := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}))
}

func TestCorrect(t *testing.T) {
	reply := `{"headers": [{"text": "One", "level": 1}, {"text": "Two", "level": 2}]}`
	server := newChatServer(t, reply, http.StatusOK)
	defer server.Close()

	corrector := New(
		WithAPIKey("test-key"),
		WithBaseURL(server.URL),
		WithModel("gpt-4o"),
	)

	headings := []normalizer.Heading{
		{Text: "One", Level: 4},
		{Text: "Two", Level: 4},
	}
	corrected, err := corrector.Correct(context.Background(), headings)
	require.NoError(t, err)
	require.Equal(t, []normalizer.Heading{
		{Text: "One", Level: 1},
		{Text: "Two", Level: 2},
	}, corrected)
}

func TestCorrect_FencedReply(t *testing.T) {
	reply := "```json\n{\"headers\": [{\"text\": \"A\", \"level\": 1}]}\n```"
	server := newChatServer(t, reply, http.StatusOK)
	defer server.Close()

	corrector := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	corrected, err := corrector.Correct(context.Background(),
		[]normalizer.Heading{{Text: "A", Level: 3}})
	require.NoError(t, err)
	require.Equal(t, []normalizer.Heading{{Text: "A", Level: 1}}, corrected)
}

func TestCorrect_ServerError(t *testing.T) {
	server := newChatServer(t, "", http.StatusInternalServerError)
	defer server.Close()

	corrector := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	_, err := corrector.Correct(context.Background(),
		[]normalizer.Heading{{Text: "A", Level: 1}})
	require.Error(t, err)
}

func TestCorrect_MalformedReply(t *testing.T) {
	server := newChatServer(t, "not json at all", http.StatusOK)
	defer server.Close()

	corrector := New(WithAPIKey("test-key"), WithBaseURL(server.URL))
	_, err := corrector.Correct(context.Background(),
		[]normalizer.Heading{{Text: "A", Level: 1}})
	require.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"headers": []}`, `{"headers": []}`},
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, stripCodeFence(tt.in), "input %q", tt.in)
	}
}
