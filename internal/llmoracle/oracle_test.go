package llmoracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeOracleReplaysScriptInOrder(t *testing.T) {
	oracle := NewFakeOracle(
		ToolCall{Name: "text_search", Arguments: json.RawMessage(`{"query":"shoes"}`)},
		FinalAnswer{Text: "here are some shoes"},
	)

	d1, err := oracle.Decide(context.Background(), Prompt{}, nil)
	require.NoError(t, err)
	call, ok := d1.(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "text_search", call.Name)

	d2, err := oracle.Decide(context.Background(), Prompt{}, nil)
	require.NoError(t, err)
	answer, ok := d2.(FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "here are some shoes", answer.Text)

	assert.Equal(t, 2, oracle.Calls())
}

func TestFakeOracleErrorsWhenScriptExhausted(t *testing.T) {
	oracle := NewFakeOracle(FinalAnswer{Text: "done"})
	_, err := oracle.Decide(context.Background(), Prompt{}, nil)
	require.NoError(t, err)

	_, err = oracle.Decide(context.Background(), Prompt{}, nil)
	assert.Error(t, err)
}

func TestAnthropicOracleParsesToolUseBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		_, _ = w.Write([]byte(`{"content":[{"type":"tool_use","name":"check_inventory","input":{"product_id":"p1"}}]}`))
	}))
	defer server.Close()

	oracle := NewAnthropicOracle("test-key", "claude-3-test", server.URL, 1000)
	d, err := oracle.Decide(context.Background(), Prompt{UserMessage: "is this in stock?"}, nil)
	require.NoError(t, err)

	call, ok := d.(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "check_inventory", call.Name)
}

func TestAnthropicOracleParsesTextBlockAsFinalAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"sure, here you go"}]}`))
	}))
	defer server.Close()

	oracle := NewAnthropicOracle("test-key", "claude-3-test", server.URL, 1000)
	d, err := oracle.Decide(context.Background(), Prompt{UserMessage: "thanks"}, nil)
	require.NoError(t, err)

	answer, ok := d.(FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "sure, here you go", answer.Text)
}

func TestAnthropicOracleSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	oracle := NewAnthropicOracle("test-key", "claude-3-test", server.URL, 1000)
	_, err := oracle.Decide(context.Background(), Prompt{UserMessage: "hi"}, nil)
	assert.Error(t, err)
}

func TestOpenAIOracleParsesToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","tool_calls":[{"id":"1","type":"function","function":{"name":"text_search","arguments":"{\"query\":\"shoes\"}"}}]}}]}`))
	}))
	defer server.Close()

	oracle := NewOpenAIOracle("test-key", "gpt-4o-test", server.URL, 1000)
	d, err := oracle.Decide(context.Background(), Prompt{UserMessage: "find me shoes"}, nil)
	require.NoError(t, err)

	call, ok := d.(ToolCall)
	require.True(t, ok)
	assert.Equal(t, "text_search", call.Name)
	assert.JSONEq(t, `{"query":"shoes"}`, string(call.Arguments))
}

func TestOpenAIOracleParsesFinalAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"all set"}}]}`))
	}))
	defer server.Close()

	oracle := NewOpenAIOracle("test-key", "gpt-4o-test", server.URL, 1000)
	d, err := oracle.Decide(context.Background(), Prompt{UserMessage: "thanks"}, nil)
	require.NoError(t, err)

	answer, ok := d.(FinalAnswer)
	require.True(t, ok)
	assert.Equal(t, "all set", answer.Text)
}

func TestOpenAIOracleSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"server_error","message":"boom"}}`))
	}))
	defer server.Close()

	oracle := NewOpenAIOracle("test-key", "gpt-4o-test", server.URL, 1000)
	_, err := oracle.Decide(context.Background(), Prompt{UserMessage: "hi"}, nil)
	assert.Error(t, err)
}
