package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := InsufficientInventory("sku-1", 5, 2)
	require.Equal(t, CodeInsufficientInventory, CodeOf(err))

	wrapped := errors.New("boundary: " + err.Error())
	assert.Equal(t, Code(""), CodeOf(wrapped), "plain errors carry no code")
}

func TestErrorIsMatchesByCode(t *testing.T) {
	a := NotFound("product", "abc")
	b := NotFound("product", "xyz")
	assert.True(t, errors.Is(a, b), "two not_found errors should match regardless of message")

	c := InvalidQuantity()
	assert.False(t, errors.Is(a, c))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreFailure(cause)
	assert.ErrorIs(t, err, cause)
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"insufficient inventory", InsufficientInventory("p1", 3, 1), "We only have 1 of those left."},
		{"not found", NotFound("product", "p1"), "I couldn't find that product."},
		{"store failure generic", StoreFailure(errors.New("x")), "I couldn't complete that — please try again."},
		{"llm failure generic", LLMFailure("timeout", errors.New("x")), "I couldn't complete that — please try again."},
		{"plain error", errors.New("boom"), "I couldn't complete that — please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, UserMessage(tc.err))
		})
	}
}
