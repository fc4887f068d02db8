package query

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/catalog"
)

func TestParseExtractsPriceUnder(t *testing.T) {
	p := Parse("running shoes under $150")
	require.NotNil(t, p.PriceMax)
	assert.Equal(t, 150.0, *p.PriceMax)
	require.NotNil(t, p.Category)
	assert.Equal(t, catalog.CategoryRunningShoes, *p.Category)
	assert.NotContains(t, p.CleanedText, "under")
	assert.NotContains(t, p.CleanedText, "150")
}

func TestParseExtractsPriceBelow(t *testing.T) {
	p := Parse("power rack below $500")
	require.NotNil(t, p.PriceMax)
	assert.Equal(t, 500.0, *p.PriceMax)
	require.NotNil(t, p.Category)
	assert.Equal(t, catalog.CategoryFitnessEquipment, *p.Category)
}

func TestParseDecimalPrice(t *testing.T) {
	p := Parse("trainers under $99.50")
	require.NotNil(t, p.PriceMax)
	assert.Equal(t, 99.50, *p.PriceMax)
}

func TestParseBrandWholeWordMatch(t *testing.T) {
	p := Parse("aleutian running shoe")
	require.NotNil(t, p.Brand)
	assert.Equal(t, "aleutian", *p.Brand)
	require.NotNil(t, p.Category)
	assert.Equal(t, catalog.CategoryRunningShoes, *p.Category)
}

func TestParseBrandDoesNotMatchSubstring(t *testing.T) {
	p := Parse("aleutiania running shoe")
	assert.Nil(t, p.Brand)
}

func TestParseUnmatchedTokensRemainInCleanedText(t *testing.T) {
	p := Parse("comfortable shoes for marathon training")
	assert.Contains(t, p.CleanedText, "comfortable")
	assert.Contains(t, p.CleanedText, "marathon")
}

func TestParseIsPureAndDeterministic(t *testing.T) {
	a := Parse("Aleutian running shoe under $150")
	b := Parse("Aleutian running shoe under $150")
	assert.Equal(t, a, b)
}

func TestParseStripsSurroundingQuotes(t *testing.T) {
	// "roller" is a recovery keyword, so it is removed from cleaned text too.
	p := Parse(`"foam roller"`)
	assert.Equal(t, "foam", p.CleanedText)
}

// TestParsePriceExtractionInvariant exercises spec §8 invariant 2: for all
// positive X and category keyword k, parsing "{k} under $X" yields a
// non-nil category, price_max == X, and cleaned_text containing neither
// the price span nor the matched category keyword.
func TestParsePriceExtractionInvariant(t *testing.T) {
	cases := []struct {
		keyword string
		price   float64
	}{
		{"running shoe", 42},
		{"power rack", 1000},
		{"foam roller", 19.99},
	}
	for _, c := range cases {
		p := Parse(c.keyword + " under $" + strconv.FormatFloat(c.price, 'f', -1, 64))
		require.NotNilf(t, p.Category, "keyword=%s", c.keyword)
		assert.Equal(t, c.price, *p.PriceMax)
		assert.NotContains(t, p.CleanedText, "under")
		assert.NotContains(t, p.CleanedText, "$")
		assert.NotContains(t, p.CleanedText, c.keyword)
	}
}
