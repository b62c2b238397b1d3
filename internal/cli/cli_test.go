package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/tally/internal/model"
)

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"KEY", "CATEGORY"},
		[][]string{
			{"starbucks", "Coffee/Dining"},
			{"netflix com"},
		},
	)

	lines := strings.Split(out, "\n")
	assert.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "Coffee/Dining")
	assert.Contains(t, out, "netflix com")
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("Summary", "12 transactions")
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "12 transactions")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), SuccessIcon)
	assert.Contains(t, FormatError("bad"), ErrorIcon)
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatTitle("Tally"), TallyIcon)
}

func TestFormatAmount(t *testing.T) {
	assert.Contains(t, FormatAmount(decimal.RequireFromString("5.25")), "5.25")
	assert.Contains(t, FormatAmount(decimal.RequireFromString("-1234.5")), "-1234.50")
	assert.Equal(t, "0.00", FormatAmount(decimal.Zero))
}

func TestFormatTier(t *testing.T) {
	for _, tier := range []model.MatchTier{model.TierRule, model.TierExact, model.TierFuzzy, model.TierUnmatched} {
		assert.Contains(t, FormatTier(tier, "rule 3"), "rule 3")
	}
	assert.Equal(t, "plain", FormatTier("OTHER", "plain"))
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 2, "Reading statements...")
	p.Step()
	p.Step()
	p.Finish()
	assert.Contains(t, buf.String(), "Reading statements...")

	var nilProgress *Progress
	assert.NotPanics(t, func() {
		nilProgress.Step()
		nilProgress.Finish()
	})
}
