package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/report"
)

var tierOrder = []model.MatchTier{model.TierRule, model.TierExact, model.TierFuzzy, model.TierUnmatched}

func renderSummary(s report.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s transactions, %s kept, %s suppressed, %s payment links",
		cli.BoldStyle.Render(strconv.Itoa(s.Transactions)),
		strconv.Itoa(s.Kept),
		strconv.Itoa(s.Suppressed),
		strconv.Itoa(s.CycleLinks))
	if s.Skipped > 0 {
		b.WriteString(", " + cli.WarningStyle.Render(fmt.Sprintf("%d skipped", s.Skipped)))
	}
	b.WriteString("\n")

	tiers := make([]string, 0, len(tierOrder))
	for _, t := range tierOrder {
		tiers = append(tiers, cli.FormatTier(t, fmt.Sprintf("%s %d", strings.ToLower(string(t)), s.Tiers[t])))
	}
	b.WriteString(strings.Join(tiers, cli.SubtleStyle.Render(" · ")))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Income   %s\n", cli.FormatAmount(s.Income))
	fmt.Fprintf(&b, "Expenses %s\n", cli.FormatAmount(s.Expenses.Neg()))
	fmt.Fprintf(&b, "Net      %s\n\n", cli.BoldStyle.Render(s.Net.StringFixed(2)))

	rows := make([][]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		rows = append(rows, []string{c.Name, strconv.Itoa(c.Count), cli.FormatAmount(c.Total)})
	}
	b.WriteString(cli.RenderTable([]string{"CATEGORY", "COUNT", "TOTAL"}, rows))

	return cli.RenderBox(cli.ChartIcon+" Summary", b.String())
}

func renderReviews(reviews []report.Review) string {
	if len(reviews) == 0 {
		return cli.FormatSuccess("Nothing to review")
	}

	rows := make([][]string, 0, len(reviews))
	for _, r := range reviews {
		rows = append(rows, []string{
			r.RawID,
			r.Description,
			cli.FormatAmount(r.Amount),
			r.Category,
			r.Suggested,
			r.Reason,
		})
	}
	table := cli.RenderTable([]string{"ID", "DESCRIPTION", "AMOUNT", "CATEGORY", "SUGGESTED", "REASON"}, rows)
	return cli.RenderBox(fmt.Sprintf("%s %d to review", cli.WarningIcon, len(reviews)), table)
}

func renderRules(rules []model.Rule) string {
	if len(rules) == 0 {
		return cli.FormatInfo("No merchant rules yet. Add one with: tally rules add <merchant> <category>")
	}

	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		updated := ""
		if !r.UpdatedAt.IsZero() {
			updated = r.UpdatedAt.Local().Format("2006-01-02")
		}
		rows = append(rows, []string{r.MerchantKey, r.CategoryName, updated})
	}
	return cli.RenderTable([]string{"MERCHANT", "CATEGORY", "UPDATED"}, rows)
}

func renderRuns(runs []model.Run) string {
	if len(runs) == 0 {
		return cli.FormatInfo("No runs recorded yet")
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(r.Sources, ", "),
			strconv.Itoa(r.Transactions),
			strconv.Itoa(r.Suppressed),
			strconv.Itoa(r.Cycles),
			strconv.Itoa(r.Unmatched),
			strconv.Itoa(r.Skipped),
		})
	}
	return cli.RenderTable([]string{"STARTED", "SOURCES", "TXNS", "DUPES", "LINKS", "UNMATCHED", "SKIPPED"}, rows)
}
