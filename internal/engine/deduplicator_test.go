package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/tally/internal/model"
)

func newTestDeduplicator(t *testing.T, cfg Config) *Deduplicator {
	t.Helper()
	d, err := NewDeduplicator(testRegistry(t), cfg)
	require.NoError(t, err)
	return d
}

func groupsOf(res DedupeResult, rel model.Relationship) []model.DuplicateGroup {
	var out []model.DuplicateGroup
	for _, g := range res.Groups {
		if g.Relationship == rel {
			out = append(out, g)
		}
	}
	return out
}

func TestDeduplicate_SimpleDuplicates(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())
	txns := []model.Transaction{
		txn("row-10", "STARBUCKS #123", "-4.50", 1),
		txn("row-9", "STARBUCKS 0123", "-4.50", 2),
		txn("row-2", "Starbucks", "-4.50", 2),
		txn("row-3", "NETFLIX.COM", "-4.50", 2),
	}

	res := d.Deduplicate(txns, nil)

	simple := groupsOf(res, model.RelationshipSimpleDuplicate)
	require.Len(t, simple, 1)
	g := simple[0]
	assert.Equal(t, "row-2", g.RepresentativeID)
	assert.Equal(t, []string{"row-2", "row-9", "row-10"}, g.MemberIDs)
	assert.Equal(t, 1.0, g.Similarity)

	assert.Equal(t, []bool{true, true, false, false}, res.Suppressed)
	assert.Equal(t, g.ID, res.DuplicateGroup[0])
	assert.Equal(t, g.ID, res.DuplicateGroup[1])
	assert.Equal(t, g.ID, res.DuplicateGroup[2])
	assert.Empty(t, res.DuplicateGroup[3])
	assert.Empty(t, groupsOf(res, model.RelationshipPaymentCycle))
}

func TestDeduplicate_Transitive(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())

	// The first and last rows are too far apart to pair directly.
	txns := []model.Transaction{
		txn("1", "SHELL OIL 57442", "-40.00", 1),
		txn("2", "SHELL OIL", "-40.00", 4),
		txn("3", "SHELL OIL 99", "-40.00", 7),
	}

	res := d.Deduplicate(txns, nil)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"1", "2", "3"}, res.Groups[0].MemberIDs)
	assert.Equal(t, []bool{false, true, true}, res.Suppressed)
}

func TestDeduplicate_NoRelationship(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())

	tests := []struct {
		name string
		txns []model.Transaction
	}{
		{
			name: "outside date window",
			txns: []model.Transaction{txn("1", "UBER TRIP", "-12", 1), txn("2", "UBER TRIP", "-12", 5)},
		},
		{
			name: "different amounts",
			txns: []model.Transaction{txn("1", "UBER TRIP", "-12", 1), txn("2", "UBER TRIP", "-12.01", 1)},
		},
		{
			name: "dissimilar merchants",
			txns: []model.Transaction{txn("1", "SHELL OIL", "-30", 1), txn("2", "NETFLIX", "-30", 1)},
		},
		{
			name: "sign flip without settling signature",
			txns: []model.Transaction{txn("1", "ACME STORE", "-20", 1), txn("2", "ACME STORE REFUND", "20", 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Deduplicate(tt.txns, nil)
			assert.Empty(t, res.Groups)
			assert.Equal(t, []bool{false, false}, res.Suppressed)
		})
	}
}

func TestDeduplicate_AmountEpsilon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AmountEpsilon = decimal.RequireFromString("0.01")
	d := newTestDeduplicator(t, cfg)

	res := d.Deduplicate([]model.Transaction{
		txn("1", "UBER TRIP", "-12.00", 1),
		txn("2", "UBER TRIP", "-12.01", 1),
	}, nil)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, model.RelationshipSimpleDuplicate, res.Groups[0].Relationship)
}

func TestDeduplicate_PaymentCycle(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())
	txns := []model.Transaction{
		txn("1", "STARBUCKS #123", "-5.25", 1),
		txn("2", "CC PAYMENT", "5.25", 2),
	}

	res := d.Deduplicate(txns, nil)
	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.Equal(t, model.RelationshipPaymentCycle, g.Relationship)
	assert.Equal(t, []string{"1", "2"}, g.MemberIDs)

	assert.Equal(t, []bool{false, false}, res.Suppressed)
	assert.Equal(t, g.ID, res.CycleGroup[0])
	assert.Equal(t, g.ID, res.CycleGroup[1])
	assert.Empty(t, res.DuplicateGroup[0])
	assert.Empty(t, res.DuplicateGroup[1])
}

func TestDeduplicate_TransferSignatureCycle(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())

	tests := []struct {
		name        string
		counterpart string
		wantLinked  bool
	}{
		{name: "both legs of a transfer", counterpart: "TRANSFER FROM CHECKING", wantLinked: true},
		{name: "known purchase merchant", counterpart: "STARBUCKS #123", wantLinked: true},
		{name: "unrecognised counterpart", counterpart: "ONLINE DEPOSIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Deduplicate([]model.Transaction{
				txn("a", "TRANSFER TO SAVINGS", "-500", 3),
				txn("b", tt.counterpart, "500", 3),
			}, nil)
			if !tt.wantLinked {
				assert.Empty(t, res.Groups)
				assert.Equal(t, []string{"", ""}, res.CycleGroup)
				return
			}
			require.Len(t, res.Groups, 1)
			assert.Equal(t, model.RelationshipPaymentCycle, res.Groups[0].Relationship)
			assert.Equal(t, []bool{false, false}, res.Suppressed)
		})
	}
}

func TestDeduplicate_PaymentSettlesAnyPurchase(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())

	// Neither merchant carries a purchase signature.
	res := d.Deduplicate([]model.Transaction{
		txn("1", "MYSTERY VENDOR LLC", "-80.00", 1),
		txn("2", "CC PAYMENT", "80.00", 2),
	}, nil)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, model.RelationshipPaymentCycle, res.Groups[0].Relationship)
}

func TestDeduplicate_CycleThroughSuppressedCopy(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())

	// The payment is only in range of the re-ingested copy.
	txns := []model.Transaction{
		txn("1", "STARBUCKS #123", "-5.25", 1),
		txn("2", "STARBUCKS 0123", "-5.25", 4),
		txn("3", "CC PAYMENT", "5.25", 6),
	}

	res := d.Deduplicate(txns, nil)

	simple := groupsOf(res, model.RelationshipSimpleDuplicate)
	require.Len(t, simple, 1)
	assert.Equal(t, "1", simple[0].RepresentativeID)
	assert.Equal(t, []bool{false, true, false}, res.Suppressed)

	cycles := groupsOf(res, model.RelationshipPaymentCycle)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"1", "3"}, cycles[0].MemberIDs)
	assert.Equal(t, cycles[0].ID, res.CycleGroup[0])
	assert.Empty(t, res.CycleGroup[1])
	assert.Equal(t, cycles[0].ID, res.CycleGroup[2])
}

func TestDeduplicate_CycleLinkingDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LinkPaymentCycles = false
	d := newTestDeduplicator(t, cfg)

	res := d.Deduplicate([]model.Transaction{
		txn("1", "STARBUCKS #123", "-5.25", 1),
		txn("2", "STARBUCKS 0123", "-5.25", 1),
		txn("3", "CC PAYMENT", "5.25", 2),
	}, nil)

	require.Len(t, res.Groups, 1)
	assert.Equal(t, model.RelationshipSimpleDuplicate, res.Groups[0].Relationship)
	assert.Equal(t, []string{"", "", ""}, res.CycleGroup)
}

func TestDeduplicate_CycleLinksOnce(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())
	txns := []model.Transaction{
		txn("1", "SHELL OIL", "-50", 1),
		txn("2", "NETFLIX", "-50", 2),
		txn("3", "CC PAYMENT", "50", 2),
	}

	res := d.Deduplicate(txns, nil)
	cycles := groupsOf(res, model.RelationshipPaymentCycle)
	require.Len(t, cycles, 1)

	// The same-day purchase wins the single link.
	assert.Equal(t, []string{"2", "3"}, cycles[0].MemberIDs)
	assert.Empty(t, res.CycleGroup[0])
	assert.Equal(t, []bool{false, false, false}, res.Suppressed)
}

func TestDeduplicate_SkippedExcluded(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())
	noAmount := txn("3", "UBER TRIP", "0", 1)
	noAmount.HasAmount = false
	noDate := txn("4", "UBER TRIP", "-12", 1)
	noDate.Date = time.Time{}

	txns := []model.Transaction{
		txn("1", "UBER TRIP", "-12", 1),
		txn("2", "UBER TRIP", "-12", 1),
		noAmount,
		noDate,
	}

	res := d.Deduplicate(txns, map[int]bool{1: true})
	assert.Empty(t, res.Groups)
	assert.Equal(t, []bool{false, false, false, false}, res.Suppressed)
}

func TestDeduplicate_StableAcrossOrderings(t *testing.T) {
	d := newTestDeduplicator(t, DefaultConfig())
	txns := []model.Transaction{
		txn("row-3", "UBER TRIP", "-12", 1),
		txn("row-11", "UBER TRIP 0042", "-12", 2),
		txn("row-1", "uber trip", "-12", 3),
		txn("row-7", "STARBUCKS", "-5.25", 1),
		txn("row-8", "CC PAYMENT", "5.25", 1),
	}
	reversed := make([]model.Transaction, len(txns))
	for i, tx := range txns {
		reversed[len(txns)-1-i] = tx
	}

	first := d.Deduplicate(txns, nil)
	second := d.Deduplicate(txns, nil)
	flipped := d.Deduplicate(reversed, nil)

	assert.Equal(t, first, second)
	require.Len(t, first.Groups, 2)
	require.Len(t, flipped.Groups, 2)

	byID := make(map[string]model.DuplicateGroup)
	for _, g := range first.Groups {
		byID[g.ID] = g
	}
	for _, g := range flipped.Groups {
		want, ok := byID[g.ID]
		require.True(t, ok, "group %s missing after reordering", g.ID)
		assert.Equal(t, want.RepresentativeID, g.RepresentativeID)
		assert.Equal(t, want.MemberIDs, g.MemberIDs)
	}
	assert.Equal(t, "row-1", first.Groups[0].RepresentativeID)
}

func TestCompareRawIDs(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{a: "row-9", b: "row-10", want: -1},
		{a: "10", b: "9", want: 1},
		{a: "a.ofx:2", b: "a.ofx:2", want: 0},
		{a: "a.ofx:2", b: "b.ofx:1", want: -1},
		{a: "007", b: "7", want: 1},
		{a: "abc", b: "abc1", want: -1},
		{a: "", b: "x", want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareRawIDs(tt.a, tt.b))
			assert.Equal(t, -tt.want, compareRawIDs(tt.b, tt.a))
		})
	}
}
