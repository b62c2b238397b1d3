package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/pattern"
)

// DedupeResult holds the grouping for one batch. The per-transaction slices
// are aligned with the input.
type DedupeResult struct {
	DuplicateGroup []string
	CycleGroup     []string
	Suppressed     []bool
	Groups         []model.DuplicateGroup
}

// Deduplicator finds re-ingested copies and purchase/payment cycles.
type Deduplicator struct {
	registry *pattern.Registry
	config   Config
}

// NewDeduplicator creates a deduplicator over an immutable registry.
func NewDeduplicator(reg *pattern.Registry, cfg Config) (*Deduplicator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Deduplicator{registry: reg, config: cfg}, nil
}

type candidatePair struct {
	a, b    int
	dayDiff int
}

type edge struct {
	a, b       int
	similarity float64
}

// Deduplicate groups txns. Indices in skip take no part in any group.
func (d *Deduplicator) Deduplicate(txns []model.Transaction, skip map[int]bool) DedupeResult {
	res := DedupeResult{
		DuplicateGroup: make([]string, len(txns)),
		CycleGroup:     make([]string, len(txns)),
		Suppressed:     make([]bool, len(txns)),
	}

	var (
		simple []edge
		cycles []candidatePair
	)
	for _, p := range d.candidatePairs(txns, skip) {
		switch rel, sim := d.classify(txns[p.a], txns[p.b]); rel {
		case model.RelationshipSimpleDuplicate:
			simple = append(simple, edge{a: p.a, b: p.b, similarity: sim})
		case model.RelationshipPaymentCycle:
			cycles = append(cycles, p)
		}
	}

	res.Groups = append(res.Groups, d.simpleGroups(txns, simple, &res)...)
	res.Groups = append(res.Groups, d.cycleGroups(txns, cycles, &res)...)
	return res
}

// candidatePairs returns every pair within the date window whose amounts are
// within epsilon or exact negations. Transactions are swept in date order so
// only pairs inside the window are examined.
func (d *Deduplicator) candidatePairs(txns []model.Transaction, skip map[int]bool) []candidatePair {
	order := make([]int, 0, len(txns))
	days := make([]int, len(txns))
	for i, t := range txns {
		if skip[i] || !t.HasAmount || t.Date.IsZero() {
			continue
		}
		days[i] = dayNumber(t)
		order = append(order, i)
	}
	sort.SliceStable(order, func(x, y int) bool {
		return days[order[x]] < days[order[y]]
	})

	var pairs []candidatePair
	for x, i := range order {
		for _, j := range order[x+1:] {
			diff := days[j] - days[i]
			if diff > d.config.DateWindowDays {
				break
			}
			if !d.amountsRelated(txns[i].Amount, txns[j].Amount) {
				continue
			}
			a, b := i, j
			if b < a {
				a, b = b, a
			}
			pairs = append(pairs, candidatePair{a: a, b: b, dayDiff: diff})
		}
	}

	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].a != pairs[y].a {
			return pairs[x].a < pairs[y].a
		}
		return pairs[x].b < pairs[y].b
	})
	return pairs
}

func (d *Deduplicator) amountsRelated(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(d.config.AmountEpsilon) || isNegation(a, b)
}

func isNegation(a, b decimal.Decimal) bool {
	return !a.IsZero() && a.Neg().Equal(b)
}

// classify decides how a candidate pair relates.
func (d *Deduplicator) classify(a, b model.Transaction) (model.Relationship, float64) {
	if a.Amount.Sign() == b.Amount.Sign() {
		if a.Amount.Sub(b.Amount).Abs().GreaterThan(d.config.AmountEpsilon) {
			return model.RelationshipNone, 0
		}
		sim := pattern.Similarity(a.Description, b.Description)
		if sim >= d.config.DuplicateThreshold {
			return model.RelationshipSimpleDuplicate, sim
		}
		return model.RelationshipNone, sim
	}

	if !d.config.LinkPaymentCycles || !isNegation(a.Amount, b.Amount) {
		return model.RelationshipNone, 0
	}
	if d.linksCycle(a, b) {
		return model.RelationshipPaymentCycle, pattern.Similarity(a.Description, b.Description)
	}
	return model.RelationshipNone, 0
}

// linksCycle reports whether a sign-flipped pair is a purchase and its
// settlement. A payment signature settles any counterpart. A transfer needs a
// recognised counterpart: another settling leg or a known purchase merchant.
func (d *Deduplicator) linksCycle(a, b model.Transaction) bool {
	sa, okA := d.signature(a)
	sb, okB := d.signature(b)
	switch {
	case okA && sa.Kind == model.SignaturePayment, okB && sb.Kind == model.SignaturePayment:
		return true
	case okA && sa.Settles():
		return okB
	case okB && sb.Settles():
		return okA
	}
	return false
}

var signatureKinds = []model.SignatureKind{
	model.SignaturePayment,
	model.SignatureTransfer,
	model.SignaturePurchase,
}

// signature returns the strongest signature matching t, payments first.
func (d *Deduplicator) signature(t model.Transaction) (model.DuplicateSignature, bool) {
	for _, kind := range signatureKinds {
		if sig, ok := d.registry.MatchSignature(t.Description, kind); ok {
			return sig, true
		}
	}
	return model.DuplicateSignature{}, false
}

// simpleGroups unions duplicate edges into connected components and keeps
// only the member with the smallest raw id.
func (d *Deduplicator) simpleGroups(txns []model.Transaction, edges []edge, res *DedupeResult) []model.DuplicateGroup {
	if len(edges) == 0 {
		return nil
	}

	uf := newUnionFind(len(txns))
	for _, e := range edges {
		uf.union(e.a, e.b)
	}

	members := make(map[int][]int)
	minSim := make(map[int]float64)
	for _, e := range edges {
		root := uf.find(e.a)
		if s, ok := minSim[root]; !ok || e.similarity < s {
			minSim[root] = e.similarity
		}
	}
	for i := range txns {
		root := uf.find(i)
		if _, ok := minSim[root]; ok {
			members[root] = append(members[root], i)
		}
	}

	roots := make([]int, 0, len(members))
	for root := range members {
		roots = append(roots, root)
	}
	sort.Slice(roots, func(x, y int) bool {
		return members[roots[x]][0] < members[roots[y]][0]
	})

	groups := make([]model.DuplicateGroup, 0, len(roots))
	for _, root := range roots {
		idx := members[root]
		sortByRawID(txns, idx)

		group := newGroup(txns, idx, model.RelationshipSimpleDuplicate, minSim[root])
		for n, i := range idx {
			res.DuplicateGroup[i] = group.ID
			res.Suppressed[i] = n > 0
		}
		groups = append(groups, group)
	}
	return groups
}

// cycleGroups links each purchase to at most one settling transaction. Pairs
// closest in date win, then the smallest raw ids. Suppressed copies are never
// linked; a pair found through one links its kept representative instead.
func (d *Deduplicator) cycleGroups(txns []model.Transaction, pairs []candidatePair, res *DedupeResult) []model.DuplicateGroup {
	if len(pairs) == 0 {
		return nil
	}

	sort.SliceStable(pairs, func(x, y int) bool {
		px, py := pairs[x], pairs[y]
		if px.dayDiff != py.dayDiff {
			return px.dayDiff < py.dayDiff
		}
		ax, bx := orderedIDs(txns, px)
		ay, by := orderedIDs(txns, py)
		if c := compareRawIDs(ax, ay); c != 0 {
			return c < 0
		}
		return compareRawIDs(bx, by) < 0
	})

	kept := make(map[string]int)
	for i, id := range res.DuplicateGroup {
		if id != "" && !res.Suppressed[i] {
			kept[id] = i
		}
	}
	resolve := func(i int) int {
		if res.Suppressed[i] {
			return kept[res.DuplicateGroup[i]]
		}
		return i
	}

	linked := make(map[int]bool)
	var groups []model.DuplicateGroup
	for _, p := range pairs {
		a, b := resolve(p.a), resolve(p.b)
		if linked[a] || linked[b] || !isNegation(txns[a].Amount, txns[b].Amount) {
			continue
		}
		linked[a], linked[b] = true, true

		idx := []int{a, b}
		sortByRawID(txns, idx)
		group := newGroup(txns, idx, model.RelationshipPaymentCycle,
			pattern.Similarity(txns[a].Description, txns[b].Description))
		res.CycleGroup[a] = group.ID
		res.CycleGroup[b] = group.ID
		groups = append(groups, group)
	}
	return groups
}

func orderedIDs(txns []model.Transaction, p candidatePair) (string, string) {
	a, b := txns[p.a].RawID, txns[p.b].RawID
	if compareRawIDs(b, a) < 0 {
		return b, a
	}
	return a, b
}

// newGroup expects idx sorted by raw id; the first member represents the group.
func newGroup(txns []model.Transaction, idx []int, rel model.Relationship, similarity float64) model.DuplicateGroup {
	ids := make([]string, len(idx))
	for n, i := range idx {
		ids[n] = txns[i].RawID
	}
	return model.DuplicateGroup{
		ID:               groupID(rel, ids),
		RepresentativeID: ids[0],
		Relationship:     rel,
		MemberIDs:        ids,
		Similarity:       similarity,
	}
}

// groupID is a name-based UUID so reruns over the same input agree.
func groupID(rel model.Relationship, memberIDs []string) string {
	key := string(rel) + ":" + strings.Join(memberIDs, "\x1f")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func sortByRawID(txns []model.Transaction, idx []int) {
	sort.SliceStable(idx, func(x, y int) bool {
		if c := compareRawIDs(txns[idx[x]].RawID, txns[idx[y]].RawID); c != 0 {
			return c < 0
		}
		return idx[x] < idx[y]
	})
}

// compareRawIDs orders ids naturally, so "row-9" sorts before "row-10".
func compareRawIDs(a, b string) int {
	for a != "" && b != "" {
		ca, ra := leadingChunk(a)
		cb, rb := leadingChunk(b)
		if c := compareChunks(ca, cb); c != 0 {
			return c
		}
		a, b = ra, rb
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func leadingChunk(s string) (string, string) {
	digits := isASCIIDigit(rune(s[0]))
	for i, r := range s {
		if isASCIIDigit(r) != digits {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func compareChunks(a, b string) int {
	if isASCIIDigit(rune(a[0])) && isASCIIDigit(rune(b[0])) {
		ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(ta) != len(tb) {
			if len(ta) < len(tb) {
				return -1
			}
			return 1
		}
		if c := strings.Compare(ta, tb); c != 0 {
			return c
		}
		// Equal values: fewer leading zeros first keeps the order total.
		return compareInts(len(a), len(b))
	}
	return strings.Compare(a, b)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func dayNumber(t model.Transaction) int {
	return int(t.Day().Unix() / 86400)
}
