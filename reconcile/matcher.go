package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/normalization"
)

// amountTolerance is the largest difference under which two invoice
// amounts still count as the same figure.
var amountTolerance = decimal.RequireFromString("0.1")

// MatchKind classifies a candidate against the store.
type MatchKind int

const (
	// MatchNone means no persisted invoice collides with the candidate.
	MatchNone MatchKind = iota
	// MatchIdentical means the candidate is a re-submission: number,
	// owner, issue date and amount all agree with a persisted invoice.
	MatchIdentical
	// MatchConflict means the number collides but some field disagrees,
	// or the number repeats within the current batch.
	MatchConflict
)

// String returns the lower-case name of the kind.
func (k MatchKind) String() string {
	switch k {
	case MatchIdentical:
		return "identical"
	case MatchConflict:
		return "conflict"
	default:
		return "none"
	}
}

// Candidate is one incoming invoice prepared for matching.
type Candidate struct {
	NormalizedNumber string
	OwnerID          string
	IssueDate        string
	Amount           decimal.Decimal
}

// Outcome is the matcher verdict for one candidate. Ref points at the
// persisted invoice involved, when there is one.
type Outcome struct {
	Kind    MatchKind
	Ref     *database.Invoice
	Reasons []string
}

// Describe renders the outcome for operator-facing reports.
func (o Outcome) Describe() string {
	switch o.Kind {
	case MatchIdentical:
		return fmt.Sprintf("identical to invoice %s (%s)", o.Ref.Number, o.Ref.IssueDate)
	case MatchConflict:
		if o.Ref != nil {
			return fmt.Sprintf("conflicts with invoice %s: %s", o.Ref.Number, strings.Join(o.Reasons, "; "))
		}
		return strings.Join(o.Reasons, "; ")
	default:
		return "no match"
	}
}

// Matcher classifies candidates against an immutable invoice snapshot
// and remembers which numbers were already accepted in the current
// batch. It is not safe for concurrent use; rows are processed one at a
// time in a stable order.
type Matcher struct {
	index []database.Invoice
	batch map[string]struct{}
}

// NewMatcher builds a matcher over the snapshot with an empty batch set.
func NewMatcher(index []database.Invoice) *Matcher {
	return &Matcher{
		index: index,
		batch: make(map[string]struct{}),
	}
}

// Match classifies one candidate. An identical duplicate always wins
// over a conflicting one, regardless of scan order: a full re-submission
// is certain, a same-number collision is only ambiguous. Only candidates
// whose final outcome is MatchNone are added to the batch set.
func (m *Matcher) Match(c Candidate) Outcome {
	if c.NormalizedNumber == "" {
		return Outcome{
			Kind:    MatchConflict,
			Reasons: []string{"invoice number has no digits"},
		}
	}

	var conflictRef *database.Invoice
	var conflictReasons []string

	for i := range m.index {
		ref := &m.index[i]
		if !numbersCollide(c.NormalizedNumber, ref.NormalizedNumber) {
			continue
		}

		reasons := fieldDisagreements(c, ref)
		if len(reasons) == 0 {
			return Outcome{Kind: MatchIdentical, Ref: ref}
		}

		// Remember only the first disagreeing record.
		if conflictRef == nil {
			conflictRef = ref
			conflictReasons = reasons
		}
	}

	if conflictRef != nil {
		return Outcome{Kind: MatchConflict, Ref: conflictRef, Reasons: conflictReasons}
	}

	if _, seen := m.batch[c.NormalizedNumber]; seen {
		return Outcome{
			Kind:    MatchConflict,
			Reasons: []string{"repeated within this batch"},
		}
	}

	m.batch[c.NormalizedNumber] = struct{}{}
	return Outcome{Kind: MatchNone}
}

// numbersCollide reports whether two normalized numbers identify the
// same invoice: exact equality, or a short form (4-5 digits) that is the
// suffix of a long form (>5 digits), checked in both directions.
// Numbers of 0-3 digits only ever match exactly.
func numbersCollide(a, b string) bool {
	if a == b {
		return true
	}
	if normalization.IsShortNumber(a) && normalization.IsLongNumber(b) && strings.HasSuffix(b, a) {
		return true
	}
	if normalization.IsShortNumber(b) && normalization.IsLongNumber(a) && strings.HasSuffix(a, b) {
		return true
	}
	return false
}

// fieldDisagreements lists the fields on which a colliding candidate and
// a persisted invoice disagree. Empty means full agreement.
func fieldDisagreements(c Candidate, ref *database.Invoice) []string {
	var reasons []string

	if c.OwnerID != ref.OwnerID {
		reasons = append(reasons, "assigned advisor differs")
	}
	if c.IssueDate != ref.IssueDate {
		reasons = append(reasons, fmt.Sprintf("issue date differs (%s vs %s)", c.IssueDate, ref.IssueDate))
	}
	if c.Amount.Sub(ref.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
		reasons = append(reasons, fmt.Sprintf("amount differs (%s vs %s)", c.Amount, ref.Amount))
	}

	return reasons
}
