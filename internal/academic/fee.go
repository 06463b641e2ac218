package academic

// FeeCategory classifies a branch for fee purposes.
type FeeCategory string

const (
	FeeCategorySFC    FeeCategory = "SFC"
	FeeCategoryNonSFC FeeCategory = "NON_SFC"
)

// FeeStatus reports whether the year's fee is fully covered.
type FeeStatus string

const (
	FeeStatusCompleted FeeStatus = "COMPLETED"
	FeeStatusPending   FeeStatus = "PENDING"
)

// sfcBranches lists the self-financed course branches.
var sfcBranches = map[string]struct{}{
	"CSD":   {},
	"IT":    {},
	"CIVIL": {},
}

// FeePolicy carries the per-category yearly fee totals. Injected rather than
// hardcoded so a fee revision does not require a code change.
type FeePolicy struct {
	SFCTotal    int64 `json:"sfc_total"`
	NonSFCTotal int64 `json:"non_sfc_total"`
}

// DefaultFeePolicy returns the fee totals in force when nothing is
// configured.
func DefaultFeePolicy() FeePolicy {
	return FeePolicy{SFCTotal: 70000, NonSFCTotal: 35000}
}

// FeeSummary is the derived balance for one (student, academic year) pair.
// It is recomputed on every request and never persisted.
type FeeSummary struct {
	Category    FeeCategory `json:"category"`
	TotalFee    int64       `json:"total_fee"`
	GovtPaid    int64       `json:"govt_paid"`
	StudentPaid int64       `json:"student_paid"`
	PendingFee  int64       `json:"pending_fee"`
	Status      FeeStatus   `json:"status"`
}

// FeeCategoryFor classifies a branch short name.
func FeeCategoryFor(branch string) FeeCategory {
	if _, ok := sfcBranches[branch]; ok {
		return FeeCategorySFC
	}
	return FeeCategoryNonSFC
}

// ComputeFeeSummary reduces the sanction and payment amounts for one academic
// year into a pending balance. Overpayment clamps the balance at zero rather
// than going negative.
func ComputeFeeSummary(branch string, policy FeePolicy, sanctionAmounts, paymentAmounts []int64) FeeSummary {
	category := FeeCategoryFor(branch)
	total := policy.NonSFCTotal
	if category == FeeCategorySFC {
		total = policy.SFCTotal
	}

	var govtPaid, studentPaid int64
	for _, amount := range sanctionAmounts {
		govtPaid += amount
	}
	for _, amount := range paymentAmounts {
		studentPaid += amount
	}

	pending := total - govtPaid - studentPaid
	if pending < 0 {
		pending = 0
	}

	status := FeeStatusPending
	if pending == 0 {
		status = FeeStatusCompleted
	}

	return FeeSummary{
		Category:    category,
		TotalFee:    total,
		GovtPaid:    govtPaid,
		StudentPaid: studentPaid,
		PendingFee:  pending,
		Status:      status,
	}
}
