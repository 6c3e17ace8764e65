package settlement

// DepositRounding is the cash denomination deposits are rounded down to.
// Whatever net remainder does not fit a 50-unit note is dropped, not
// carried forward. Known lossy behavior, kept on purpose.
const DepositRounding = 50

// ReconciliationInput collects everything the weekly formula consumes
// for one installer. Same-period ADVANCE requests are deliberately not
// part of it: an advance granted this week does not reduce this week's
// deposit, it becomes future credit.
type ReconciliationInput struct {
	AccumulatedWork int64 // Σ WORK + EXTRA amounts in the period
	Salary          int64 // weekly salary, possibly edited at close
	PriorBalance    int64 // Σ in-period BALANCE_DEDUCTION amounts
	AppliedAdvances int64 // Σ in-period ADVANCE_APPLICATION amounts
}

// ReconciliationResult is the settled outcome for one installer.
// Exactly one of Deposited / GeneratedBalance is nonzero (both zero
// when net lands on zero).
type ReconciliationResult struct {
	Deposited        int64
	GeneratedBalance int64
}

// Reconcile runs the settlement formula. It is the single place the
// formula lives; the live summary, the close step and reporting all go
// through it.
func Reconcile(in ReconciliationInput) ReconciliationResult {
	net := in.AccumulatedWork - in.Salary - in.PriorBalance - in.AppliedAdvances
	if net < 0 {
		return ReconciliationResult{GeneratedBalance: -net}
	}
	return ReconciliationResult{Deposited: (net / DepositRounding) * DepositRounding}
}
