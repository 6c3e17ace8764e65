package settlement_test

import (
	"testing"

	"github.com/jamkie/appneoconcepto-sub000/internal/settlement"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	t.Run("positive net deposits rounded amount", func(t *testing.T) {
		res := settlement.Reconcile(settlement.ReconciliationInput{
			AccumulatedWork: 5000,
			Salary:          1200,
		})

		assert.Equal(t, int64(3800), res.Deposited)
		assert.Equal(t, int64(0), res.GeneratedBalance)
	})

	t.Run("negative net generates balance", func(t *testing.T) {
		res := settlement.Reconcile(settlement.ReconciliationInput{
			AccumulatedWork: 1000,
			Salary:          1200,
		})

		assert.Equal(t, int64(0), res.Deposited)
		assert.Equal(t, int64(200), res.GeneratedBalance)
	})

	t.Run("remainder below denomination is dropped", func(t *testing.T) {
		// 5025 - 1200 = 3825; the 25 above the last 50-note is lost,
		// not carried into the balance. Known behavior.
		res := settlement.Reconcile(settlement.ReconciliationInput{
			AccumulatedWork: 5025,
			Salary:          1200,
		})

		assert.Equal(t, int64(3800), res.Deposited)
		assert.Equal(t, int64(0), res.GeneratedBalance)
	})

	t.Run("deductions and applied advances reduce the net", func(t *testing.T) {
		res := settlement.Reconcile(settlement.ReconciliationInput{
			AccumulatedWork: 6000,
			Salary:          1200,
			PriorBalance:    800,
			AppliedAdvances: 1500,
		})

		assert.Equal(t, int64(2500), res.Deposited)
		assert.Equal(t, int64(0), res.GeneratedBalance)
	})

	t.Run("zero net deposits nothing and generates nothing", func(t *testing.T) {
		res := settlement.Reconcile(settlement.ReconciliationInput{
			AccumulatedWork: 1200,
			Salary:          1200,
		})

		assert.Equal(t, int64(0), res.Deposited)
		assert.Equal(t, int64(0), res.GeneratedBalance)
	})
}
