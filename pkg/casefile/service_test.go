package casefile

import (
	"context"
	"testing"
	"time"

	"github.com/arrearly/arrearly/internal/event_bus"
	"github.com/arrearly/arrearly/internal/utils"
	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var repoStub = NewStubRepo()

var service Service

func setup(t *testing.T) func() {
	clock := &utils.MockClock{FixedNow: time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC)}
	service = NewService(repoStub, clock, event_bus.NewEventBus())
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func testCase() Case {
	return Case{
		Obligor: "John Doe",
		Obligee: "Jane Doe",
		Terms: OrderTerms{
			SupportAmount: decimal.RequireFromString("322.92"),
			MedicalAmount: decimal.RequireFromString("100.00"),
			DentalAmount:  decimal.Zero,
			StartDate:     time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		Dependents: []dependent.Dependent{
			{Name: "Tom", DOB: time.Date(2010, time.January, 29, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestServiceImpl_CreateCase(t *testing.T) {
	t.Run("should create a case with a generated uid", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		created, err := service.CreateCase(ctx, testCase())

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.Uid)
		assert.NotZero(t, created.Id)
	})

	t.Run("should reject a case without dependents", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		c := testCase()
		c.Dependents = nil

		// when
		_, err := service.CreateCase(ctx, c)

		// then
		assert.Error(t, err)
	})

	t.Run("should reject negative order amounts", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		c := testCase()
		c.Terms.SupportAmount = decimal.RequireFromString("-1")

		// when
		_, err := service.CreateCase(ctx, c)

		// then
		assert.Error(t, err)
	})
}

func TestServiceImpl_RecordPayments(t *testing.T) {
	t.Run("should parse and store pasted payment rows", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateCase(ctx, testCase())
		require.NoError(t, err)

		// when
		payments, err := service.RecordPayments(ctx, created.Uid,
			"08/21/2020\t$64.16\tEMPLOYER REMIT\n10/27/2020\t124.16\tEMPLOYER REMIT")

		// then
		require.NoError(t, err)
		require.Len(t, payments, 2)

		stored, err := service.GetCase(ctx, created.Uid)
		require.NoError(t, err)
		assert.Len(t, stored.Payments, 2)
	})

	t.Run("should fail on a malformed row without storing anything", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateCase(ctx, testCase())
		require.NoError(t, err)

		// when
		_, err = service.RecordPayments(ctx, created.Uid, "08/21/2020\t64.16\tx\nbroken row")

		// then
		assert.Error(t, err)
		stored, err := service.GetCase(ctx, created.Uid)
		require.NoError(t, err)
		assert.Empty(t, stored.Payments)
	})

	t.Run("should fail for an unknown case", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.RecordPayments(ctx, "no-such-case", "08/21/2020\t64.16\tx")

		// then
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}

func TestServiceImpl_DueCalendar(t *testing.T) {
	t.Run("should generate a merged calendar from order terms", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateCase(ctx, testCase())
		require.NoError(t, err)

		// when
		dues, err := service.DueCalendar(ctx, created.Uid)

		// then
		require.NoError(t, err)
		require.NotEmpty(t, dues)
		// 2020-03 through 2021-01, support and medical each month
		assert.Len(t, dues, 22)
		assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), dues[0].DueDate)
	})
}

func TestServiceImpl_Compliance(t *testing.T) {
	t.Run("should reconcile payments and derive violations", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given a case with one month of history and a partial payment
		c := testCase()
		c.Terms.MedicalAmount = decimal.Zero
		created, err := service.CreateCase(ctx, c)
		require.NoError(t, err)
		_, err = service.RecordPayments(ctx, created.Uid, "03/15/2020\t300.00\tx")
		require.NoError(t, err)

		// when
		compliance, err := service.Compliance(ctx, created.Uid)

		// then
		require.NoError(t, err)
		require.Len(t, compliance.Dues, 11)

		// the payment covers the first due in part
		assert.True(t, compliance.Dues[0].Remaining.Equal(decimal.RequireFromString("22.92")),
			"remaining %s", compliance.Dues[0].Remaining)
		assert.Len(t, compliance.Violations, 11)
		assert.True(t, compliance.Totals.TotalPaid.Equal(decimal.RequireFromString("300.00")))
	})
}

func TestServiceImpl_DeleteCase(t *testing.T) {
	t.Run("should delete an existing case", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		created, err := service.CreateCase(ctx, testCase())
		require.NoError(t, err)

		// when
		err = service.DeleteCase(ctx, created.Uid)

		// then
		require.NoError(t, err)
		_, err = service.GetCase(ctx, created.Uid)
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})

	t.Run("should report missing case", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		err := service.DeleteCase(ctx, "no-such-case")

		// then
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}
