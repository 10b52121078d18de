package casefile

import (
	"context"
	"testing"
	"time"

	"github.com/arrearly/arrearly/internal/test_utils"
	"github.com/arrearly/arrearly/pkg/dependent"
	"github.com/arrearly/arrearly/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedCase(uid string) Case {
	return Case{
		Uid:     uid,
		Obligor: "John Doe",
		Obligee: "Jane Doe",
		Terms: OrderTerms{
			SupportAmount:  decimal.RequireFromString("322.92"),
			MedicalAmount:  decimal.RequireFromString("100"),
			DentalAmount:   decimal.Zero,
			StartDate:      time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
			NotBeforeCourt: 1,
		},
		Dependents: []dependent.Dependent{
			{Name: "Tom", DOB: time.Date(2005, time.January, 29, 0, 0, 0, 0, time.UTC)},
			{Name: "Anna", DOB: time.Date(2008, time.September, 4, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestRepoImpl_StoreAndGetByUid(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	t.Run("should store a case and read it back", func(t *testing.T) {
		// given
		c := storedCase("uid-1")

		// when
		id, err := repo.Store(ctx, c)
		require.NoError(t, err)

		stored, err := repo.GetByUid(ctx, "uid-1")

		// then
		require.NoError(t, err)
		assert.Equal(t, id, stored.Id)
		assert.Equal(t, "John Doe", stored.Obligor)
		assert.Equal(t, "Jane Doe", stored.Obligee)
		assert.True(t, stored.Terms.SupportAmount.Equal(c.Terms.SupportAmount))
		assert.True(t, stored.Terms.MedicalAmount.Equal(c.Terms.MedicalAmount))
		assert.True(t, stored.Terms.DentalAmount.IsZero())
		assert.Equal(t, c.Terms.StartDate, stored.Terms.StartDate)
		assert.Equal(t, 1, stored.Terms.NotBeforeCourt)
		require.Len(t, stored.Dependents, 2)
		assert.Equal(t, "Tom", stored.Dependents[0].Name)
		assert.Equal(t, "Anna", stored.Dependents[1].Name)
	})

	t.Run("should return ErrCaseNotFound for an unknown uid", func(t *testing.T) {
		// when
		_, err := repo.GetByUid(ctx, "missing")

		// then
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})
}

func TestRepoImpl_GetAll(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	t.Run("should list cases ordered by id", func(t *testing.T) {
		// given
		_, err := repo.Store(ctx, storedCase("uid-a"))
		require.NoError(t, err)
		_, err = repo.Store(ctx, storedCase("uid-b"))
		require.NoError(t, err)

		// when
		cases, err := repo.GetAll(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, cases, 2)
		assert.Equal(t, "uid-a", cases[0].Uid)
		assert.Equal(t, "uid-b", cases[1].Uid)
		assert.Len(t, cases[0].Dependents, 2)
	})
}

func TestRepoImpl_Update(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	t.Run("should update terms and replace dependents", func(t *testing.T) {
		// given
		c := storedCase("uid-1")
		id, err := repo.Store(ctx, c)
		require.NoError(t, err)

		c.Id = id
		c.Terms.SupportAmount = decimal.RequireFromString("400")
		c.Dependents = []dependent.Dependent{
			{Name: "Tom", DOB: time.Date(2005, time.January, 29, 0, 0, 0, 0, time.UTC)},
		}

		// when
		updated, err := repo.Update(ctx, c)

		// then
		require.NoError(t, err)
		assert.True(t, updated)

		stored, err := repo.GetByUid(ctx, "uid-1")
		require.NoError(t, err)
		assert.True(t, stored.Terms.SupportAmount.Equal(decimal.RequireFromString("400")))
		require.Len(t, stored.Dependents, 1)
		assert.Equal(t, "Tom", stored.Dependents[0].Name)
	})

	t.Run("should report false for an unknown case", func(t *testing.T) {
		// when
		updated, err := repo.Update(ctx, storedCase("missing"))

		// then
		require.NoError(t, err)
		assert.False(t, updated)
	})
}

func TestRepoImpl_Delete(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	t.Run("should delete a case together with its rows", func(t *testing.T) {
		// given
		id, err := repo.Store(ctx, storedCase("uid-1"))
		require.NoError(t, err)
		mustHavePayment(t, repo, id)

		// when
		deleted, err := repo.Delete(ctx, "uid-1")

		// then
		require.NoError(t, err)
		assert.True(t, deleted)
		_, err = repo.GetByUid(ctx, "uid-1")
		assert.ErrorIs(t, err, ErrCaseNotFound)
	})

	t.Run("should report false for an unknown case", func(t *testing.T) {
		// when
		deleted, err := repo.Delete(ctx, "missing")

		// then
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestRepoImpl_AddPayments(t *testing.T) {
	db := test_utils.SetupTestDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	t.Run("should append payments and read them back in date order", func(t *testing.T) {
		// given
		id, err := repo.Store(ctx, storedCase("uid-1"))
		require.NoError(t, err)

		later := mustPayment(t, time.Date(2020, time.October, 27, 0, 0, 0, 0, time.UTC), "124.16")
		earlier := mustPayment(t, time.Date(2020, time.August, 21, 0, 0, 0, 0, time.UTC), "64.16")

		// when
		err = repo.AddPayments(ctx, id, []payment.PaymentMade{later})
		require.NoError(t, err)
		err = repo.AddPayments(ctx, id, []payment.PaymentMade{earlier})
		require.NoError(t, err)

		// then
		stored, err := repo.GetByUid(ctx, "uid-1")
		require.NoError(t, err)
		require.Len(t, stored.Payments, 2)
		assert.Equal(t, earlier.Date, stored.Payments[0].Date)
		assert.Equal(t, later.Date, stored.Payments[1].Date)
		assert.True(t, stored.Payments[0].Amount.Equal(earlier.Amount))
	})
}

func mustPayment(t *testing.T, date time.Time, amount string) payment.PaymentMade {
	t.Helper()
	p, err := payment.NewPaymentMade(date, decimal.RequireFromString(amount), "EMPLOYER REMIT")
	require.NoError(t, err)
	return p
}

func mustHavePayment(t *testing.T, repo Repo, caseId int) {
	t.Helper()
	p := mustPayment(t, time.Date(2020, time.August, 21, 0, 0, 0, 0, time.UTC), "64.16")
	require.NoError(t, repo.AddPayments(context.Background(), caseId, []payment.PaymentMade{p}))
}
