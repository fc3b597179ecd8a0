package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-system/internal/dto"
	"inventory-system/internal/entities"
	apperrors "inventory-system/pkg/errors"
	"inventory-system/pkg/utils"
)

func issueOffice(t *testing.T, env *testEnv, quantity int, expires time.Time) (*entities.LicenseType, []dto.LicenseUnitDTO) {
	t.Helper()
	licenseType, err := env.licenses.CreateLicenseType(env.ctx, dto.CreateLicenseTypeDTO{Name: "Office 365", Vendor: "Microsoft"})
	require.NoError(t, err)
	units, err := env.licenses.IssueStock(env.ctx, licenseType.ID, dto.IssueLicenseStockDTO{
		Quantity:       quantity,
		ExpirationDate: expires,
		PurchaseDate:   utils.ToPtr(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	return licenseType, units
}

func TestIssueStock_UniqueUppercaseKeys(t *testing.T) {
	env := newTestEnv(t)
	_, units := issueOffice(t, env, 5, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, units, 5)
	seen := map[string]bool{}
	for _, u := range units {
		assert.NotEmpty(t, u.Key)
		assert.Equal(t, strings.ToUpper(u.Key), u.Key)
		assert.False(t, seen[u.Key])
		seen[u.Key] = true
		assert.Nil(t, u.AssignedUserID)
	}
}

func TestIssueStock_Validation(t *testing.T) {
	env := newTestEnv(t)
	licenseType, err := env.licenses.CreateLicenseType(env.ctx, dto.CreateLicenseTypeDTO{Name: "Kaspersky", Vendor: "Kaspersky"})
	require.NoError(t, err)

	_, err = env.licenses.IssueStock(env.ctx, licenseType.ID, dto.IssueLicenseStockDTO{Quantity: 0, ExpirationDate: testNow.AddDate(1, 0, 0)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.licenses.IssueStock(env.ctx, licenseType.ID, dto.IssueLicenseStockDTO{Quantity: 1, ExpirationDate: testNow.AddDate(-1, 0, 0)})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = env.licenses.IssueStock(env.ctx, 777, dto.IssueLicenseStockDTO{Quantity: 1, ExpirationDate: testNow.AddDate(1, 0, 0)})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLicenseAssign_DuplicateTypeRejected(t *testing.T) {
	env := newTestEnv(t)
	licenseType, units := issueOffice(t, env, 3, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	assigned, err := env.licenses.Assign(env.ctx, units[0].ID, env.alice.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedUserID)
	assert.Equal(t, env.alice.ID, *assigned.AssignedUserID)
	assert.NotNil(t, assigned.AssignedAt)

	_, err = env.licenses.Assign(env.ctx, units[1].ID, env.alice.ID)
	var dupErr *apperrors.DuplicateLicenseAssignmentError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "Office 365", dupErr.LicenseTypeName)
	assert.Equal(t, licenseType.ID, dupErr.LicenseTypeID)
	assert.Equal(t, units[0].ID, dupErr.HeldUnitID)

	// Вторая единица осталась свободной.
	free, err := env.licenseUnits.FindUnit(env.ctx, units[1].ID)
	require.NoError(t, err)
	assert.False(t, free.IsAssigned())

	_, err = env.licenses.Assign(env.ctx, units[0].ID, env.bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, "единица уже выдана")
}

func TestLicenseAssign_ConcurrentSameUserOnlyOne(t *testing.T) {
	env := newTestEnv(t)
	_, units := issueOffice(t, env, 4, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	errs := make([]error, len(units))
	for i, u := range units {
		wg.Add(1)
		go func(i int, unitID uint64) {
			defer wg.Done()
			_, errs[i] = env.licenses.Assign(env.ctx, unitID, env.alice.ID)
		}(i, u.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrDuplicateLicenseAssignment)
	}
	assert.Equal(t, 1, succeeded)

	held, err := env.licenses.GetUnitsByUser(env.ctx, env.alice.ID)
	require.NoError(t, err)
	assert.Len(t, held, 1)
}

func TestLicenseAssign_ExpiredAndInactiveRejected(t *testing.T) {
	env := newTestEnv(t)
	licenseType, err := env.licenses.CreateLicenseType(env.ctx, dto.CreateLicenseTypeDTO{Name: "AutoCAD", Vendor: "Autodesk"})
	require.NoError(t, err)
	expiredUnit := &entities.LicenseUnit{
		LicenseTypeID:  licenseType.ID,
		Key:            "OLD-KEY",
		PurchaseDate:   time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		ExpirationDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, env.licenseUnits.CreateUnits(env.ctx, []*entities.LicenseUnit{expiredUnit}))

	_, err = env.licenses.Assign(env.ctx, expiredUnit.ID, env.alice.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, units := issueOffice(t, env, 1, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	bob := env.bob
	bob.IsActive = false
	require.NoError(t, env.userRepo.UpdateUser(env.ctx, bob))
	_, err = env.licenses.Assign(env.ctx, units[0].ID, bob.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLicenseRelease(t *testing.T) {
	env := newTestEnv(t)
	_, units := issueOffice(t, env, 2, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err := env.licenses.Release(env.ctx, units[0].ID)
	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "LICENSE_RELEASE", transitionErr.Action)

	_, err = env.licenses.Assign(env.ctx, units[0].ID, env.alice.ID)
	require.NoError(t, err)
	released, err := env.licenses.Release(env.ctx, units[0].ID)
	require.NoError(t, err)
	assert.Nil(t, released.AssignedUserID)

	// После возврата пользователь может получить другую единицу того же типа.
	_, err = env.licenses.Assign(env.ctx, units[1].ID, env.alice.ID)
	assert.NoError(t, err)

	_, err = env.licenses.Release(context.Background(), units[1].ID)
	assert.ErrorIs(t, err, apperrors.ErrUserIDNotFoundInContext)
}

func TestLicenseReleaseAllForUser(t *testing.T) {
	env := newTestEnv(t)
	_, office := issueOffice(t, env, 2, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	antivirus, err := env.licenses.CreateLicenseType(env.ctx, dto.CreateLicenseTypeDTO{Name: "Kaspersky", Vendor: "Kaspersky"})
	require.NoError(t, err)
	av, err := env.licenses.IssueStock(env.ctx, antivirus.ID, dto.IssueLicenseStockDTO{Quantity: 1, ExpirationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	_, err = env.licenses.Assign(env.ctx, office[0].ID, env.alice.ID)
	require.NoError(t, err)
	_, err = env.licenses.Assign(env.ctx, av[0].ID, env.alice.ID)
	require.NoError(t, err)
	_, err = env.licenses.Assign(env.ctx, office[1].ID, env.bob.ID)
	require.NoError(t, err)

	released, err := env.licenses.ReleaseAllForUser(env.ctx, env.alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{office[0].ID, av[0].ID}, released)

	bobUnits, err := env.licenses.GetUnitsByUser(env.ctx, env.bob.ID)
	require.NoError(t, err)
	assert.Len(t, bobUnits, 1, "чужие лицензии не трогаются")

	again, err := env.licenses.ReleaseAllForUser(env.ctx, env.alice.ID)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestLicensePoolSummaryAndExpiring(t *testing.T) {
	env := newTestEnv(t)
	_, units := issueOffice(t, env, 3, testNow.AddDate(0, 0, 20))
	_, err := env.licenses.Assign(env.ctx, units[0].ID, env.alice.ID)
	require.NoError(t, err)

	summary, err := env.licenses.GetPoolSummary(env.ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, 3, summary[0].Total)
	assert.Equal(t, 1, summary[0].Assigned)
	assert.Equal(t, 2, summary[0].Free)
	assert.Equal(t, 0, summary[0].Expired)

	soon, err := env.licenses.GetExpiring(env.ctx, 30)
	require.NoError(t, err)
	assert.Len(t, soon, 3)

	later, err := env.licenses.GetExpiring(env.ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, later)

	_, err = env.licenses.GetExpiring(env.ctx, -1)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
