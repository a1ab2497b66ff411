package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
)

func debt(t *testing.T, debtID int64, base, interest string) *models.Debt {
	t.Helper()
	d, err := models.NewDebt(id.DebtID(debtID), models.Assessment{
		CitizenID:    id.CitizenID(1),
		Type:         "ARBITRIOS",
		BaseAmount:   id.MustAmount(base),
		LateInterest: id.MustAmount(interest),
		Period:       "Ene-Mar 2024",
		DueDate:      time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC),
	}, time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return d
}

func TestStatement(t *testing.T) {
	pending := debt(t, 1, "420.00", "45.00")
	planned := debt(t, 2, "250.00", "30.00")
	require.NoError(t, planned.ApplyPlan(3, time.Date(2024, 10, 2, 0, 0, 0, 0, time.UTC)))

	data, err := Statement(id.CitizenID(1), []*models.Debt{pending, planned}, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	header, err := f.GetCellValue(debtsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Debt ID", header)

	rows, err := f.GetRows(debtsSheet)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, "ARBITRIOS", rows[1][1])
	assert.Equal(t, "PENDING", rows[1][7])
	assert.Equal(t, "INSTALLMENT_PLAN", rows[2][7])
	assert.Equal(t, "3 x 93.33", rows[2][8])

	outstanding, err := f.GetCellValue(debtsSheet, "F5")
	require.NoError(t, err)
	assert.Equal(t, "465", outstanding)

	installments, err := f.GetRows(installmentsSheet)
	require.NoError(t, err)
	assert.Len(t, installments, 4, "header plus three installments")
}

func TestStatementWithoutPlans(t *testing.T) {
	data, err := Statement(id.CitizenID(1), []*models.Debt{debt(t, 1, "10.00", "0")}, time.Now())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{debtsSheet}, f.GetSheetList())
}
