// Package export renders a citizen's debts as an .xlsx statement.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"municipal/internal/debt/models"
	id "municipal/pkg/domain"
)

const (
	debtsSheet        = "Debts"
	installmentsSheet = "Installments"
	dateLayout        = "2006-01-02"
)

type column struct {
	Header string
	Value  func(d *models.Debt) any
}

// Amounts are written as float64 so spreadsheet formulas work on them; the
// values are already rounded to cents.
var debtColumns = []column{
	{Header: "Debt ID", Value: func(d *models.Debt) any { return int64(d.ID) }},
	{Header: "Type", Value: func(d *models.Debt) any { return string(d.Type) }},
	{Header: "Period", Value: func(d *models.Debt) any { return d.Period }},
	{Header: "Base amount", Value: func(d *models.Debt) any { return d.BaseAmount.InexactFloat64() }},
	{Header: "Late interest", Value: func(d *models.Debt) any { return d.LateInterest.InexactFloat64() }},
	{Header: "Total", Value: func(d *models.Debt) any { return d.TotalAmount().InexactFloat64() }},
	{Header: "Due date", Value: func(d *models.Debt) any { return d.DueDate.Format(dateLayout) }},
	{Header: "Status", Value: func(d *models.Debt) any { return string(d.Status) }},
	{Header: "Installments", Value: func(d *models.Debt) any {
		if d.Plan == nil {
			return ""
		}
		return fmt.Sprintf("%d x %s", d.Plan.NumberOfInstallments, d.Plan.InstallmentAmount.StringFixed(id.Cents))
	}},
}

var installmentHeaders = []string{"Debt ID", "Installment", "Amount", "Due date"}

// Statement builds the workbook. Debts with an installment plan also get their
// schedule listed on a second sheet.
func Statement(citizenID id.CitizenID, debts []*models.Debt, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	f.SetSheetName(f.GetSheetName(0), debtsSheet)
	if err := f.SetDocProps(&excelize.DocProperties{
		Creator:     "municipal",
		Title:       fmt.Sprintf("Debt statement for citizen %d", int64(citizenID)),
		Created:     now.UTC().Format(time.RFC3339),
		Description: "Outstanding and settled municipal debts",
	}); err != nil {
		return nil, fmt.Errorf("set statement properties: %w", err)
	}

	for i, col := range debtColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(debtsSheet, cell, col.Header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	outstanding := 0.0
	rowIdx := 2
	for _, d := range debts {
		for colIdx, col := range debtColumns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
			if err := f.SetCellValue(debtsSheet, cell, col.Value(d)); err != nil {
				return nil, fmt.Errorf("write debt %d: %w", int64(d.ID), err)
			}
		}
		if d.IsOutstanding() {
			outstanding += d.TotalAmount().InexactFloat64()
		}
		rowIdx++
	}

	labelCell, _ := excelize.CoordinatesToCellName(5, rowIdx+1)
	totalCell, _ := excelize.CoordinatesToCellName(6, rowIdx+1)
	_ = f.SetCellValue(debtsSheet, labelCell, "Outstanding")
	_ = f.SetCellValue(debtsSheet, totalCell, outstanding)

	if err := writeInstallments(f, debts); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInstallments(f *excelize.File, debts []*models.Debt) error {
	hasPlans := false
	for _, d := range debts {
		if d.Plan != nil {
			hasPlans = true
			break
		}
	}
	if !hasPlans {
		return nil
	}

	if _, err := f.NewSheet(installmentsSheet); err != nil {
		return fmt.Errorf("create installments sheet: %w", err)
	}
	for i, h := range installmentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(installmentsSheet, cell, h)
	}

	rowIdx := 2
	for _, d := range debts {
		if d.Plan == nil {
			continue
		}
		for _, inst := range d.Plan.Installments() {
			row := []any{int64(d.ID), inst.Number, inst.Amount.InexactFloat64(), inst.DueDate.Format(dateLayout)}
			for colIdx, v := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx)
				if err := f.SetCellValue(installmentsSheet, cell, v); err != nil {
					return fmt.Errorf("write installment: %w", err)
				}
			}
			rowIdx++
		}
	}
	return nil
}
