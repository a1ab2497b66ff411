// Package seed loads the demo citizen with their procedures and debts for
// development environments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	citizenmodels "municipal/internal/citizen/models"
	debtmodels "municipal/internal/debt/models"
	proceduremodels "municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	"municipal/pkg/platform/sentinel"
)

type CitizenStore interface {
	Insert(ctx context.Context, c *citizenmodels.Citizen) error
}

type ProcedureStore interface {
	Insert(ctx context.Context, p *proceduremodels.Procedure) error
}

type DebtStore interface {
	Insert(ctx context.Context, d *debtmodels.Debt) error
}

// Stores groups the stores the demo data goes into.
type Stores struct {
	Citizens   CitizenStore
	Procedures ProcedureStore
	Debts      DebtStore
}

// DemoCitizenID is the id of the seeded citizen.
const DemoCitizenID = id.CitizenID(1)

// Load inserts the demo records with fixed ids. Records that already exist
// are skipped, so Load can run on every start against a persistent store.
func Load(ctx context.Context, stores Stores, logger *slog.Logger) error {
	citizen, err := demoCitizen()
	if err != nil {
		return err
	}
	procedures, err := demoProcedures()
	if err != nil {
		return err
	}
	debts, err := demoDebts()
	if err != nil {
		return err
	}

	inserted := 0
	insert := func(kind string, key any, fn func() error) error {
		err := fn()
		switch {
		case err == nil:
			inserted++
			return nil
		case errors.Is(err, sentinel.ErrConflict):
			logger.DebugContext(ctx, "seed record already present", "kind", kind, "key", key)
			return nil
		default:
			return fmt.Errorf("seed %s %v: %w", kind, key, err)
		}
	}

	if err := insert("citizen", citizen.ID, func() error { return stores.Citizens.Insert(ctx, citizen) }); err != nil {
		return err
	}
	for _, p := range procedures {
		if err := insert("procedure", p.FileNumber, func() error { return stores.Procedures.Insert(ctx, p) }); err != nil {
			return err
		}
	}
	for _, d := range debts {
		if err := insert("debt", d.ID, func() error { return stores.Debts.Insert(ctx, d) }); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "demo data loaded",
		"citizen_id", DemoCitizenID,
		"inserted", inserted,
	)
	return nil
}

func demoCitizen() (*citizenmodels.Citizen, error) {
	reg := citizenmodels.Registration{
		NationalID: "12345678",
		FullName:   "Juan Carlos Delgado Martinez",
		Email:      "juan.delgado@email.com",
		Phone:      "987654321",
		Address:    "Jr. Real 456",
		District:   "Huancayo",
	}
	reg.Normalize()
	nationalID, err := id.ParseNationalID(reg.NationalID)
	if err != nil {
		return nil, err
	}
	return citizenmodels.NewCitizen(DemoCitizenID, nationalID, reg, date(2024, 1, 5, 8, 0))
}

func demoProcedures() ([]*proceduremodels.Procedure, error) {
	licence, err := proceduremodels.NewProcedure(id.ProcedureID(1), "EXP-2024-001234", DemoCitizenID,
		proceduremodels.TypeOperatingLicence, "Solicitud de licencia para restaurante",
		proceduremodels.FeeFor(proceduremodels.TypeOperatingLicence), date(2024, 1, 15, 10, 0))
	if err != nil {
		return nil, err
	}
	if err := licence.Transition(proceduremodels.StatusInReview, "documents received", date(2024, 1, 16, 9, 0)); err != nil {
		return nil, err
	}

	permit, err := proceduremodels.NewProcedure(id.ProcedureID(2), "EXP-2024-001189", DemoCitizenID,
		proceduremodels.TypeBuildingPermit, "Permiso para ampliación de vivienda",
		proceduremodels.FeeFor(proceduremodels.TypeBuildingPermit), date(2024, 1, 10, 9, 30))
	if err != nil {
		return nil, err
	}
	return []*proceduremodels.Procedure{licence, permit}, nil
}

func demoDebts() ([]*debtmodels.Debt, error) {
	created := date(2024, 1, 5, 8, 0)
	taxes, err := debtmodels.NewDebt(id.DebtID(1), debtmodels.Assessment{
		CitizenID:    DemoCitizenID,
		Type:         "ARBITRIOS",
		BaseAmount:   id.MustAmount("420.00"),
		LateInterest: id.MustAmount("45.00"),
		Period:       "Ene-Mar 2024",
		DueDate:      date(2024, 11, 15, 0, 0),
	}, created)
	if err != nil {
		return nil, err
	}
	fine, err := debtmodels.NewDebt(id.DebtID(2), debtmodels.Assessment{
		CitizenID:    DemoCitizenID,
		Type:         "MULTA_TRANSITO",
		BaseAmount:   id.MustAmount("250.00"),
		LateInterest: id.MustAmount("30.00"),
		Period:       "Ago 2024",
		DueDate:      date(2024, 10, 1, 0, 0),
	}, created)
	if err != nil {
		return nil, err
	}
	return []*debtmodels.Debt{taxes, fine}, nil
}

func date(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}
