package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	citizenstore "municipal/internal/citizen/store"
	debtmodels "municipal/internal/debt/models"
	debtstore "municipal/internal/debt/store"
	proceduremodels "municipal/internal/procedure/models"
	procedurestore "municipal/internal/procedure/store"
	"municipal/internal/platform/logger"
	id "municipal/pkg/domain"
)

func TestLoad(t *testing.T) {
	ctx := context.Background()
	citizens := citizenstore.NewInMemory()
	procedures := procedurestore.NewInMemory()
	debts := debtstore.NewInMemory()
	stores := Stores{Citizens: citizens, Procedures: procedures, Debts: debts}

	require.NoError(t, Load(ctx, stores, logger.Discard()))

	t.Run("demo citizen", func(t *testing.T) {
		c, err := citizens.FindByID(ctx, DemoCitizenID)
		require.NoError(t, err)
		assert.Equal(t, id.NationalID("12345678"), c.NationalID)
		assert.Equal(t, "JUAN CARLOS DELGADO MARTINEZ", c.FullName)
		assert.Equal(t, "HUANCAYO", c.District)
	})

	t.Run("procedures", func(t *testing.T) {
		licence, err := procedures.FindByFileNumber(ctx, "EXP-2024-001234")
		require.NoError(t, err)
		assert.Equal(t, proceduremodels.StatusInReview, licence.Status)
		assert.Len(t, licence.History, 2)
		assert.True(t, licence.AmountDue.Equal(id.MustAmount("245.00")))

		permit, err := procedures.FindByFileNumber(ctx, "EXP-2024-001189")
		require.NoError(t, err)
		assert.Equal(t, proceduremodels.StatusPending, permit.Status)
		assert.True(t, permit.AmountDue.Equal(id.MustAmount("380.00")))
	})

	t.Run("debts", func(t *testing.T) {
		list, err := debts.ListByCitizen(ctx, DemoCitizenID, debtmodels.StatusPending)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].TotalAmount().Equal(id.MustAmount("465.00")))
		assert.True(t, list[1].TotalAmount().Equal(id.MustAmount("280.00")))
	})

	t.Run("second load is a no-op", func(t *testing.T) {
		require.NoError(t, Load(ctx, stores, logger.Discard()))
		list, err := procedures.ListByCitizen(ctx, DemoCitizenID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("generated ids continue after the seeded ones", func(t *testing.T) {
		next, err := procedures.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, id.ProcedureID(3), next)
	})
}
