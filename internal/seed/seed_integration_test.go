//go:build integration

package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	citizenstore "municipal/internal/citizen/store"
	debtstore "municipal/internal/debt/store"
	"municipal/internal/platform/logger"
	"municipal/internal/platform/postgres"
	proceduremodels "municipal/internal/procedure/models"
	procedurestore "municipal/internal/procedure/store"
	id "municipal/pkg/domain"
	"municipal/pkg/testutil/containers"
)

func TestLoadPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, pg.Truncate(ctx, "procedures", "debts", "citizens"))

	procedures := procedurestore.NewPostgres(pg.DB, 5*time.Second)
	stores := Stores{
		Citizens:   citizenstore.NewPostgres(pg.DB),
		Procedures: procedures,
		Debts:      debtstore.NewPostgres(pg.DB, 5*time.Second),
	}

	require.NoError(t, Load(ctx, stores, logger.Discard()))
	require.NoError(t, Load(ctx, stores, logger.Discard()), "reloading must skip existing rows")

	licence, err := procedures.FindByFileNumber(ctx, "EXP-2024-001234")
	require.NoError(t, err)
	require.Equal(t, proceduremodels.StatusInReview, licence.Status)

	require.NoError(t, postgres.SyncSequence(ctx, pg.DB, "procedures_id_seq", "procedures"))
	next, err := procedures.NextID(ctx)
	require.NoError(t, err)
	require.Equal(t, id.ProcedureID(3), next)
}
