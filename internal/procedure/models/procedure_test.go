package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
)

var opened = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

func newPending(t *testing.T, procType Type) *Procedure {
	t.Helper()
	p, err := NewProcedure(id.ProcedureID(1), "EXP-2024-001234", id.CitizenID(1), procType,
		"Solicitud de licencia para restaurante", FeeFor(procType), opened)
	require.NoError(t, err)
	return p
}

func TestNewProcedure(t *testing.T) {
	p := newPending(t, TypeOperatingLicence)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, "245.00", p.AmountDue.StringFixed(2))
	require.Len(t, p.History, 1)
	assert.Nil(t, p.History[0].PreviousStatus)
	assert.Equal(t, StatusPending, p.History[0].NewStatus)
	assert.Equal(t, ReasonOpened, p.History[0].Reason)

	_, err := NewProcedure(id.ProcedureID(1), "EXP-24-1", id.CitizenID(1), TypeBuildingPermit, "x", FeeFor(TypeBuildingPermit), opened)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	_, err = NewProcedure(id.ProcedureID(1), "EXP-2024-000001", id.CitizenID(1), TypeBuildingPermit, "  ", FeeFor(TypeBuildingPermit), opened)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestFeeTable(t *testing.T) {
	assert.Equal(t, "245.00", FeeFor(TypeOperatingLicence).StringFixed(2))
	assert.Equal(t, "380.00", FeeFor(TypeBuildingPermit).StringFixed(2))
	assert.Equal(t, "150.00", FeeFor(TypeZoningCertificate).StringFixed(2))
	assert.Equal(t, "100.00", FeeFor(ParseType("certificado_domiciliario")).StringFixed(2))
	assert.Equal(t, TypeBuildingPermit, ParseType(" permiso_construccion "))
}

func TestStateMachine(t *testing.T) {
	all := []Status{StatusPending, StatusInReview, StatusCancelled, StatusCompleted}
	legal := map[[2]Status]bool{
		{StatusPending, StatusInReview}:   true,
		{StatusPending, StatusCancelled}:  true,
		{StatusInReview, StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]Status{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTransitionHistory(t *testing.T) {
	p := newPending(t, TypeOperatingLicence)

	require.NoError(t, p.Transition(StatusInReview, "documents received", opened.Add(time.Hour)))
	require.NoError(t, p.Transition(StatusCompleted, "approved", opened.Add(2*time.Hour)))

	assert.Len(t, p.History, 3, "history length is one plus each successful transition")
	require.NotNil(t, p.CompletedAt)
	assert.Equal(t, opened.Add(2*time.Hour), *p.CompletedAt)
	assert.Equal(t, StatusInReview, *p.History[2].PreviousStatus)

	err := p.Transition(StatusPending, "reopen", opened.Add(3*time.Hour))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.Len(t, p.History, 3, "rejected transitions leave no trace")
}

func TestSettlement(t *testing.T) {
	t.Run("exact amount from PENDING moves to review", func(t *testing.T) {
		p := newPending(t, TypeOperatingLicence)
		require.NoError(t, p.CanSettle(id.MustAmount("245")))
		p.ApplySettlement(opened.Add(time.Minute))

		assert.True(t, p.AmountDue.IsZero())
		assert.Equal(t, StatusInReview, p.Status)
		assert.Equal(t, ReasonPaymentConfirmed, p.History[len(p.History)-1].Reason)
	})

	t.Run("in review keeps its status", func(t *testing.T) {
		p := newPending(t, TypeOperatingLicence)
		require.NoError(t, p.Transition(StatusInReview, "documents received", opened))
		p.ApplySettlement(opened.Add(time.Minute))

		assert.Equal(t, StatusInReview, p.Status)
		last := p.History[len(p.History)-1]
		assert.Equal(t, StatusInReview, *last.PreviousStatus)
		assert.Equal(t, StatusInReview, last.NewStatus)
	})

	t.Run("wrong amount is a validation error", func(t *testing.T) {
		p := newPending(t, TypeOperatingLicence)
		assert.True(t, dErrors.HasCode(p.CanSettle(id.MustAmount("200.00")), dErrors.CodeValidation))
	})

	t.Run("nothing due is invalid state", func(t *testing.T) {
		p := newPending(t, TypeOperatingLicence)
		p.ApplySettlement(opened)
		assert.True(t, dErrors.HasCode(p.CanSettle(id.MustAmount("245.00")), dErrors.CodeInvalidState))
	})
}

func TestCloneIsDeep(t *testing.T) {
	p := newPending(t, TypeBuildingPermit)
	require.NoError(t, p.Transition(StatusInReview, "r", opened))

	cp := p.Clone()
	*cp.History[1].PreviousStatus = StatusCompleted
	cp.History = append(cp.History, HistoryEntry{NewStatus: StatusCompleted})

	assert.Equal(t, StatusPending, *p.History[1].PreviousStatus)
	assert.Len(t, p.History, 2)
}

func TestFileNumbers(t *testing.T) {
	for range 100 {
		fn := RandomFileNumber(opened)
		assert.True(t, IsFileNumber(fn), fn)
		assert.Contains(t, fn, "EXP-2024-")
	}
	assert.False(t, IsFileNumber("EXP-2024-12345"))
}
