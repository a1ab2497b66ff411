package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,CitizenDirectory,Notifier,ReminderScheduler,AuditPublisher

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"municipal/internal/debt/models"
	"municipal/internal/debt/service/mocks"
	"municipal/internal/debt/store"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/requestcontext"
)

type DebtServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *store.InMemory
	citizens  *mocks.MockCitizenDirectory
	notifier  *mocks.MockNotifier
	reminders *mocks.MockReminderScheduler
	publisher *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestDebtServiceSuite(t *testing.T) {
	suite.Run(t, new(DebtServiceSuite))
}

func (s *DebtServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.citizens = mocks.NewMockCitizenDirectory(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.reminders = mocks.NewMockReminderScheduler(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)

	s.citizens.EXPECT().EnsureRegistered(gomock.Any(), id.CitizenID(1)).Return(nil).AnyTimes()
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	s.service = New(s.store,
		WithCitizenDirectory(s.citizens),
		WithNotifier(s.notifier),
		WithReminderScheduler(s.reminders),
		WithAuditPublisher(s.publisher),
	)
	s.now = time.Date(2024, 10, 3, 15, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *DebtServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DebtServiceSuite) assess(debtType, base, interest string) *models.Debt {
	d, err := s.service.Assess(s.ctx, models.Assessment{
		CitizenID:    id.CitizenID(1),
		Type:         models.ParseType(debtType),
		BaseAmount:   id.MustAmount(base),
		LateInterest: id.MustAmount(interest),
		Period:       "2024-T3",
		DueDate:      time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return d
}

func (s *DebtServiceSuite) TestAssess() {
	s.Run("new debt is pending with its total", func() {
		d := s.assess("arbitrios", "420", "45")

		s.Equal(models.StatusPending, d.Status)
		s.Equal(models.Type("ARBITRIOS"), d.Type)
		s.Equal("465.00", d.TotalAmount().StringFixed(2))
		s.Require().Len(d.History, 1)
	})

	s.Run("non-positive base is a validation error", func() {
		_, err := s.service.Assess(s.ctx, models.Assessment{
			CitizenID:  id.CitizenID(1),
			Type:       "ARBITRIOS",
			BaseAmount: id.MustAmount("0"),
			Period:     "2024-T3",
			DueDate:    s.now,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown citizen is not found", func() {
		s.citizens.EXPECT().EnsureRegistered(gomock.Any(), id.CitizenID(77)).
			Return(dErrors.New(dErrors.CodeNotFound, "citizen not found"))

		_, err := s.service.Assess(s.ctx, models.Assessment{CitizenID: id.CitizenID(77)})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DebtServiceSuite) TestSettle() {
	s.Run("pending debt becomes paid", func() {
		d := s.assess("MULTA_TRANSITO", "250", "30")

		paid, err := s.service.Settle(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, paid.Status)
		s.Len(paid.History, 2)
	})

	s.Run("second settle is invalid state", func() {
		d := s.assess("MULTA_TRANSITO", "250", "30")
		_, err := s.service.Settle(s.ctx, d.ID)
		s.Require().NoError(err)

		_, err = s.service.Settle(s.ctx, d.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown debt is not found", func() {
		_, err := s.service.Settle(s.ctx, id.DebtID(999))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *DebtServiceSuite) TestCreateInstallmentPlan() {
	s.Run("465.00 in four installments", func() {
		d := s.assess("ARBITRIOS", "420", "45")
		s.reminders.EXPECT().Schedule(gomock.Any(), d.ID, 4).Return(nil)

		planned, err := s.service.CreateInstallmentPlan(s.ctx, d.ID, 4)
		s.Require().NoError(err)
		s.Equal(models.StatusInstallmentPlan, planned.Status)
		s.Require().NotNil(planned.Plan)
		s.Equal("116.25", planned.Plan.InstallmentAmount.StringFixed(2))

		sum := id.MustAmount("0")
		for _, inst := range planned.Plan.Installments() {
			sum = sum.Add(inst.Amount)
		}
		s.Equal("465.00", sum.StringFixed(2))
	})

	s.Run("counts outside 3..12 are rejected before lookup", func() {
		for _, n := range []int{2, 13} {
			_, err := s.service.CreateInstallmentPlan(s.ctx, id.DebtID(999), n)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "n=%d", n)
		}
	})

	s.Run("bounds are accepted and sum exactly", func() {
		for _, n := range []int{3, 12} {
			d := s.assess("ARBITRIOS", "100", "0.01")
			s.reminders.EXPECT().Schedule(gomock.Any(), d.ID, n).Return(nil)

			planned, err := s.service.CreateInstallmentPlan(s.ctx, d.ID, n)
			s.Require().NoError(err)
			sum := id.MustAmount("0")
			for _, inst := range planned.Plan.Installments() {
				sum = sum.Add(inst.Amount)
			}
			s.True(sum.Equal(d.TotalAmount()), "n=%d sum=%s", n, sum)
		}
	})

	s.Run("paid debt cannot be split", func() {
		d := s.assess("ARBITRIOS", "420", "45")
		_, err := s.service.Settle(s.ctx, d.ID)
		s.Require().NoError(err)

		_, err = s.service.CreateInstallmentPlan(s.ctx, d.ID, 4)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("reminder failure keeps the plan", func() {
		d := s.assess("ARBITRIOS", "420", "45")
		s.reminders.EXPECT().Schedule(gomock.Any(), d.ID, 6).Return(errors.New("redis down"))

		planned, err := s.service.CreateInstallmentPlan(s.ctx, d.ID, 6)
		s.Require().NoError(err)
		s.Equal(models.StatusInstallmentPlan, planned.Status)
	})
}

func (s *DebtServiceSuite) TestSettlePayment() {
	s.Run("exact total marks the debt paid", func() {
		d := s.assess("MULTA_TRANSITO", "250", "30")

		paid, err := s.service.SettlePayment(s.ctx, d.ID, id.MustAmount("280.00"), func(context.Context) error { return nil })
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, paid.Status)
		s.Equal(models.ReasonPaymentConfirmed, paid.History[len(paid.History)-1].Reason)
	})

	s.Run("decline leaves the debt pending", func() {
		d := s.assess("MULTA_TRANSITO", "250", "30")
		declined := errors.New("declined")

		_, err := s.service.SettlePayment(s.ctx, d.ID, id.MustAmount("280.00"), func(context.Context) error { return declined })
		s.ErrorIs(err, declined)

		stored, err := s.service.Get(s.ctx, d.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
	})

	s.Run("concurrent payments charge once", func() {
		d := s.assess("MULTA_TRANSITO", "250", "30")
		var (
			wg      sync.WaitGroup
			charged atomic.Int32
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = s.service.SettlePayment(s.ctx, d.ID, id.MustAmount("280"), func(context.Context) error {
					charged.Add(1)
					return nil
				})
			}()
		}
		wg.Wait()
		s.Equal(int32(1), charged.Load())
	})
}

func (s *DebtServiceSuite) TestListingsAndStatement() {
	pending := s.assess("ARBITRIOS", "420", "45")
	paid := s.assess("MULTA_TRANSITO", "250", "30")
	_, err := s.service.Settle(s.ctx, paid.ID)
	s.Require().NoError(err)

	s.Run("outstanding only lists pending debts", func() {
		list, err := s.service.ListOutstanding(s.ctx, id.CitizenID(1))
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(pending.ID, list[0].ID)
	})

	s.Run("by citizen lists every status", func() {
		list, err := s.service.ListByCitizen(s.ctx, id.CitizenID(1))
		s.Require().NoError(err)
		s.Len(list, 2)
	})

	s.Run("statement workbook holds every debt", func() {
		body, err := s.service.ExportStatement(s.ctx, id.CitizenID(1))
		s.Require().NoError(err)

		f, err := excelize.OpenReader(bytes.NewReader(body))
		s.Require().NoError(err)
		defer f.Close()
		rows, err := f.GetRows("Debts")
		s.Require().NoError(err)
		s.GreaterOrEqual(len(rows), 3)
	})
}

func (s *DebtServiceSuite) TestAuditTrail() {
	ctrl := gomock.NewController(s.T())
	publisher := mocks.NewMockAuditPublisher(ctrl)
	svc := New(s.store, WithAuditPublisher(publisher))

	var events []audit.Event
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		events = append(events, e)
		return nil
	}).AnyTimes()

	d, err := svc.Assess(s.ctx, models.Assessment{
		CitizenID:    id.CitizenID(1),
		Type:         "ARBITRIOS",
		BaseAmount:   id.MustAmount("420"),
		LateInterest: id.MustAmount("45"),
		Period:       "2024-T3",
		DueDate:      s.now,
	})
	s.Require().NoError(err)
	_, err = svc.CreateInstallmentPlan(s.ctx, d.ID, 4)
	s.Require().NoError(err)

	s.Require().Len(events, 2)
	s.Equal(string(audit.EventDebtAssessed), events[0].Action)
	s.Equal(string(audit.EventInstallmentPlanCreated), events[1].Action)
	s.Equal("465.00", events[1].Amount)
}
