package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,CitizenDirectory,Notifier,Refunder,AuditPublisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"municipal/internal/procedure/models"
	"municipal/internal/procedure/service/mocks"
	"municipal/internal/procedure/store"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/platform/audit"
	"municipal/pkg/requestcontext"
)

var errGatewayDeclined = errors.New("declined")

type ProcedureServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *store.InMemory
	citizens  *mocks.MockCitizenDirectory
	notifier  *mocks.MockNotifier
	refunder  *mocks.MockRefunder
	publisher *mocks.MockAuditPublisher
	service   *Service
	ctx       context.Context
	now       time.Time
}

func TestProcedureServiceSuite(t *testing.T) {
	suite.Run(t, new(ProcedureServiceSuite))
}

func (s *ProcedureServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = store.NewInMemory()
	s.citizens = mocks.NewMockCitizenDirectory(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.refunder = mocks.NewMockRefunder(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)

	s.citizens.EXPECT().EnsureRegistered(gomock.Any(), id.CitizenID(1)).Return(nil).AnyTimes()
	s.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	s.service = s.newService()
	s.now = time.Date(2024, 10, 3, 15, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *ProcedureServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ProcedureServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithCitizenDirectory(s.citizens),
		WithNotifier(s.notifier),
		WithRefunder(s.refunder),
		WithAuditPublisher(s.publisher),
	}
	return New(s.store, append(base, opts...)...)
}

func (s *ProcedureServiceSuite) open(procType models.Type) *models.Procedure {
	p, err := s.service.Open(s.ctx, id.CitizenID(1), string(procType), "Solicitud de licencia para restaurante")
	s.Require().NoError(err)
	return p
}

func (s *ProcedureServiceSuite) TestOpen() {
	s.Run("charges the fee for its type", func() {
		p := s.open(models.TypeOperatingLicence)

		s.Equal(models.StatusPending, p.Status)
		s.Equal("245.00", p.AmountDue.StringFixed(2))
		s.True(models.IsFileNumber(p.FileNumber))
		s.Require().Len(p.History, 1)
		s.Equal(models.ReasonOpened, p.History[0].Reason)
		s.Equal(s.now, p.StartedAt)
	})

	s.Run("unknown types get the default fee", func() {
		p := s.open(models.Type("CERTIFICADO_DOMICILIARIO"))
		s.Equal("100.00", p.AmountDue.StringFixed(2))
	})

	s.Run("missing type or description is a validation error", func() {
		_, err := s.service.Open(s.ctx, id.CitizenID(1), " ", "desc")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.Open(s.ctx, id.CitizenID(1), string(models.TypeBuildingPermit), "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown citizen is not found", func() {
		s.citizens.EXPECT().EnsureRegistered(gomock.Any(), id.CitizenID(99)).
			Return(dErrors.New(dErrors.CodeNotFound, "citizen not found"))

		_, err := s.service.Open(s.ctx, id.CitizenID(99), string(models.TypeBuildingPermit), "ampliación")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProcedureServiceSuite) TestOpenRetriesFileNumberCollisions() {
	taken := s.open(models.TypeBuildingPermit)

	s.Run("retries until a free number comes up", func() {
		calls := 0
		svc := s.newService(WithFileNumberGenerator(func(time.Time) string {
			calls++
			if calls < 3 {
				return taken.FileNumber
			}
			return "EXP-2024-999999"
		}))

		p, err := svc.Open(s.ctx, id.CitizenID(1), string(models.TypeBuildingPermit), "otra")
		s.Require().NoError(err)
		s.Equal("EXP-2024-999999", p.FileNumber)
		s.Equal(3, calls)
	})

	s.Run("gives up after bounded attempts", func() {
		svc := s.newService(WithFileNumberGenerator(func(time.Time) string { return taken.FileNumber }))

		_, err := svc.Open(s.ctx, id.CitizenID(1), string(models.TypeBuildingPermit), "otra")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ProcedureServiceSuite) TestTransition() {
	s.Run("legal path records history", func() {
		p := s.open(models.TypeOperatingLicence)

		p, err := s.service.Transition(s.ctx, p.ID, models.StatusInReview, "documents received")
		s.Require().NoError(err)
		p, err = s.service.Transition(s.ctx, p.ID, models.StatusCompleted, "approved")
		s.Require().NoError(err)

		s.Equal(models.StatusCompleted, p.Status)
		s.Len(p.History, 3)
		s.Require().NotNil(p.CompletedAt)
	})

	s.Run("illegal edge is invalid state and leaves no trace", func() {
		p := s.open(models.TypeOperatingLicence)

		_, err := s.service.Transition(s.ctx, p.ID, models.StatusCompleted, "skip review")
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := s.service.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		s.Len(stored.History, 1)
	})

	s.Run("unknown procedure is not found", func() {
		_, err := s.service.Transition(s.ctx, id.ProcedureID(12345), models.StatusInReview, "x")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("cancelled context is a timeout and changes nothing", func() {
		p := s.open(models.TypeOperatingLicence)
		ctx, cancel := context.WithCancel(s.ctx)
		cancel()

		_, err := s.service.Transition(ctx, p.ID, models.StatusInReview, "late")
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

		stored, err := s.service.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
	})
}

func (s *ProcedureServiceSuite) TestCancel() {
	s.Run("refunds before cancelling", func() {
		p := s.open(models.TypeBuildingPermit)
		s.refunder.EXPECT().Refund(gomock.Any(), p.FileNumber, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, amount decimal.Decimal) error {
				s.Equal("380.00", amount.StringFixed(2))
				return nil
			})

		cancelled, err := s.service.Cancel(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, cancelled.Status)
		s.Equal(models.ReasonUserCancellation, cancelled.History[len(cancelled.History)-1].Reason)
	})

	s.Run("refund failure keeps the procedure pending", func() {
		p := s.open(models.TypeBuildingPermit)
		s.refunder.EXPECT().Refund(gomock.Any(), p.FileNumber, gomock.Any()).Return(errors.New("bank offline"))

		_, err := s.service.Cancel(s.ctx, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := s.service.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		s.Len(stored.History, 1)
		s.Equal("380.00", stored.AmountDue.StringFixed(2))
	})

	s.Run("nothing due skips the refund", func() {
		free, err := models.NewProcedure(id.ProcedureID(500), "EXP-2024-000500", id.CitizenID(1),
			models.TypeZoningCertificate, "exonerado", id.MustAmount("0"), s.now)
		s.Require().NoError(err)
		s.Require().NoError(s.store.Insert(s.ctx, free))

		cancelled, err := s.service.Cancel(s.ctx, free.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, cancelled.Status)
	})

	s.Run("issued refund is kept when the caller goes away", func() {
		p := s.open(models.TypeBuildingPermit)
		ctx, cancel := context.WithCancel(s.ctx)
		defer cancel()
		s.refunder.EXPECT().Refund(gomock.Any(), p.FileNumber, gomock.Any()).
			DoAndReturn(func(context.Context, string, decimal.Decimal) error {
				cancel()
				return nil
			})

		cancelled, err := s.service.Cancel(ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, cancelled.Status)

		stored, err := s.service.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, stored.Status)
		s.Len(stored.History, 2)
	})

	s.Run("without a refunder an amount due blocks cancellation", func() {
		svc := New(s.store, WithCitizenDirectory(s.citizens))
		p, err := svc.Open(s.ctx, id.CitizenID(1), string(models.TypeBuildingPermit), "ampliación")
		s.Require().NoError(err)

		_, err = svc.Cancel(s.ctx, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := svc.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, stored.Status)
		s.Equal("380.00", stored.AmountDue.StringFixed(2))
	})

	s.Run("only pending procedures can be cancelled", func() {
		p := s.open(models.TypeOperatingLicence)
		_, err := s.service.Transition(s.ctx, p.ID, models.StatusInReview, "documents received")
		s.Require().NoError(err)

		_, err = s.service.Cancel(s.ctx, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *ProcedureServiceSuite) TestCancelEmitsAuditTrail() {
	ctrl := gomock.NewController(s.T())
	publisher := mocks.NewMockAuditPublisher(ctrl)
	svc := s.newService(WithAuditPublisher(publisher))

	var actions []string
	publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e audit.Event) error {
		actions = append(actions, e.Action)
		return nil
	}).AnyTimes()
	s.refunder.EXPECT().Refund(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	p, err := svc.Open(s.ctx, id.CitizenID(1), string(models.TypeBuildingPermit), "ampliación")
	s.Require().NoError(err)
	_, err = svc.Cancel(s.ctx, p.ID)
	s.Require().NoError(err)

	s.Equal([]string{
		string(audit.EventProcedureOpened),
		string(audit.EventRefundIssued),
		string(audit.EventProcedureCancelled),
	}, actions)
}

func (s *ProcedureServiceSuite) TestSettlePayment() {
	approve := func(context.Context) error { return nil }

	s.Run("exact amount zeroes the balance", func() {
		p := s.open(models.TypeOperatingLicence)

		settled, err := s.service.SettlePayment(s.ctx, p.ID, id.MustAmount("245.00"), approve)
		s.Require().NoError(err)
		s.True(settled.AmountDue.IsZero())
		s.Equal(models.StatusInReview, settled.Status)
		s.Equal(models.ReasonPaymentConfirmed, settled.History[len(settled.History)-1].Reason)
	})

	s.Run("declined authorization is returned unchanged and nothing is written", func() {
		p := s.open(models.TypeOperatingLicence)

		_, err := s.service.SettlePayment(s.ctx, p.ID, id.MustAmount("245.00"), func(context.Context) error {
			return errGatewayDeclined
		})
		s.ErrorIs(err, errGatewayDeclined)

		stored, err := s.service.Get(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("245.00", stored.AmountDue.StringFixed(2))
		s.Len(stored.History, 1)
	})

	s.Run("wrong amount never reaches the gateway", func() {
		p := s.open(models.TypeOperatingLicence)
		called := false

		_, err := s.service.SettlePayment(s.ctx, p.ID, id.MustAmount("100.00"), func(context.Context) error {
			called = true
			return nil
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.False(called)
	})

	s.Run("unknown procedure is not found", func() {
		_, err := s.service.SettlePayment(s.ctx, id.ProcedureID(4242), id.MustAmount("1"), approve)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ProcedureServiceSuite) TestConcurrentPaymentsChargeOnce() {
	p := s.open(models.TypeOperatingLicence)

	const goroutines = 20
	var (
		wg        sync.WaitGroup
		charged   atomic.Int32
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.SettlePayment(s.ctx, p.ID, id.MustAmount("245.00"), func(context.Context) error {
				charged.Add(1)
				return nil
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case dErrors.HasCode(err, dErrors.CodeInvalidState):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), charged.Load())
	s.Equal(int32(1), succeeded.Load())
	s.Equal(int32(goroutines-1), rejected.Load())
}

func (s *ProcedureServiceSuite) TestListings() {
	first := s.open(models.TypeOperatingLicence)
	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	second, err := s.service.Open(later, id.CitizenID(1), string(models.TypeBuildingPermit), "ampliación")
	s.Require().NoError(err)
	_, err = s.service.SettlePayment(s.ctx, first.ID, first.AmountDue, func(context.Context) error { return nil })
	s.Require().NoError(err)

	s.Run("by citizen in start order", func() {
		list, err := s.service.ListByCitizen(s.ctx, id.CitizenID(1))
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(first.ID, list[0].ID)
		s.Equal(second.ID, list[1].ID)
	})

	s.Run("pending payment excludes settled procedures", func() {
		list, err := s.service.ListPendingPayment(s.ctx, id.CitizenID(1))
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(second.ID, list[0].ID)
	})

	s.Run("by file number", func() {
		found, err := s.service.FindByFileNumber(s.ctx, fmt.Sprintf(" %s ", second.FileNumber))
		s.Require().NoError(err)
		s.Equal(second.ID, found.ID)

		_, err = s.service.FindByFileNumber(s.ctx, "EXP-1999-000000")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
