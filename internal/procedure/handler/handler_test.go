package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"municipal/internal/platform/logger"
	"municipal/internal/procedure/handler/mocks"
	"municipal/internal/procedure/models"
	id "municipal/pkg/domain"
	dErrors "municipal/pkg/domain-errors"
	"municipal/pkg/testutil"
)

type ProcedureHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestProcedureHandlerSuite(t *testing.T) {
	suite.Run(t, new(ProcedureHandlerSuite))
}

func (s *ProcedureHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.service, logger.Discard()).Register(r)
	s.router = r
}

func samplePending() *models.Procedure {
	p, _ := models.NewProcedure(id.ProcedureID(7), "EXP-2024-001189", id.CitizenID(1),
		models.TypeBuildingPermit, "Permiso para ampliación de vivienda",
		models.FeeFor(models.TypeBuildingPermit), time.Date(2024, 9, 20, 10, 0, 0, 0, time.UTC))
	return p
}

func (s *ProcedureHandlerSuite) TestOpen() {
	s.Run("created", func() {
		s.service.EXPECT().
			Open(gomock.Any(), id.CitizenID(1), "PERMISO_CONSTRUCCION", "Permiso para ampliación de vivienda").
			Return(samplePending(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures", map[string]any{
			"citizen_id":  1,
			"type":        "PERMISO_CONSTRUCCION",
			"description": "Permiso para ampliación de vivienda",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		resp := testutil.DecodeJSON[ProcedureResponse](s.T(), rr)
		s.Equal("380.00", resp.AmountDue)
		s.Equal("EXP-2024-001189", resp.FileNumber)
		s.Len(resp.History, 1)
	})

	s.Run("missing description never reaches the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures", map[string]any{
			"citizen_id": 1,
			"type":       "PERMISO_CONSTRUCCION",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("unknown citizen maps to 404", func() {
		s.service.EXPECT().Open(gomock.Any(), id.CitizenID(9), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "citizen not found"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures", map[string]any{
			"citizen_id":  9,
			"type":        "X",
			"description": "y",
		}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *ProcedureHandlerSuite) TestTransitionAndCancel() {
	s.Run("illegal edge maps to 409", func() {
		s.service.EXPECT().Transition(gomock.Any(), id.ProcedureID(7), models.StatusCompleted, "done").
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "cannot move procedure from PENDING to COMPLETED"))

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures/7/transitions",
			map[string]string{"status": "completed", "reason": "done"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_state")
	})

	s.Run("unknown status is rejected before the service", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/procedures/7/transitions",
			map[string]string{"status": "ARCHIVED"}))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("cancel", func() {
		p := samplePending()
		s.Require().NoError(p.Transition(models.StatusCancelled, models.ReasonUserCancellation, time.Now()))
		s.service.EXPECT().Cancel(gomock.Any(), id.ProcedureID(7)).Return(p, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/procedures/7/cancel"))
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(models.StatusCancelled, testutil.DecodeJSON[ProcedureResponse](s.T(), rr).Status)
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/procedures/abc/cancel"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *ProcedureHandlerSuite) TestLookups() {
	s.Run("by file number", func() {
		s.service.EXPECT().FindByFileNumber(gomock.Any(), "EXP-2024-001189").Return(samplePending(), nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/procedures/EXP-2024-001189"))
		testutil.AssertStatusOK(s.T(), rr)
	})

	s.Run("pending payment list", func() {
		s.service.EXPECT().ListPendingPayment(gomock.Any(), id.CitizenID(1)).
			Return([]*models.Procedure{samplePending()}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/citizens/1/procedures/pending-payment"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.DecodeJSON[ProcedureListResponse](s.T(), rr)
		s.Equal(1, resp.Count)
	})

	s.Run("list by citizen", func() {
		s.service.EXPECT().ListByCitizen(gomock.Any(), id.CitizenID(1)).Return([]*models.Procedure{}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/citizens/1/procedures"))
		testutil.AssertStatusOK(s.T(), rr)
		s.Equal(0, testutil.DecodeJSON[ProcedureListResponse](s.T(), rr).Count)
	})
}
