package quoteservice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

// mockQuoteRepo simula o repositório de orçamentos.
type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	args := m.Called(ctx, quote)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func (m *mockQuoteRepo) FindByID(ctx context.Context, id string) (domain.Quote, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Quote), args.Error(1)
}

func (m *mockQuoteRepo) FindAll(ctx context.Context, filter domain.QuoteFilter) ([]domain.Quote, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *mockQuoteRepo) UpdateStatusAndNotes(ctx context.Context, id string, from, to domain.QuoteStatus, notes string) error {
	args := m.Called(ctx, id, from, to, notes)
	return args.Error(0)
}

func newService(repo *mockQuoteRepo) *QuoteService {
	return NewQuoteService(repo, logger.NewLogger("error"))
}

var (
	ownerCaller    = domain.Caller{UserID: "owner-1", Username: "cliente.teste", Role: domain.RoleCustomer}
	mechanicCaller = domain.Caller{UserID: "mech-1", Username: "mecanico.teste", Role: domain.RoleMechanic}
)

func pendingQuote(id string) domain.Quote {
	return domain.Quote{
		ID:             id,
		VehicleID:      uuid.New().String(),
		MechanicID:     "mech-1",
		VehicleOwnerID: "owner-1",
		ValidUntil:     time.Now().AddDate(0, 0, 10),
		Status:         domain.QuoteStatusPending,
		Notes:          "Diagnóstico inicial.",
	}
}

func TestCreate_TotalSempreDerivado(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)

	input := domain.Quote{
		VehicleID:          uuid.New().String(),
		MechanicID:         uuid.New().String(),
		ProblemDescription: "Barulho na suspensão dianteira.",
		LaborValue:         decimal.RequireFromString("100.00"),
		PartsValue:         decimal.RequireFromString("50.00"),
		TotalValue:         decimal.RequireFromString("999.99"), // valor enviado é ignorado
		ValidUntil:         time.Now().AddDate(0, 0, 15),
	}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(q domain.Quote) bool {
		return q.TotalValue.Equal(decimal.RequireFromString("150.00"))
	})).Return(input, nil)

	_, err := svc.Create(context.Background(), mechanicCaller, input)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreate_ClienteNaoPodeCriar(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)

	_, err := svc.Create(context.Background(), ownerCaller, domain.Quote{})

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestApprove_Sucesso(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()
	quote := pendingQuote(id)

	repo.On("FindByID", mock.Anything, id).Return(quote, nil)
	repo.On("UpdateStatusAndNotes", mock.Anything, id,
		domain.QuoteStatusPending, domain.QuoteStatusApproved, quote.Notes).Return(nil)

	approved, err := svc.Approve(context.Background(), ownerCaller, id)

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusApproved, approved.Status)
	repo.AssertExpectations(t)
}

func TestApprove_ExpiradoPersisteTransicaoEFalha(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()
	quote := pendingQuote(id)
	quote.ValidUntil = time.Now().AddDate(0, 0, -3)

	repo.On("FindByID", mock.Anything, id).Return(quote, nil)
	// A transição para expired é gravada mesmo com a aprovação falhando.
	repo.On("UpdateStatusAndNotes", mock.Anything, id,
		domain.QuoteStatusPending, domain.QuoteStatusExpired, quote.Notes).Return(nil)

	_, err := svc.Approve(context.Background(), ownerCaller, id)

	assert.Error(t, err)
	_, ok := err.(*apperror.StateError)
	assert.True(t, ok, "esperado StateError, obtido %T", err)
	repo.AssertExpectations(t)
}

func TestApprove_ApenasDonoDoVeiculo(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()

	repo.On("FindByID", mock.Anything, id).Return(pendingQuote(id), nil)

	_, err := svc.Approve(context.Background(), mechanicCaller, id)

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateStatusAndNotes",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApprove_JaAprovadoFalhaSemEscrita(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()
	quote := pendingQuote(id)
	quote.Status = domain.QuoteStatusApproved

	repo.On("FindByID", mock.Anything, id).Return(quote, nil)

	_, err := svc.Approve(context.Background(), ownerCaller, id)

	assert.Error(t, err)
	_, ok := err.(*apperror.StateError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateStatusAndNotes",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReject_RegistraMotivoNasObservacoes(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()
	quote := pendingQuote(id)

	repo.On("FindByID", mock.Anything, id).Return(quote, nil)
	repo.On("UpdateStatusAndNotes", mock.Anything, id,
		domain.QuoteStatusPending, domain.QuoteStatusRejected,
		mock.MatchedBy(func(notes string) bool {
			return len(notes) > len(quote.Notes)
		})).Return(nil)

	rejected, err := svc.Reject(context.Background(), ownerCaller, id, "Preço acima do orçado pelo seguro.")

	assert.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusRejected, rejected.Status)
	assert.Contains(t, rejected.Notes, "Diagnóstico inicial.")
	assert.Contains(t, rejected.Notes, "por cliente.teste]")
	repo.AssertExpectations(t)
}

func TestReject_MotivoCurtoFalhaSemEscrita(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)
	id := uuid.New().String()

	repo.On("FindByID", mock.Anything, id).Return(pendingQuote(id), nil)

	_, err := svc.Reject(context.Background(), ownerCaller, id, "curto")

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok, "esperado ValidationError, obtido %T", err)
	repo.AssertNotCalled(t, "UpdateStatusAndNotes",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestList_EscopoDoChamadorAplicado(t *testing.T) {
	repo := new(mockQuoteRepo)
	svc := newService(repo)

	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f domain.QuoteFilter) bool {
		return f.RequesterID == "owner-1" && f.RequesterRole == domain.RoleCustomer
	})).Return([]domain.Quote{}, nil)

	_, err := svc.List(context.Background(), ownerCaller, domain.QuoteFilter{})

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
