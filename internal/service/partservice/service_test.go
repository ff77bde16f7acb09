package partservice

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

// mockPartRepo simula o repositório de peças.
type mockPartRepo struct {
	mock.Mock
}

func (m *mockPartRepo) Create(ctx context.Context, part domain.Part) (domain.Part, error) {
	args := m.Called(ctx, part)
	return args.Get(0).(domain.Part), args.Error(1)
}

func (m *mockPartRepo) FindByID(ctx context.Context, id string) (domain.Part, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Part), args.Error(1)
}

func (m *mockPartRepo) FindAll(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Part), args.Error(1)
}

func (m *mockPartRepo) Update(ctx context.Context, part domain.Part) (domain.Part, error) {
	args := m.Called(ctx, part)
	return args.Get(0).(domain.Part), args.Error(1)
}

func (m *mockPartRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockPartRepo) DecreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error) {
	args := m.Called(ctx, partID, qty)
	return args.Get(0).(domain.Part), args.Error(1)
}

func (m *mockPartRepo) IncreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error) {
	args := m.Called(ctx, partID, qty)
	return args.Get(0).(domain.Part), args.Error(1)
}

func newService(repo *mockPartRepo) *PartService {
	return NewPartService(repo, logger.NewLogger("error"))
}

var (
	managerCaller  = domain.Caller{UserID: "mgr-1", Username: "gerente.teste", Role: domain.RoleManager}
	mechanicCaller = domain.Caller{UserID: "mech-1", Username: "mecanico.teste", Role: domain.RoleMechanic}
)

func TestAdjustStock_DeltaPositivoEntra(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)
	partID := uuid.New().String()

	repo.On("IncreaseStock", mock.Anything, partID, 10).Return(
		domain.Part{ID: partID, QuantityInStock: 15}, nil)

	part, err := svc.AdjustStock(context.Background(), managerCaller, partID, 10)

	assert.NoError(t, err)
	assert.Equal(t, 15, part.QuantityInStock)
	repo.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustStock_DeltaNegativoSai(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)
	partID := uuid.New().String()

	repo.On("DecreaseStock", mock.Anything, partID, 3).Return(
		domain.Part{ID: partID, QuantityInStock: 2}, nil)

	part, err := svc.AdjustStock(context.Background(), managerCaller, partID, -3)

	assert.NoError(t, err)
	assert.Equal(t, 2, part.QuantityInStock)
	repo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustStock_DeltaZeroInvalido(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)

	_, err := svc.AdjustStock(context.Background(), managerCaller, uuid.New().String(), 0)

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok)
}

func TestAdjustStock_ApenasGerente(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)

	_, err := svc.AdjustStock(context.Background(), mechanicCaller, uuid.New().String(), 5)

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "DecreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckAvailability_SemMutacao(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)
	partID := uuid.New().String()

	repo.On("FindByID", mock.Anything, partID).Return(domain.Part{
		ID:              partID,
		Code:            "FLT-001",
		Name:            "Filtro de óleo",
		QuantityInStock: 3,
		MinimumStock:    5,
		Status:          domain.PartStatusAvailable,
	}, nil)

	result, err := svc.CheckAvailability(context.Background(), partID, 5)

	assert.NoError(t, err)
	assert.False(t, result.Sufficient)
	assert.Equal(t, 5, result.Requested)
	assert.Equal(t, 3, result.Available)
	assert.Equal(t, -2, result.Difference)
	assert.True(t, result.BelowMinimum)
	assert.NotEmpty(t, result.Reason)
}

func TestCheckAvailability_QuantidadeInvalida(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)

	_, err := svc.CheckAvailability(context.Background(), uuid.New().String(), 0)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCreate_ValidaCamposObrigatorios(t *testing.T) {
	repo := new(mockPartRepo)
	svc := newService(repo)

	_, err := svc.Create(context.Background(), managerCaller, domain.Part{Code: "  ", Name: "Filtro"})

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
