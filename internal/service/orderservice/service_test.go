package orderservice

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

// mockOrderRepo simula o repositório de ordens de serviço.
type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) CreateFromQuote(ctx context.Context, order domain.ServiceOrder) (domain.ServiceOrder, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.ServiceOrder), args.Error(1)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id string) (domain.ServiceOrder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.ServiceOrder), args.Error(1)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.ServiceOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ServiceOrder), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *mockOrderRepo) AddItem(ctx context.Context, item domain.PartItem) (domain.PartItem, error) {
	args := m.Called(ctx, item)
	return args.Get(0).(domain.PartItem), args.Error(1)
}

func (m *mockOrderRepo) DeleteItem(ctx context.Context, orderID, itemID string) error {
	args := m.Called(ctx, orderID, itemID)
	return args.Error(0)
}

func (m *mockOrderRepo) Conclude(ctx context.Context, orderID string, now time.Time) (domain.ServiceOrder, error) {
	args := m.Called(ctx, orderID, now)
	return args.Get(0).(domain.ServiceOrder), args.Error(1)
}

func (m *mockOrderRepo) Cancel(ctx context.Context, orderID string) (domain.ServiceOrder, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(domain.ServiceOrder), args.Error(1)
}

// mockQuoteReader simula a leitura de orçamentos.
type mockQuoteReader struct {
	mock.Mock
}

func (m *mockQuoteReader) FindByID(ctx context.Context, id string) (domain.Quote, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Quote), args.Error(1)
}

// mockPartReader simula a leitura de peças.
type mockPartReader struct {
	mock.Mock
}

func (m *mockPartReader) FindByID(ctx context.Context, id string) (domain.Part, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Part), args.Error(1)
}

func newService(repo *mockOrderRepo, quotes *mockQuoteReader, parts *mockPartReader) *OrderService {
	return NewOrderService(repo, quotes, parts, logger.NewLogger("error"))
}

var (
	mechanicCaller = domain.Caller{UserID: "mech-1", Username: "mecanico.teste", Role: domain.RoleMechanic}
	managerCaller  = domain.Caller{UserID: "mgr-1", Username: "gerente.teste", Role: domain.RoleManager}
	customerCaller = domain.Caller{UserID: "owner-1", Username: "cliente.teste", Role: domain.RoleCustomer}
)

func approvedQuote(id string) domain.Quote {
	return domain.Quote{
		ID:             id,
		MechanicID:     "mech-1",
		VehicleOwnerID: "owner-1",
		Status:         domain.QuoteStatusApproved,
	}
}

func TestCreateFromQuote_MecanicoResponsavel(t *testing.T) {
	repo := new(mockOrderRepo)
	quotes := new(mockQuoteReader)
	svc := newService(repo, quotes, new(mockPartReader))

	quoteID := uuid.New().String()
	quotes.On("FindByID", mock.Anything, quoteID).Return(approvedQuote(quoteID), nil)
	repo.On("CreateFromQuote", mock.Anything, mock.MatchedBy(func(o domain.ServiceOrder) bool {
		return o.QuoteID == quoteID && !o.StartDate.IsZero()
	})).Return(domain.ServiceOrder{ID: uuid.New().String(), QuoteID: quoteID}, nil)

	order := domain.ServiceOrder{
		QuoteID:       quoteID,
		EstimatedDate: time.Now().AddDate(0, 0, 7),
		EntryMileage:  82000,
	}

	_, err := svc.CreateFromQuote(context.Background(), mechanicCaller, order)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateFromQuote_OutroMecanicoNegado(t *testing.T) {
	repo := new(mockOrderRepo)
	quotes := new(mockQuoteReader)
	svc := newService(repo, quotes, new(mockPartReader))

	quoteID := uuid.New().String()
	quotes.On("FindByID", mock.Anything, quoteID).Return(approvedQuote(quoteID), nil)

	outro := domain.Caller{UserID: "mech-2", Role: domain.RoleMechanic}
	order := domain.ServiceOrder{
		QuoteID:       quoteID,
		EstimatedDate: time.Now().AddDate(0, 0, 7),
	}

	_, err := svc.CreateFromQuote(context.Background(), outro, order)

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "CreateFromQuote", mock.Anything, mock.Anything)
}

func TestUpdateStatus_AlvoGenericoValido(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(
		domain.ServiceOrder{ID: id, Status: domain.OrderStatusAwaiting}, nil)
	repo.On("UpdateStatus", mock.Anything, id,
		domain.OrderStatusAwaiting, domain.OrderStatusInProgress).Return(nil)

	order, err := svc.UpdateStatus(context.Background(), mechanicCaller, id, domain.OrderStatusInProgress)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProgress, order.Status)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_ConclusaoRecusadaNoEndpointGenerico(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	_, err := svc.UpdateStatus(context.Background(), mechanicCaller, uuid.New().String(), domain.OrderStatusConcluded)

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_TransicaoInvalida(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	id := uuid.New().String()
	repo.On("FindByID", mock.Anything, id).Return(
		domain.ServiceOrder{ID: id, Status: domain.OrderStatusCancelled}, nil)

	_, err := svc.UpdateStatus(context.Background(), managerCaller, id, domain.OrderStatusInProgress)

	assert.Error(t, err)
	_, ok := err.(*apperror.StateError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddPart_CongelaPrecoDeCatalogo(t *testing.T) {
	repo := new(mockOrderRepo)
	parts := new(mockPartReader)
	svc := newService(repo, new(mockQuoteReader), parts)

	orderID := uuid.New().String()
	partID := uuid.New().String()
	catalogPrice := decimal.RequireFromString("89.90")

	parts.On("FindByID", mock.Anything, partID).Return(
		domain.Part{ID: partID, UnitPrice: catalogPrice}, nil)
	repo.On("AddItem", mock.Anything, mock.MatchedBy(func(i domain.PartItem) bool {
		return i.UnitPriceCharged.Equal(catalogPrice)
	})).Return(domain.PartItem{}, nil)

	item := domain.PartItem{OrderID: orderID, PartID: partID, Quantity: 2}

	_, err := svc.AddPart(context.Background(), mechanicCaller, item)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAddPart_PrecoInformadoPrevalece(t *testing.T) {
	repo := new(mockOrderRepo)
	parts := new(mockPartReader)
	svc := newService(repo, new(mockQuoteReader), parts)

	negotiated := decimal.RequireFromString("75.00")
	item := domain.PartItem{
		OrderID:          uuid.New().String(),
		PartID:           uuid.New().String(),
		Quantity:         1,
		UnitPriceCharged: negotiated,
	}

	repo.On("AddItem", mock.Anything, mock.MatchedBy(func(i domain.PartItem) bool {
		return i.UnitPriceCharged.Equal(negotiated)
	})).Return(item, nil)

	_, err := svc.AddPart(context.Background(), mechanicCaller, item)

	assert.NoError(t, err)
	parts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestAddPart_ClienteNegado(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	item := domain.PartItem{OrderID: uuid.New().String(), PartID: uuid.New().String(), Quantity: 1}

	_, err := svc.AddPart(context.Background(), customerCaller, item)

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
}

func TestConclude_DelegaAoRepositorio(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	id := uuid.New().String()
	repo.On("Conclude", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(
		domain.ServiceOrder{ID: id, Status: domain.OrderStatusConcluded}, nil)

	order, err := svc.Conclude(context.Background(), mechanicCaller, id)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConcluded, order.Status)
	repo.AssertExpectations(t)
}

func TestConclude_FaltaDeEstoquePropagaDetalhe(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	id := uuid.New().String()
	stockErr := apperror.NewStockError("Estoque insuficiente para concluir ordem de serviço.",
		[]apperror.StockShortfall{{Code: "FLT-001", Requested: 4, Available: 1}})
	repo.On("Conclude", mock.Anything, id, mock.AnythingOfType("time.Time")).Return(
		domain.ServiceOrder{}, stockErr)

	_, err := svc.Conclude(context.Background(), managerCaller, id)

	assert.Error(t, err)
	typed, ok := err.(*apperror.StockError)
	assert.True(t, ok, "esperado StockError, obtido %T", err)
	assert.Len(t, typed.Items, 1)
	assert.Equal(t, "FLT-001", typed.Items[0].Code)
}

func TestCancel_DelegaAoRepositorio(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	id := uuid.New().String()
	repo.On("Cancel", mock.Anything, id).Return(
		domain.ServiceOrder{ID: id, Status: domain.OrderStatusCancelled}, nil)

	order, err := svc.Cancel(context.Background(), managerCaller, id)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
}

func TestCancel_ClienteNegado(t *testing.T) {
	repo := new(mockOrderRepo)
	svc := newService(repo, new(mockQuoteReader), new(mockPartReader))

	_, err := svc.Cancel(context.Background(), customerCaller, uuid.New().String())

	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}
