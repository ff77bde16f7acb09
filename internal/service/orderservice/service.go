package orderservice

import (
	"context"
	"time"

	"github.com/google/uuid"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/policy"
)

// OrderRepository define o contrato de persistência exigido pelo serviço.
type OrderRepository interface {
	CreateFromQuote(ctx context.Context, order domain.ServiceOrder) (domain.ServiceOrder, error)
	FindByID(ctx context.Context, id string) (domain.ServiceOrder, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.ServiceOrder, error)
	UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error
	AddItem(ctx context.Context, item domain.PartItem) (domain.PartItem, error)
	DeleteItem(ctx context.Context, orderID, itemID string) error
	Conclude(ctx context.Context, orderID string, now time.Time) (domain.ServiceOrder, error)
	Cancel(ctx context.Context, orderID string) (domain.ServiceOrder, error)
}

// QuoteReader busca orçamentos para as checagens de propriedade e vínculo.
type QuoteReader interface {
	FindByID(ctx context.Context, id string) (domain.Quote, error)
}

// PartReader busca peças para preencher o preço cobrado na linha.
type PartReader interface {
	FindByID(ctx context.Context, id string) (domain.Part, error)
}

// OrderService implementa o ciclo de vida da ordem de serviço: geração a
// partir de orçamento aprovado, andamento, uso de peças, conclusão com
// baixa de estoque e cancelamento com devolução.
type OrderService struct {
	Repo   OrderRepository
	Quotes QuoteReader
	Parts  PartReader
	Logger logger.Logger
}

// NewOrderService cria e retorna uma nova instância do Serviço de Ordens.
func NewOrderService(repo OrderRepository, quotes QuoteReader, parts PartReader, logger logger.Logger) *OrderService {
	return &OrderService{
		Repo:   repo,
		Quotes: quotes,
		Parts:  parts,
		Logger: logger,
	}
}

// genericTargets limita o endpoint genérico de status aos estados de
// andamento. Conclusão e cancelamento têm ações dedicadas.
var genericTargets = map[domain.OrderStatus]bool{
	domain.OrderStatusAwaiting:      true,
	domain.OrderStatusInProgress:    true,
	domain.OrderStatusAwaitingParts: true,
}

// CreateFromQuote gera a ordem de serviço de um orçamento aprovado.
func (s *OrderService) CreateFromQuote(ctx context.Context, caller domain.Caller, order domain.ServiceOrder) (domain.ServiceOrder, error) {
	if _, err := uuid.Parse(order.QuoteID); err != nil {
		return domain.ServiceOrder{}, errors.NewValidationError("ID do orçamento inválido.")
	}
	if order.EntryMileage < 0 {
		return domain.ServiceOrder{}, errors.NewValidationError("Quilometragem de entrada não pode ser negativa.")
	}
	if order.EstimatedDate.IsZero() {
		return domain.ServiceOrder{}, errors.NewValidationError("Data prevista é obrigatória.")
	}
	if order.StartDate.IsZero() {
		order.StartDate = time.Now().UTC()
	}

	quote, err := s.Quotes.FindByID(ctx, order.QuoteID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	res := policy.Resource{MechanicID: quote.MechanicID}
	if err := policy.Authorize(caller, policy.ActionGenerateOrder, res); err != nil {
		return domain.ServiceOrder{}, err
	}

	return s.Repo.CreateFromQuote(ctx, order)
}

// Get busca uma ordem com seus itens, aplicando a regra de acesso por papel.
func (s *OrderService) Get(ctx context.Context, caller domain.Caller, id string) (domain.ServiceOrder, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ServiceOrder{}, errors.NewValidationError("ID da ordem inválido.")
	}

	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	res, err := s.resourceFor(ctx, order)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if err := policy.Authorize(caller, policy.ActionReadOrder, res); err != nil {
		return domain.ServiceOrder{}, err
	}
	return order, nil
}

// List lista ordens de serviço. Restrita à equipe da oficina; clientes
// consultam suas ordens individualmente.
func (s *OrderService) List(ctx context.Context, caller domain.Caller, filter domain.OrderFilter) ([]domain.ServiceOrder, error) {
	if err := policy.Authorize(caller, policy.ActionReadOrder, policy.Resource{}); err != nil {
		return nil, err
	}
	return s.Repo.FindAll(ctx, filter)
}

// UpdateStatus aplica uma transição genérica de andamento. Conclusão e
// cancelamento são recusados aqui e só acontecem pelas ações dedicadas.
func (s *OrderService) UpdateStatus(ctx context.Context, caller domain.Caller, id string, target domain.OrderStatus) (domain.ServiceOrder, error) {
	if err := policy.Authorize(caller, policy.ActionUpdateOrderStatus, policy.Resource{}); err != nil {
		return domain.ServiceOrder{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ServiceOrder{}, errors.NewValidationError("ID da ordem inválido.")
	}
	if !genericTargets[target] {
		return domain.ServiceOrder{}, errors.NewValidationError("Status alvo inválido. Use as ações de conclusão ou cancelamento.")
	}

	order, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if !order.CanTransitionTo(target) {
		return domain.ServiceOrder{}, errors.NewStateError("Transição de status não permitida: " + string(order.Status) + " -> " + string(target) + ".")
	}

	if err := s.Repo.UpdateStatus(ctx, id, order.Status, target); err != nil {
		return domain.ServiceOrder{}, err
	}
	order.Status = target

	s.Logger.Info("Status da ordem atualizado.", map[string]interface{}{"order_id": id, "status": target})
	return order, nil
}

// AddPart adiciona uma linha de peça à ordem. Sem preço informado, a linha
// congela o preço de catálogo vigente no momento da adição.
func (s *OrderService) AddPart(ctx context.Context, caller domain.Caller, item domain.PartItem) (domain.PartItem, error) {
	if err := policy.Authorize(caller, policy.ActionAddPart, policy.Resource{}); err != nil {
		return domain.PartItem{}, err
	}
	if _, err := uuid.Parse(item.OrderID); err != nil {
		return domain.PartItem{}, errors.NewValidationError("ID da ordem inválido.")
	}
	if _, err := uuid.Parse(item.PartID); err != nil {
		return domain.PartItem{}, errors.NewValidationError("ID da peça inválido.")
	}
	if item.Quantity <= 0 {
		return domain.PartItem{}, errors.NewValidationError("Quantidade deve ser maior que zero.")
	}
	if item.UnitPriceCharged.IsNegative() {
		return domain.PartItem{}, errors.NewValidationError("Preço unitário não pode ser negativo.")
	}

	if item.UnitPriceCharged.IsZero() {
		part, err := s.Parts.FindByID(ctx, item.PartID)
		if err != nil {
			return domain.PartItem{}, err
		}
		item.UnitPriceCharged = part.UnitPrice
	}

	return s.Repo.AddItem(ctx, item)
}

// RemovePart remove uma linha de peça da ordem, devolvendo o estoque se a
// linha já tinha sido baixada.
func (s *OrderService) RemovePart(ctx context.Context, caller domain.Caller, orderID, itemID string) error {
	if err := policy.Authorize(caller, policy.ActionRemovePart, policy.Resource{}); err != nil {
		return err
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return errors.NewValidationError("ID da ordem inválido.")
	}
	if _, err := uuid.Parse(itemID); err != nil {
		return errors.NewValidationError("ID do item inválido.")
	}
	return s.Repo.DeleteItem(ctx, orderID, itemID)
}

// Conclude conclui a ordem, baixando o estoque de todas as linhas em uma
// única transação.
func (s *OrderService) Conclude(ctx context.Context, caller domain.Caller, id string) (domain.ServiceOrder, error) {
	if err := policy.Authorize(caller, policy.ActionConcludeOrder, policy.Resource{}); err != nil {
		return domain.ServiceOrder{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ServiceOrder{}, errors.NewValidationError("ID da ordem inválido.")
	}
	return s.Repo.Conclude(ctx, id, time.Now())
}

// Cancel cancela a ordem e devolve ao estoque as linhas já baixadas.
func (s *OrderService) Cancel(ctx context.Context, caller domain.Caller, id string) (domain.ServiceOrder, error) {
	if err := policy.Authorize(caller, policy.ActionCancelOrder, policy.Resource{}); err != nil {
		return domain.ServiceOrder{}, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return domain.ServiceOrder{}, errors.NewValidationError("ID da ordem inválido.")
	}
	return s.Repo.Cancel(ctx, id)
}

// resourceFor monta o recurso de autorização da ordem a partir do
// orçamento de origem (dono do veículo e mecânico responsável).
func (s *OrderService) resourceFor(ctx context.Context, order domain.ServiceOrder) (policy.Resource, error) {
	quote, err := s.Quotes.FindByID(ctx, order.QuoteID)
	if err != nil {
		return policy.Resource{}, err
	}
	return policy.Resource{OwnerID: quote.VehicleOwnerID, MechanicID: quote.MechanicID}, nil
}
