package partservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/policy"
)

// PartRepository define o contrato de persistência exigido pelo serviço.
type PartRepository interface {
	Create(ctx context.Context, part domain.Part) (domain.Part, error)
	FindByID(ctx context.Context, id string) (domain.Part, error)
	FindAll(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error)
	Update(ctx context.Context, part domain.Part) (domain.Part, error)
	Delete(ctx context.Context, id string) error
	DecreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error)
	IncreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error)
}

// PartService implementa o catálogo de peças e as consultas/ajustes de estoque.
type PartService struct {
	Repo   PartRepository
	Logger logger.Logger
}

// NewPartService cria e retorna uma nova instância do Serviço de Peças.
func NewPartService(repo PartRepository, logger logger.Logger) *PartService {
	return &PartService{
		Repo:   repo,
		Logger: logger,
	}
}

// Create cadastra uma nova peça no catálogo.
func (s *PartService) Create(ctx context.Context, caller domain.Caller, part domain.Part) (domain.Part, error) {
	if err := policy.Authorize(caller, policy.ActionManageCatalog, policy.Resource{}); err != nil {
		return domain.Part{}, err
	}

	part.Code = strings.TrimSpace(part.Code)
	part.Name = strings.TrimSpace(part.Name)
	if part.Code == "" || part.Name == "" {
		return domain.Part{}, errors.NewValidationError("Código e nome da peça são obrigatórios.")
	}
	if part.QuantityInStock < 0 {
		return domain.Part{}, errors.NewValidationError("Quantidade em estoque não pode ser negativa.")
	}
	if part.UnitPrice.IsNegative() {
		return domain.Part{}, errors.NewValidationError("Preço unitário não pode ser negativo.")
	}

	return s.Repo.Create(ctx, part)
}

// Get busca uma peça pelo ID.
func (s *PartService) Get(ctx context.Context, id string) (domain.Part, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Part{}, errors.NewValidationError("ID da peça inválido.")
	}
	return s.Repo.FindByID(ctx, id)
}

// List lista peças com filtros opcionais.
func (s *PartService) List(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	return s.Repo.FindAll(ctx, filter)
}

// Update altera os dados cadastrais da peça. Quantidade e status derivado
// não passam por aqui; apenas o ajuste de estoque os altera.
func (s *PartService) Update(ctx context.Context, caller domain.Caller, part domain.Part) (domain.Part, error) {
	if err := policy.Authorize(caller, policy.ActionManageCatalog, policy.Resource{}); err != nil {
		return domain.Part{}, err
	}
	if _, err := uuid.Parse(part.ID); err != nil {
		return domain.Part{}, errors.NewValidationError("ID da peça inválido.")
	}
	if part.UnitPrice.IsNegative() {
		return domain.Part{}, errors.NewValidationError("Preço unitário não pode ser negativo.")
	}
	return s.Repo.Update(ctx, part)
}

// Delete remove uma peça do catálogo.
func (s *PartService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if err := policy.Authorize(caller, policy.ActionManageCatalog, policy.Resource{}); err != nil {
		return err
	}
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError("ID da peça inválido.")
	}
	return s.Repo.Delete(ctx, id)
}

// CheckAvailability consulta, sem mutação, se há estoque para a quantidade
// solicitada.
func (s *PartService) CheckAvailability(ctx context.Context, partID string, qty int) (domain.AvailabilityResult, error) {
	if _, err := uuid.Parse(partID); err != nil {
		return domain.AvailabilityResult{}, errors.NewValidationError("ID da peça inválido.")
	}
	if qty <= 0 {
		return domain.AvailabilityResult{}, errors.NewValidationError("Quantidade deve ser maior que zero.")
	}

	part, err := s.Repo.FindByID(ctx, partID)
	if err != nil {
		return domain.AvailabilityResult{}, err
	}

	ok, reason := part.CheckAvailability(qty)
	return domain.AvailabilityResult{
		PartID:       part.ID,
		Code:         part.Code,
		Name:         part.Name,
		Requested:    qty,
		Available:    part.QuantityInStock,
		Sufficient:   ok,
		Difference:   part.QuantityInStock - qty,
		BelowMinimum: part.BelowMinimum(),
		Reason:       reason,
	}, nil
}

// AdjustStock aplica um ajuste manual de estoque. Delta positivo entra,
// delta negativo sai; a baixa passa pela mesma checagem de disponibilidade
// do consumo por ordem de serviço.
func (s *PartService) AdjustStock(ctx context.Context, caller domain.Caller, partID string, delta int) (domain.Part, error) {
	if err := policy.Authorize(caller, policy.ActionAdjustStock, policy.Resource{}); err != nil {
		return domain.Part{}, err
	}
	if _, err := uuid.Parse(partID); err != nil {
		return domain.Part{}, errors.NewValidationError("ID da peça inválido.")
	}
	if delta == 0 {
		return domain.Part{}, errors.NewValidationError("Delta de ajuste não pode ser zero.")
	}

	if delta > 0 {
		return s.Repo.IncreaseStock(ctx, partID, delta)
	}
	return s.Repo.DecreaseStock(ctx, partID, -delta)
}
