package quoteservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/policy"
)

// QuoteRepository define o contrato de persistência exigido pelo serviço.
type QuoteRepository interface {
	Create(ctx context.Context, quote domain.Quote) (domain.Quote, error)
	FindByID(ctx context.Context, id string) (domain.Quote, error)
	FindAll(ctx context.Context, filter domain.QuoteFilter) ([]domain.Quote, error)
	UpdateStatusAndNotes(ctx context.Context, id string, from, to domain.QuoteStatus, notes string) error
}

// QuoteService implementa o ciclo de vida do orçamento: criação, consulta
// e as decisões de aprovação e rejeição pelo cliente.
type QuoteService struct {
	Repo   QuoteRepository
	Logger logger.Logger
}

// NewQuoteService cria e retorna uma nova instância do Serviço de Orçamentos.
func NewQuoteService(repo QuoteRepository, logger logger.Logger) *QuoteService {
	return &QuoteService{
		Repo:   repo,
		Logger: logger,
	}
}

// Create valida e grava um novo orçamento. O total é sempre derivado de
// mão de obra + peças, ignorando qualquer valor enviado pelo chamador.
func (s *QuoteService) Create(ctx context.Context, caller domain.Caller, quote domain.Quote) (domain.Quote, error) {
	if err := policy.Authorize(caller, policy.ActionCreateQuote, policy.Resource{}); err != nil {
		return domain.Quote{}, err
	}

	if _, err := uuid.Parse(quote.VehicleID); err != nil {
		return domain.Quote{}, errors.NewValidationError("ID do veículo inválido.")
	}
	if quote.MechanicID == "" {
		quote.MechanicID = caller.UserID
	}
	if _, err := uuid.Parse(quote.MechanicID); err != nil {
		return domain.Quote{}, errors.NewValidationError("ID do mecânico inválido.")
	}
	if strings.TrimSpace(quote.ProblemDescription) == "" {
		return domain.Quote{}, errors.NewValidationError("Descrição do problema é obrigatória.")
	}
	if quote.LaborValue.IsNegative() || quote.PartsValue.IsNegative() {
		return domain.Quote{}, errors.NewValidationError("Valores do orçamento não podem ser negativos.")
	}
	if quote.ValidUntil.IsZero() {
		return domain.Quote{}, errors.NewValidationError("Data de validade é obrigatória.")
	}

	quote.RecomputeTotal()
	return s.Repo.Create(ctx, quote)
}

// Get busca um orçamento, aplicando a regra de acesso por papel.
func (s *QuoteService) Get(ctx context.Context, caller domain.Caller, id string) (domain.Quote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quote{}, errors.NewValidationError("ID do orçamento inválido.")
	}

	quote, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	res := policy.Resource{OwnerID: quote.VehicleOwnerID, MechanicID: quote.MechanicID}
	if err := policy.Authorize(caller, policy.ActionReadQuote, res); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

// List lista orçamentos com o escopo do papel do chamador.
func (s *QuoteService) List(ctx context.Context, caller domain.Caller, filter domain.QuoteFilter) ([]domain.Quote, error) {
	filter.RequesterID = caller.UserID
	filter.RequesterRole = caller.Role
	return s.Repo.FindAll(ctx, filter)
}

// Approve registra a aprovação do orçamento pelo cliente dono do veículo.
// Orçamento vencido transiciona para expired e a aprovação falha — essa
// transição é persistida mesmo com a falha.
func (s *QuoteService) Approve(ctx context.Context, caller domain.Caller, id string) (domain.Quote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quote{}, errors.NewValidationError("ID do orçamento inválido.")
	}

	quote, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	res := policy.Resource{OwnerID: quote.VehicleOwnerID, MechanicID: quote.MechanicID}
	if err := policy.Authorize(caller, policy.ActionApproveQuote, res); err != nil {
		return domain.Quote{}, err
	}

	prev := quote.Status
	ok, msg := quote.Approve(time.Now())
	if !ok {
		if quote.Status != prev {
			// A expiração detectada na tentativa de aprovação fica gravada.
			if err := s.Repo.UpdateStatusAndNotes(ctx, id, prev, quote.Status, quote.Notes); err != nil {
				return domain.Quote{}, err
			}
		}
		return domain.Quote{}, errors.NewStateError(msg)
	}

	if err := s.Repo.UpdateStatusAndNotes(ctx, id, prev, quote.Status, quote.Notes); err != nil {
		return domain.Quote{}, err
	}

	s.Logger.Info("Orçamento aprovado.", map[string]interface{}{"quote_id": id, "user_id": caller.UserID})
	return quote, nil
}

// Reject registra a rejeição do orçamento com o motivo anexado, datado e
// atribuído, ao histórico de observações.
func (s *QuoteService) Reject(ctx context.Context, caller domain.Caller, id, reason string) (domain.Quote, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quote{}, errors.NewValidationError("ID do orçamento inválido.")
	}

	quote, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return domain.Quote{}, err
	}

	res := policy.Resource{OwnerID: quote.VehicleOwnerID, MechanicID: quote.MechanicID}
	if err := policy.Authorize(caller, policy.ActionRejectQuote, res); err != nil {
		return domain.Quote{}, err
	}

	prev := quote.Status
	ok, msg := quote.Reject(reason, caller.Username, time.Now())
	if !ok {
		if prev != domain.QuoteStatusPending {
			return domain.Quote{}, errors.NewStateError(msg)
		}
		return domain.Quote{}, errors.NewValidationError(msg)
	}

	if err := s.Repo.UpdateStatusAndNotes(ctx, id, prev, quote.Status, quote.Notes); err != nil {
		return domain.Quote{}, err
	}

	s.Logger.Info("Orçamento rejeitado.", map[string]interface{}{"quote_id": id, "user_id": caller.UserID})
	return quote, nil
}
