package customerservice

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

// CustomerRepository define o contrato de persistência exigido pelo serviço.
type CustomerRepository interface {
	Create(ctx context.Context, customer domain.Customer) (domain.Customer, error)
	FindByID(ctx context.Context, id string) (domain.Customer, error)
	FindAll(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, customer domain.Customer) error
	Delete(ctx context.Context, id string) error
}

// CustomerService implementa o cadastro de clientes da oficina.
type CustomerService struct {
	Repo   CustomerRepository
	Logger logger.Logger
}

// NewCustomerService cria e retorna uma nova instância do Serviço de Clientes.
func NewCustomerService(repo CustomerRepository, logger logger.Logger) *CustomerService {
	return &CustomerService{
		Repo:   repo,
		Logger: logger,
	}
}

func validate(customer domain.Customer) error {
	if strings.TrimSpace(customer.Name) == "" {
		return errors.NewValidationError("Nome do cliente é obrigatório.")
	}
	if !strings.Contains(customer.Email, "@") {
		return errors.NewValidationError("E-mail inválido.")
	}
	return nil
}

// Create cadastra um novo cliente.
func (s *CustomerService) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if err := validate(customer); err != nil {
		return domain.Customer{}, err
	}
	return s.Repo.Create(ctx, customer)
}

// Get busca um cliente pelo ID.
func (s *CustomerService) Get(ctx context.Context, id string) (domain.Customer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Customer{}, errors.NewValidationError("ID do cliente inválido.")
	}
	return s.Repo.FindByID(ctx, id)
}

// List lista todos os clientes.
func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	return s.Repo.FindAll(ctx)
}

// Update atualiza os dados cadastrais de um cliente.
func (s *CustomerService) Update(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if _, err := uuid.Parse(customer.ID); err != nil {
		return domain.Customer{}, errors.NewValidationError("ID do cliente inválido.")
	}
	if err := validate(customer); err != nil {
		return domain.Customer{}, err
	}
	if err := s.Repo.Update(ctx, customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

// Delete remove um cliente.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError("ID do cliente inválido.")
	}
	return s.Repo.Delete(ctx, id)
}
