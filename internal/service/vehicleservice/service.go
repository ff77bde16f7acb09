package vehicleservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

// VehicleRepository define o contrato de persistência exigido pelo serviço.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error)
	FindByID(ctx context.Context, id string) (domain.Vehicle, error)
	FindAll(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error)
	Update(ctx context.Context, vehicle domain.Vehicle) error
	Delete(ctx context.Context, id string) error
}

// VehicleService implementa o cadastro de veículos dos clientes.
type VehicleService struct {
	Repo   VehicleRepository
	Logger logger.Logger
}

// NewVehicleService cria e retorna uma nova instância do Serviço de Veículos.
func NewVehicleService(repo VehicleRepository, logger logger.Logger) *VehicleService {
	return &VehicleService{
		Repo:   repo,
		Logger: logger,
	}
}

func validate(vehicle domain.Vehicle) error {
	if strings.TrimSpace(vehicle.Plate) == "" {
		return errors.NewValidationError("Placa do veículo é obrigatória.")
	}
	if strings.TrimSpace(vehicle.Brand) == "" || strings.TrimSpace(vehicle.Model) == "" {
		return errors.NewValidationError("Marca e modelo do veículo são obrigatórios.")
	}
	if vehicle.Year < 1900 || vehicle.Year > time.Now().Year()+1 {
		return errors.NewValidationError("Ano do veículo inválido.")
	}
	return nil
}

// Create cadastra um novo veículo vinculado a um proprietário.
func (s *VehicleService) Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	if err := validate(vehicle); err != nil {
		return domain.Vehicle{}, err
	}
	if _, err := uuid.Parse(vehicle.OwnerID); err != nil {
		return domain.Vehicle{}, errors.NewValidationError("ID do proprietário inválido.")
	}
	vehicle.Plate = strings.ToUpper(strings.TrimSpace(vehicle.Plate))
	return s.Repo.Create(ctx, vehicle)
}

// Get busca um veículo pelo ID.
func (s *VehicleService) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Vehicle{}, errors.NewValidationError("ID do veículo inválido.")
	}
	return s.Repo.FindByID(ctx, id)
}

// List lista veículos com filtros opcionais.
func (s *VehicleService) List(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	return s.Repo.FindAll(ctx, filter)
}

// Update atualiza os dados de um veículo. O proprietário não muda por aqui.
func (s *VehicleService) Update(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	if _, err := uuid.Parse(vehicle.ID); err != nil {
		return domain.Vehicle{}, errors.NewValidationError("ID do veículo inválido.")
	}
	if err := validate(vehicle); err != nil {
		return domain.Vehicle{}, err
	}
	vehicle.Plate = strings.ToUpper(strings.TrimSpace(vehicle.Plate))
	if err := s.Repo.Update(ctx, vehicle); err != nil {
		return domain.Vehicle{}, err
	}
	return vehicle, nil
}

// Delete remove um veículo.
func (s *VehicleService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.NewValidationError("ID do veículo inválido.")
	}
	return s.Repo.Delete(ctx, id)
}
