package vehiclerepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

const vehicleColumns = `id, plate, brand, model, year, color, owner_id, notes, created_at`

// VehicleRepository persiste os veículos dos clientes.
type VehicleRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewVehicleRepository cria e retorna uma nova instância do Repositório de Veículos.
func NewVehicleRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *VehicleRepository {
	return &VehicleRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(row rowScanner) (domain.Vehicle, error) {
	var v domain.Vehicle
	err := row.Scan(
		&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year,
		&v.Color, &v.OwnerID, &v.Notes, &v.CreatedAt,
	)
	return v, err
}

// Create insere um novo veículo. A placa é única.
func (r *VehicleRepository) Create(ctx context.Context, vehicle domain.Vehicle) (domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	vehicle.CreatedAt = time.Now().UTC()

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO vehicles (id, plate, brand, model, year, color, owner_id, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		vehicle.ID, vehicle.Plate, vehicle.Brand, vehicle.Model, vehicle.Year,
		vehicle.Color, vehicle.OwnerID, vehicle.Notes, vehicle.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return domain.Vehicle{}, errors.NewConflictError(fmt.Sprintf("Veículo com placa %s já existe.", vehicle.Plate))
			case "23503":
				return domain.Vehicle{}, errors.NewValidationError("Proprietário informado não existe.")
			}
		}
		return domain.Vehicle{}, errors.NewDBError("Falha ao criar veículo", err)
	}

	r.logger.Info("Veículo criado.", map[string]interface{}{"vehicle_id": vehicle.ID, "plate": vehicle.Plate})
	return vehicle, nil
}

// FindByID busca um veículo pelo identificador.
func (r *VehicleRepository) FindByID(ctx context.Context, id string) (domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	vehicle, err := scanVehicle(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Vehicle{}, errors.NewNotFoundError(fmt.Sprintf("Veículo com ID %s não encontrado.", id))
	}
	if err != nil {
		return domain.Vehicle{}, errors.NewDBError("Falha ao buscar veículo", err)
	}
	return vehicle, nil
}

// FindAll lista veículos com filtros opcionais e paginação.
func (r *VehicleRepository) FindAll(ctx context.Context, filter domain.VehicleFilter) ([]domain.Vehicle, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE 1=1`
	var args []interface{}
	if filter.Plate != "" {
		args = append(args, filter.Plate)
		query += fmt.Sprintf(" AND plate = $%d", len(args))
	}
	if filter.Brand != "" {
		args = append(args, "%"+filter.Brand+"%")
		query += fmt.Sprintf(" AND brand ILIKE $%d", len(args))
	}
	if filter.Model != "" {
		args = append(args, "%"+filter.Model+"%")
		query += fmt.Sprintf(" AND model ILIKE $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar veículos", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler veículo", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// Update atualiza os dados de um veículo.
func (r *VehicleRepository) Update(ctx context.Context, vehicle domain.Vehicle) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `
        UPDATE vehicles SET plate = $1, brand = $2, model = $3, year = $4, color = $5, notes = $6
        WHERE id = $7`,
		vehicle.Plate, vehicle.Brand, vehicle.Model, vehicle.Year, vehicle.Color, vehicle.Notes, vehicle.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewConflictError(fmt.Sprintf("Veículo com placa %s já existe.", vehicle.Plate))
		}
		return errors.NewDBError("Falha ao atualizar veículo", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Veículo com ID %s não encontrado.", vehicle.ID))
	}
	return nil
}

// Delete remove um veículo.
func (r *VehicleRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao remover veículo", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Veículo com ID %s não encontrado.", id))
	}

	r.logger.Info("Veículo removido.", map[string]interface{}{"vehicle_id": id})
	return nil
}
