package customerrepo

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

// CustomerRepository persiste o cadastro de clientes da oficina.
type CustomerRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCustomerRepository cria e retorna uma nova instância do Repositório de Clientes.
func NewCustomerRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CustomerRepository {
	return &CustomerRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// Create insere um novo cliente. E-mail é único.
func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	customer.CreatedAt = time.Now().UTC()

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO customers (id, name, email, phone, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.Customer{}, errors.NewConflictError(fmt.Sprintf("Cliente com e-mail %s já existe.", customer.Email))
		}
		return domain.Customer{}, errors.NewDBError("Falha ao criar cliente", err)
	}

	r.logger.Info("Cliente criado.", map[string]interface{}{"customer_id": customer.ID})
	return customer, nil
}

// FindByID busca um cliente pelo identificador.
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (domain.Customer, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var c domain.Customer
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Customer{}, errors.NewNotFoundError(fmt.Sprintf("Cliente com ID %s não encontrado.", id))
	}
	if err != nil {
		return domain.Customer{}, errors.NewDBError("Falha ao buscar cliente", err)
	}
	return c, nil
}

// FindAll lista os clientes em ordem alfabética.
func (r *CustomerRepository) FindAll(ctx context.Context) ([]domain.Customer, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout,
		`SELECT id, name, email, phone, created_at FROM customers ORDER BY name`)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar clientes", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, errors.NewDBError("Falha ao ler cliente", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// Update atualiza os dados cadastrais de um cliente.
func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE customers SET name = $1, email = $2, phone = $3 WHERE id = $4`,
		customer.Name, customer.Email, customer.Phone, customer.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return errors.NewConflictError(fmt.Sprintf("Cliente com e-mail %s já existe.", customer.Email))
		}
		return errors.NewDBError("Falha ao atualizar cliente", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Cliente com ID %s não encontrado.", customer.ID))
	}
	return nil
}

// Delete remove um cliente do cadastro.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return errors.NewDBError("Falha ao remover cliente", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Cliente com ID %s não encontrado.", id))
	}

	r.logger.Info("Cliente removido.", map[string]interface{}{"customer_id": id})
	return nil
}
