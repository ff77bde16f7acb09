package quoterepo

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

const quoteColumns = `q.id, q.vehicle_id, q.mechanic_id, q.valid_until, q.problem_description,
       q.labor_value, q.parts_value, q.total_value, q.status, q.notes, q.created_at, v.owner_id`

// QuoteRepository persiste orçamentos. Toda leitura junta o veículo para
// trazer o dono, que alimenta as checagens de autorização no serviço.
type QuoteRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewQuoteRepository cria e retorna uma nova instância do Repositório de Orçamentos.
func NewQuoteRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *QuoteRepository {
	return &QuoteRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (domain.Quote, error) {
	var q domain.Quote
	err := row.Scan(
		&q.ID, &q.VehicleID, &q.MechanicID, &q.ValidUntil, &q.ProblemDescription,
		&q.LaborValue, &q.PartsValue, &q.TotalValue, &q.Status, &q.Notes,
		&q.CreatedAt, &q.VehicleOwnerID,
	)
	return q, err
}

// Create insere um novo orçamento com status pending.
func (r *QuoteRepository) Create(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if quote.ID == "" {
		quote.ID = uuid.New().String()
	}
	quote.Status = domain.QuoteStatusPending
	quote.CreatedAt = time.Now().UTC()

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO quotes (id, vehicle_id, mechanic_id, valid_until, problem_description,
                            labor_value, parts_value, total_value, status, notes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		quote.ID, quote.VehicleID, quote.MechanicID, quote.ValidUntil, quote.ProblemDescription,
		quote.LaborValue, quote.PartsValue, quote.TotalValue, quote.Status, quote.Notes, quote.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return domain.Quote{}, errors.NewValidationError("Veículo ou mecânico informado não existe.")
		}
		return domain.Quote{}, errors.NewDBError("Falha ao criar orçamento", err)
	}

	r.logger.Info("Orçamento criado.", map[string]interface{}{"quote_id": quote.ID, "vehicle_id": quote.VehicleID})
	return quote, nil
}

// FindByID busca um orçamento, com o dono do veículo preenchido.
func (r *QuoteRepository) FindByID(ctx context.Context, id string) (domain.Quote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + quoteColumns + ` FROM quotes q JOIN vehicles v ON v.id = q.vehicle_id WHERE q.id = $1`
	quote, err := scanQuote(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Quote{}, errors.NewNotFoundError(fmt.Sprintf("Orçamento com ID %s não encontrado.", id))
	}
	if err != nil {
		return domain.Quote{}, errors.NewDBError("Falha ao buscar orçamento", err)
	}
	return quote, nil
}

// FindAll lista orçamentos com o escopo do papel aplicado na consulta:
// clientes enxergam apenas orçamentos dos seus veículos, mecânicos apenas
// os atribuídos a eles e gerentes todos.
func (r *QuoteRepository) FindAll(ctx context.Context, filter domain.QuoteFilter) ([]domain.Quote, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + quoteColumns + ` FROM quotes q JOIN vehicles v ON v.id = q.vehicle_id WHERE 1=1`
	var args []interface{}

	switch filter.RequesterRole {
	case domain.RoleCustomer:
		args = append(args, filter.RequesterID)
		query += fmt.Sprintf(" AND v.owner_id = $%d", len(args))
	case domain.RoleMechanic:
		args = append(args, filter.RequesterID)
		query += fmt.Sprintf(" AND q.mechanic_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND q.status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND q.created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND q.created_at <= $%d", len(args))
	}

	query += " ORDER BY q.created_at DESC"

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
		return nil, errors.NewDBError("Falha ao buscar orçamentos", err)
	}
	defer rows.Close()

	var quotes []domain.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler orçamento", err)
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// UpdateStatusAndNotes grava a decisão sobre o orçamento. O WHERE confere
// o status de partida: se outra decisão chegou antes, nenhuma linha é
// afetada e o chamador recebe StateError.
func (r *QuoteRepository) UpdateStatusAndNotes(ctx context.Context, id string, from, to domain.QuoteStatus, notes string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE quotes SET status = $1, notes = $2 WHERE id = $3 AND status = $4`,
		to, notes, id, from,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar orçamento", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewStateError(fmt.Sprintf("Orçamento não está mais com status %s.", from))
	}

	r.logger.Info("Status do orçamento atualizado.", map[string]interface{}{"quote_id": id, "from": from, "to": to})
	return nil
}
