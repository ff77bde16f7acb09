package partrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/cache"
	"oficinago/internal/pkg/logger"
)

// Chave de cache para peças (estratégia Cache-Aside).
const partCacheKey = "part:%s"

const partColumns = `id, code, name, description, manufacturer, quantity_in_stock, minimum_stock, unit_price, status, created_at`

// PartRepository é o acesso a dados das peças e o razão de estoque:
// toda mutação de quantity_in_stock/status passa por DecreaseStock e
// IncreaseStock, que rodam em transação com bloqueio de linha.
type PartRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewPartRepository cria e retorna uma nova instância do Repositório de Peças.
func NewPartRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *PartRepository {
	return &PartRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPart(row rowScanner) (domain.Part, error) {
	var p domain.Part
	err := row.Scan(
		&p.ID, &p.Code, &p.Name, &p.Description, &p.Manufacturer,
		&p.QuantityInStock, &p.MinimumStock, &p.UnitPrice, &p.Status, &p.CreatedAt,
	)
	return p, err
}

// Create insere uma nova peça no catálogo.
func (r *PartRepository) Create(ctx context.Context, part domain.Part) (domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if part.ID == "" {
		part.ID = uuid.New().String()
	}
	if part.Status == "" {
		if part.QuantityInStock == 0 {
			part.Status = domain.PartStatusOutOfStock
		} else {
			part.Status = domain.PartStatusAvailable
		}
	}
	part.CreatedAt = time.Now().UTC()

	query := `
        INSERT INTO parts (id, code, name, description, manufacturer, quantity_in_stock, minimum_stock, unit_price, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.DB.ExecContext(ctxTimeout, query,
		part.ID, part.Code, part.Name, part.Description, part.Manufacturer,
		part.QuantityInStock, part.MinimumStock, part.UnitPrice, part.Status, part.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.Part{}, errors.NewConflictError(fmt.Sprintf("Já existe peça com o código %s.", part.Code))
		}
		r.logger.Error("Falha ao inserir peça no DB.", err)
		return domain.Part{}, errors.NewDBError("Falha ao criar peça", err)
	}

	r.logger.Info("Peça criada com sucesso.", map[string]interface{}{"id": part.ID, "code": part.Code})
	return part, nil
}

// FindByID busca uma peça pelo ID, utilizando a estratégia Cache-Aside.
func (r *PartRepository) FindByID(ctx context.Context, id string) (domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(partCacheKey, id)
	var part domain.Part

	// 1. Tentar obter do Cache (Redis)
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cachedData), &part) == nil {
			return part, nil
		}
		// Desserialização falhou: segue para o DB
	}

	// 2. Busca no Banco de Dados (PostgreSQL)
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`
	part, err = scanPart(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.Part{}, errors.NewNotFoundError(fmt.Sprintf("Peça com ID %s não existe na base de dados.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar peça no DB.", err)
		return domain.Part{}, errors.NewDBError("Falha ao buscar peça", err)
	}

	// 3. Popular o cache para futuras requisições (TTL de 5 minutos)
	if partJSON, marshalErr := json.Marshal(part); marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, partJSON, 5*time.Minute)
	}

	return part, nil
}

// FindAll busca peças com filtros de fabricante, status e estoque mínimo.
func (r *PartRepository) FindAll(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var conditions []string
	var args []interface{}

	if filter.Manufacturer != "" {
		args = append(args, "%"+filter.Manufacturer+"%")
		conditions = append(conditions, fmt.Sprintf("manufacturer ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.BelowMinimum != nil {
		if *filter.BelowMinimum {
			conditions = append(conditions, "quantity_in_stock <= minimum_stock")
		} else {
			conditions = append(conditions, "quantity_in_stock > minimum_stock")
		}
	}

	query := `SELECT ` + partColumns + ` FROM parts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY name"

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
		r.logger.Error("Falha ao executar FindAll de peças.", err)
		return nil, errors.NewDBError("Falha ao buscar peças", err)
	}
	defer rows.Close()

	var parts []domain.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler peça", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// Update atualiza os campos de catálogo da peça. Quantidade em estoque
// nunca é gravada por aqui; apenas o razão (Decrease/Increase) mexe nela.
// O status só é aceito para marcar/desmarcar descontinuada.
func (r *PartRepository) Update(ctx context.Context, part domain.Part) (domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE parts
        SET code = $1, name = $2, description = $3, manufacturer = $4,
            minimum_stock = $5, unit_price = $6, status = $7
        WHERE id = $8
        RETURNING ` + partColumns

	updated, err := scanPart(r.DB.QueryRowContext(ctxTimeout, query,
		part.Code, part.Name, part.Description, part.Manufacturer,
		part.MinimumStock, part.UnitPrice, part.Status, part.ID,
	))
	if err == sql.ErrNoRows {
		return domain.Part{}, errors.NewNotFoundError(fmt.Sprintf("Peça com ID %s não encontrada.", part.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar peça no DB.", err)
		return domain.Part{}, errors.NewDBError("Falha ao atualizar peça", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(partCacheKey, part.ID))
	return updated, nil
}

// Delete remove a peça do catálogo.
func (r *PartRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.NewConflictError("Peça em uso por ordens de serviço não pode ser removida.")
		}
		r.logger.Error("Falha ao remover peça no DB.", err)
		return errors.NewDBError("Falha ao remover peça", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("Peça com ID %s não encontrada.", id))
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(partCacheKey, id))
	return nil
}

// DecreaseStock subtrai qty do estoque de forma atômica: a linha é
// bloqueada (SELECT ... FOR UPDATE) e a subtração condicional dentro da
// transação é a verificação autoritativa — nunca uma leitura seguida de
// escrita de quantidade em cache.
func (r *PartRepository) DecreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Part{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	part, err := LockForUpdate(ctxTimeout, tx, partID)
	if err != nil {
		return domain.Part{}, err
	}

	if ok, reason := part.CheckAvailability(qty); !ok {
		r.logger.Warn("Baixa de estoque recusada.", map[string]interface{}{"part_id": partID, "qty": qty, "reason": reason})
		return domain.Part{}, errors.NewStockError(reason, []errors.StockShortfall{{
			PartID:    part.ID,
			Code:      part.Code,
			Name:      part.Name,
			Requested: qty,
			Available: part.QuantityInStock,
			Reason:    reason,
		}})
	}

	part.Decrease(qty)
	if err := PersistStockTx(ctxTimeout, tx, &part); err != nil {
		return domain.Part{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Part{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(partCacheKey, partID))
	r.logger.Info("Estoque baixado com sucesso.", map[string]interface{}{"part_id": partID, "qty": qty, "remaining": part.QuantityInStock})
	return part, nil
}

// IncreaseStock soma qty ao estoque de forma atômica, com a mesma
// disciplina transacional de DecreaseStock.
func (r *PartRepository) IncreaseStock(ctx context.Context, partID string, qty int) (domain.Part, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Part{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	part, err := LockForUpdate(ctxTimeout, tx, partID)
	if err != nil {
		return domain.Part{}, err
	}

	part.Increase(qty)
	if err := PersistStockTx(ctxTimeout, tx, &part); err != nil {
		return domain.Part{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Part{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(partCacheKey, partID))
	r.logger.Info("Estoque reposto com sucesso.", map[string]interface{}{"part_id": partID, "qty": qty, "total": part.QuantityInStock})
	return part, nil
}

// LockForUpdate lê a peça com bloqueio de linha dentro da transação.
func LockForUpdate(ctx context.Context, tx *sql.Tx, partID string) (domain.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1 FOR UPDATE`
	part, err := scanPart(tx.QueryRowContext(ctx, query, partID))
	if err == sql.ErrNoRows {
		return domain.Part{}, errors.NewNotFoundError(fmt.Sprintf("Peça com ID %s não encontrada.", partID))
	}
	if err != nil {
		return domain.Part{}, errors.NewDBError("Falha ao bloquear peça para atualização", err)
	}
	return part, nil
}

// PersistStockTx persiste quantidade e status derivado da peça já bloqueada.
func PersistStockTx(ctx context.Context, tx *sql.Tx, part *domain.Part) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE parts SET quantity_in_stock = $1, status = $2 WHERE id = $3`,
		part.QuantityInStock, part.Status, part.ID,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar estoque da peça", err)
	}
	return nil
}
