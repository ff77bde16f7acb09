package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/cache"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/repository/partrepo"
)

const partCacheKey = "part:%s"

const orderColumns = `id, quote_id, start_date, estimated_date, completion_date, status, entry_mileage`

// OrderRepository persiste ordens de serviço e seus itens de peça.
// As escritas de workflow (criação a partir do orçamento, conclusão e
// cancelamento) rodam cada uma em uma única transação: ou tudo é
// aplicado, ou nada é — inclusive as baixas/devoluções de estoque.
type OrderRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewOrderRepository cria e retorna uma nova instância do Repositório de Ordens.
func NewOrderRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *OrderRepository {
	return &OrderRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (domain.ServiceOrder, error) {
	var o domain.ServiceOrder
	err := row.Scan(
		&o.ID, &o.QuoteID, &o.StartDate, &o.EstimatedDate,
		&o.CompletionDate, &o.Status, &o.EntryMileage,
	)
	return o, err
}

// CreateFromQuote cria a ordem de serviço de um orçamento aprovado. A
// pré-condição (orçamento aprovado e sem ordem existente) é verificada
// dentro da transação, com o orçamento bloqueado, antes de qualquer
// escrita.
func (r *OrderRepository) CreateFromQuote(ctx context.Context, order domain.ServiceOrder) (domain.ServiceOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var quoteStatus domain.QuoteStatus
	err = tx.QueryRowContext(ctxTimeout,
		`SELECT status FROM quotes WHERE id = $1 FOR UPDATE`, order.QuoteID,
	).Scan(&quoteStatus)
	if err == sql.ErrNoRows {
		return domain.ServiceOrder{}, errors.NewNotFoundError(fmt.Sprintf("Orçamento com ID %s não encontrado.", order.QuoteID))
	}
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao bloquear orçamento", err)
	}
	if quoteStatus != domain.QuoteStatusApproved {
		return domain.ServiceOrder{}, errors.NewStateError("Apenas orçamentos aprovados podem gerar ordem de serviço.")
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = domain.OrderStatusAwaiting

	_, err = tx.ExecContext(ctxTimeout, `
        INSERT INTO service_orders (id, quote_id, start_date, estimated_date, status, entry_mileage)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.QuoteID, order.StartDate, order.EstimatedDate, order.Status, order.EntryMileage,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.ServiceOrder{}, errors.NewConflictError("Já existe uma ordem de serviço para este orçamento.")
		}
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao criar ordem de serviço", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Ordem de serviço criada.", map[string]interface{}{"order_id": order.ID, "quote_id": order.QuoteID})
	return order, nil
}

// FindByID busca a ordem com seus itens (peça já identificada por join).
func (r *OrderRepository) FindByID(ctx context.Context, id string) (domain.ServiceOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1`
	order, err := scanOrder(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.ServiceOrder{}, errors.NewNotFoundError(fmt.Sprintf("Ordem de serviço com ID %s não encontrada.", id))
	}
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao buscar ordem de serviço", err)
	}

	items, err := r.findItems(ctxTimeout, id)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderID string) ([]domain.PartItem, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT i.id, i.order_id, i.part_id, i.quantity, i.unit_price_charged, i.stock_reduced, p.code, p.name
        FROM part_items i
        JOIN parts p ON p.id = i.part_id
        WHERE i.order_id = $1
        ORDER BY p.name`, orderID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar itens da ordem", err)
	}
	defer rows.Close()

	var items []domain.PartItem
	for rows.Next() {
		var it domain.PartItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PartID, &it.Quantity,
			&it.UnitPriceCharged, &it.StockReduced, &it.PartCode, &it.PartName); err != nil {
			return nil, errors.NewDBError("Falha ao ler item da ordem", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// FindAll lista ordens (sem itens) com filtro de status e paginação.
func (r *OrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.ServiceOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM service_orders`
	var args []interface{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += " WHERE status = $1"
	}
	query += " ORDER BY start_date DESC"

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
		return nil, errors.NewDBError("Falha ao buscar ordens de serviço", err)
	}
	defer rows.Close()

	var orders []domain.ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.NewDBError("Falha ao ler ordem de serviço", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateStatus aplica uma transição simples de status. O WHERE confere o
// status esperado: se outra requisição transicionou antes, nenhuma linha
// é afetada e o chamador recebe StateError.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`UPDATE service_orders SET status = $1 WHERE id = $2 AND status = $3`,
		to, orderID, from,
	)
	if err != nil {
		return errors.NewDBError("Falha ao atualizar status da ordem", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return errors.NewStateError(fmt.Sprintf("Ordem não está mais com status %s.", from))
	}
	return nil
}

// AddItem adiciona uma linha de peça à ordem. A disponibilidade da peça é
// conferida com a linha bloqueada; o par (ordem, peça) é único.
func (r *OrderRepository) AddItem(ctx context.Context, item domain.PartItem) (domain.PartItem, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.PartItem{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var orderStatus domain.OrderStatus
	err = tx.QueryRowContext(ctxTimeout,
		`SELECT status FROM service_orders WHERE id = $1 FOR UPDATE`, item.OrderID,
	).Scan(&orderStatus)
	if err == sql.ErrNoRows {
		return domain.PartItem{}, errors.NewNotFoundError(fmt.Sprintf("Ordem de serviço com ID %s não encontrada.", item.OrderID))
	}
	if err != nil {
		return domain.PartItem{}, errors.NewDBError("Falha ao bloquear ordem", err)
	}
	if orderStatus == domain.OrderStatusConcluded || orderStatus == domain.OrderStatusCancelled {
		return domain.PartItem{}, errors.NewStateError(fmt.Sprintf("Não é possível adicionar peças a uma ordem %s.", orderStatus))
	}

	part, err := partrepo.LockForUpdate(ctxTimeout, tx, item.PartID)
	if err != nil {
		return domain.PartItem{}, err
	}
	if ok, reason := part.CheckAvailability(item.Quantity); !ok {
		return domain.PartItem{}, errors.NewStockError(reason, []errors.StockShortfall{{
			PartID:    part.ID,
			Code:      part.Code,
			Name:      part.Name,
			Requested: item.Quantity,
			Available: part.QuantityInStock,
			Reason:    reason,
		}})
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.StockReduced = false
	item.PartCode = part.Code
	item.PartName = part.Name

	_, err = tx.ExecContext(ctxTimeout, `
        INSERT INTO part_items (id, order_id, part_id, quantity, unit_price_charged, stock_reduced)
        VALUES ($1, $2, $3, $4, $5, FALSE)`,
		item.ID, item.OrderID, item.PartID, item.Quantity, item.UnitPriceCharged,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.PartItem{}, errors.NewConflictError("Esta peça já foi adicionada à ordem de serviço.")
		}
		return domain.PartItem{}, errors.NewDBError("Falha ao adicionar item", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.PartItem{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Item adicionado à ordem.", map[string]interface{}{"order_id": item.OrderID, "part_id": item.PartID, "qty": item.Quantity})
	return item, nil
}

// DeleteItem remove uma linha da ordem. Se a linha já baixou estoque, a
// devolução acontece na mesma transação da remoção.
func (r *OrderRepository) DeleteItem(ctx context.Context, orderID, itemID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var item domain.PartItem
	err = tx.QueryRowContext(ctxTimeout, `
        SELECT id, order_id, part_id, quantity, stock_reduced
        FROM part_items WHERE id = $1 AND order_id = $2 FOR UPDATE`,
		itemID, orderID,
	).Scan(&item.ID, &item.OrderID, &item.PartID, &item.Quantity, &item.StockReduced)
	if err == sql.ErrNoRows {
		return errors.NewNotFoundError(fmt.Sprintf("Item %s não encontrado na ordem %s.", itemID, orderID))
	}
	if err != nil {
		return errors.NewDBError("Falha ao bloquear item", err)
	}

	// Reverter o efeito no estoque antes de remover a linha.
	if item.StockReduced {
		part, err := partrepo.LockForUpdate(ctxTimeout, tx, item.PartID)
		if err != nil {
			return err
		}
		item.RevertUsage(&part)
		if err := partrepo.PersistStockTx(ctxTimeout, tx, &part); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM part_items WHERE id = $1`, itemID); err != nil {
		return errors.NewDBError("Falha ao remover item", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	r.Cache.Delete(ctxTimeout, fmt.Sprintf(partCacheKey, item.PartID))
	r.logger.Info("Item removido da ordem.", map[string]interface{}{"order_id": orderID, "item_id": itemID})
	return nil
}

// Conclude conclui a ordem em uma única transação: revalida o status com
// a linha bloqueada, exige ao menos um item, bloqueia as peças em ordem
// determinística, confere a disponibilidade de TODAS as linhas ainda não
// baixadas e só então aplica as baixas, as flags e o status concluído.
// Qualquer falha desfaz a transação inteira — nunca resta uma ordem
// concluída com baixa parcial.
func (r *OrderRepository) Conclude(ctx context.Context, orderID string, now time.Time) (domain.ServiceOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	order, err := lockOrder(ctxTimeout, tx, orderID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if order.Status != domain.OrderStatusInProgress {
		return domain.ServiceOrder{}, errors.NewStateError(fmt.Sprintf("Apenas ordens em andamento podem ser concluídas. Status atual: %s.", order.Status))
	}

	items, err := lockItems(ctxTimeout, tx, orderID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if len(items) == 0 {
		return domain.ServiceOrder{}, errors.NewStateError("Ordem de serviço deve ter pelo menos uma peça para ser concluída.")
	}

	// Bloquear as peças em ordem determinística evita deadlock entre
	// conclusões concorrentes que compartilham peças.
	parts, err := lockPartsSorted(ctxTimeout, tx, items)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	// Passo 1: conferir todas as linhas antes de mutar qualquer coisa.
	var shortfalls []errors.StockShortfall
	for i := range items {
		if items[i].StockReduced {
			continue
		}
		part := parts[items[i].PartID]
		if ok, reason := part.CheckAvailability(items[i].Quantity); !ok {
			shortfalls = append(shortfalls, errors.StockShortfall{
				PartID:    part.ID,
				Code:      part.Code,
				Name:      part.Name,
				Requested: items[i].Quantity,
				Available: part.QuantityInStock,
				Reason:    reason,
			})
		}
	}
	if len(shortfalls) > 0 {
		return domain.ServiceOrder{}, errors.NewStockError("Estoque insuficiente para concluir ordem de serviço.", shortfalls)
	}

	// Passo 2: baixar cada linha ainda não baixada e marcar a flag.
	for i := range items {
		part := parts[items[i].PartID]
		applied, err := items[i].ConfirmUsage(part)
		if err != nil {
			// Pré-checagem passou com as linhas bloqueadas; chegar aqui
			// viola a pós-condição e aborta a transação inteira.
			return domain.ServiceOrder{}, errors.NewConsistencyError("Baixa de estoque falhou após a pré-checagem.", err)
		}
		if !applied {
			continue
		}
		if err := partrepo.PersistStockTx(ctxTimeout, tx, part); err != nil {
			return domain.ServiceOrder{}, err
		}
		if _, err := tx.ExecContext(ctxTimeout,
			`UPDATE part_items SET stock_reduced = TRUE WHERE id = $1`, items[i].ID); err != nil {
			return domain.ServiceOrder{}, errors.NewDBError("Falha ao marcar item como baixado", err)
		}
	}

	completion := now.UTC()
	if _, err := tx.ExecContext(ctxTimeout,
		`UPDATE service_orders SET status = $1, completion_date = $2 WHERE id = $3`,
		domain.OrderStatusConcluded, completion, orderID); err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao concluir ordem", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.invalidateParts(ctxTimeout, items)
	order.Status = domain.OrderStatusConcluded
	order.CompletionDate = &completion
	order.Items = items
	r.logger.Info("Ordem de serviço concluída.", map[string]interface{}{"order_id": orderID, "items": len(items)})
	return order, nil
}

// Cancel cancela a ordem e devolve ao estoque, na mesma transação, a
// quantidade de cada linha que já tinha sido baixada.
func (r *OrderRepository) Cancel(ctx context.Context, orderID string) (domain.ServiceOrder, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	order, err := lockOrder(ctxTimeout, tx, orderID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}
	if !order.CanTransitionTo(domain.OrderStatusCancelled) {
		return domain.ServiceOrder{}, errors.NewStateError(fmt.Sprintf("Não é possível cancelar ordem com status %s.", order.Status))
	}

	items, err := lockItems(ctxTimeout, tx, orderID)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	parts, err := lockPartsSorted(ctxTimeout, tx, items)
	if err != nil {
		return domain.ServiceOrder{}, err
	}

	for i := range items {
		part := parts[items[i].PartID]
		if !items[i].RevertUsage(part) {
			continue
		}
		if err := partrepo.PersistStockTx(ctxTimeout, tx, part); err != nil {
			return domain.ServiceOrder{}, err
		}
		if _, err := tx.ExecContext(ctxTimeout,
			`UPDATE part_items SET stock_reduced = FALSE WHERE id = $1`, items[i].ID); err != nil {
			return domain.ServiceOrder{}, errors.NewDBError("Falha ao desmarcar item baixado", err)
		}
	}

	if _, err := tx.ExecContext(ctxTimeout,
		`UPDATE service_orders SET status = $1 WHERE id = $2`,
		domain.OrderStatusCancelled, orderID); err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao cancelar ordem", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.invalidateParts(ctxTimeout, items)
	order.Status = domain.OrderStatusCancelled
	order.Items = items
	r.logger.Info("Ordem de serviço cancelada.", map[string]interface{}{"order_id": orderID})
	return order, nil
}

func lockOrder(ctx context.Context, tx *sql.Tx, orderID string) (domain.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1 FOR UPDATE`
	order, err := scanOrder(tx.QueryRowContext(ctx, query, orderID))
	if err == sql.ErrNoRows {
		return domain.ServiceOrder{}, errors.NewNotFoundError(fmt.Sprintf("Ordem de serviço com ID %s não encontrada.", orderID))
	}
	if err != nil {
		return domain.ServiceOrder{}, errors.NewDBError("Falha ao bloquear ordem", err)
	}
	return order, nil
}

func lockItems(ctx context.Context, tx *sql.Tx, orderID string) ([]domain.PartItem, error) {
	rows, err := tx.QueryContext(ctx, `
        SELECT id, order_id, part_id, quantity, unit_price_charged, stock_reduced
        FROM part_items WHERE order_id = $1 FOR UPDATE`, orderID)
	if err != nil {
		return nil, errors.NewDBError("Falha ao bloquear itens da ordem", err)
	}
	defer rows.Close()

	var items []domain.PartItem
	for rows.Next() {
		var it domain.PartItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.PartID, &it.Quantity,
			&it.UnitPriceCharged, &it.StockReduced); err != nil {
			return nil, errors.NewDBError("Falha ao ler item da ordem", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// lockPartsSorted bloqueia as peças das linhas em ordem crescente de ID e
// devolve um mapa partID -> *Part compartilhado entre as linhas.
func lockPartsSorted(ctx context.Context, tx *sql.Tx, items []domain.PartItem) (map[string]*domain.Part, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.PartID] {
			seen[it.PartID] = true
			ids = append(ids, it.PartID)
		}
	}
	sort.Strings(ids)

	parts := make(map[string]*domain.Part, len(ids))
	for _, id := range ids {
		part, err := partrepo.LockForUpdate(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		p := part
		parts[id] = &p
	}
	return parts, nil
}

func (r *OrderRepository) invalidateParts(ctx context.Context, items []domain.PartItem) {
	for _, it := range items {
		r.Cache.Delete(ctx, fmt.Sprintf(partCacheKey, it.PartID))
	}
}
