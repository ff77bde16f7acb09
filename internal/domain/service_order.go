package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus representa o ciclo de vida de uma ordem de serviço.
type OrderStatus string

const (
	OrderStatusAwaiting      OrderStatus = "awaiting"
	OrderStatusInProgress    OrderStatus = "in_progress"
	OrderStatusAwaitingParts OrderStatus = "awaiting_parts"
	OrderStatusConcluded     OrderStatus = "concluded"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

// ServiceOrder representa a execução autorizada de um orçamento aprovado.
// Existe no máximo uma ordem por orçamento.
type ServiceOrder struct {
	ID             string      `json:"id"`
	QuoteID        string      `json:"quote_id"`
	StartDate      time.Time   `json:"start_date"`
	EstimatedDate  time.Time   `json:"estimated_date"`
	CompletionDate *time.Time  `json:"completion_date,omitempty"`
	Status         OrderStatus `json:"status"`
	EntryMileage   int         `json:"entry_mileage"`
	Items          []PartItem  `json:"items"`
}

// transitions enumera as transições de status permitidas. Conclusão e
// cancelamento têm ações dedicadas; o endpoint genérico de status cobre
// apenas awaiting/in_progress/awaiting_parts.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusAwaiting:      {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress:    {OrderStatusAwaitingParts, OrderStatusConcluded, OrderStatusCancelled},
	OrderStatusAwaitingParts: {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusConcluded:     {OrderStatusCancelled},
	OrderStatusCancelled:     {},
}

// CanTransitionTo informa se a mudança de status é válida.
func (o *ServiceOrder) CanTransitionTo(target OrderStatus) bool {
	for _, s := range transitions[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// PartItem é uma linha de uso de peça: uma quantidade de uma peça contra
// uma ordem de serviço. O par (ordem, peça) é único. A flag StockReduced
// garante que o efeito no estoque seja contabilizado no máximo uma vez
// por sentido.
type PartItem struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"order_id"`
	PartID           string          `json:"part_id"`
	Quantity         int             `json:"quantity"`
	UnitPriceCharged decimal.Decimal `json:"unit_price_charged"`
	StockReduced     bool            `json:"stock_reduced"`

	// Campos somente leitura preenchidos por join no repositório.
	PartCode string `json:"part_code,omitempty"`
	PartName string `json:"part_name,omitempty"`
}

// LineTotal é o valor derivado da linha: quantidade * preço unitário cobrado.
func (i *PartItem) LineTotal() decimal.Decimal {
	return i.UnitPriceCharged.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ConfirmUsage baixa o estoque da peça exatamente uma vez por linha.
// Retorna (false, nil) quando a linha já foi baixada (no-op) e erro quando
// o razão de estoque recusa a baixa — situação que a pré-checagem da
// conclusão deveria ter impedido, mas que é reavaliada por segurança
// contra corridas.
func (i *PartItem) ConfirmUsage(p *Part) (bool, error) {
	if i.StockReduced {
		return false, nil
	}
	if ok := p.Decrease(i.Quantity); !ok {
		return false, fmt.Errorf("estoque insuficiente para a peça %s: solicitado %d, disponível %d", p.Code, i.Quantity, p.QuantityInStock)
	}
	i.StockReduced = true
	return true, nil
}

// RevertUsage devolve ao estoque a quantidade de uma linha já baixada.
// No-op quando a linha nunca foi baixada.
func (i *PartItem) RevertUsage(p *Part) bool {
	if !i.StockReduced {
		return false
	}
	p.Increase(i.Quantity)
	i.StockReduced = false
	return true
}

// OrderFilter define a listagem de ordens de serviço.
type OrderFilter struct {
	Status string
	Page   int
	Limit  int
}
