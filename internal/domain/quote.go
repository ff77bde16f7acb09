package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus representa o ciclo de vida de um orçamento.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusApproved QuoteStatus = "approved"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// Quote representa um orçamento: proposta de serviço precificada para um
// veículo, sob responsabilidade de um mecânico. Orçamentos nunca são
// apagados; o histórico de decisões fica registrado em Notes.
type Quote struct {
	ID                 string          `json:"id"`
	VehicleID          string          `json:"vehicle_id"`
	MechanicID         string          `json:"mechanic_id"`
	ValidUntil         time.Time       `json:"valid_until"`
	ProblemDescription string          `json:"problem_description"`
	LaborValue         decimal.Decimal `json:"labor_value"`
	PartsValue         decimal.Decimal `json:"parts_value"`
	TotalValue         decimal.Decimal `json:"total_value"`
	Status             QuoteStatus     `json:"status"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"created_at"`

	// VehicleOwnerID é preenchido pelo repositório (join com vehicles) e
	// usado apenas nas checagens de autorização.
	VehicleOwnerID string `json:"-"`
}

// RecomputeTotal recalcula o valor total como mão de obra + peças.
// TotalValue nunca é gravado de forma independente dessa soma.
func (q *Quote) RecomputeTotal() {
	q.TotalValue = q.LaborValue.Add(q.PartsValue)
}

// Approve transiciona o orçamento de pending para approved. Se a validade
// já passou, o orçamento transiciona para expired e a aprovação falha —
// essa mutação de status deve ser persistida mesmo na falha.
func (q *Quote) Approve(today time.Time) (bool, string) {
	if q.Status != QuoteStatusPending {
		return false, fmt.Sprintf("Não é possível aprovar orçamento com status %s.", q.Status)
	}
	if q.ValidUntil.Before(truncateToDate(today)) {
		q.Status = QuoteStatusExpired
		return false, "Orçamento expirado não pode ser aprovado."
	}
	q.Status = QuoteStatusApproved
	return true, "Orçamento aprovado com sucesso."
}

// Reject transiciona o orçamento para rejected, anexando às observações um
// registro datado e atribuído do motivo. Observações anteriores nunca são
// sobrescritas.
func (q *Quote) Reject(reason, actor string, now time.Time) (bool, string) {
	if q.Status != QuoteStatusPending {
		return false, fmt.Sprintf("Não é possível rejeitar orçamento com status %s.", q.Status)
	}
	reason = strings.TrimSpace(reason)
	if len(reason) < 10 {
		return false, "Motivo da rejeição deve ter no mínimo 10 caracteres."
	}
	q.Status = QuoteStatusRejected
	q.Notes += fmt.Sprintf("\n\n[REJEITADO em %s por %s]\n%s", now.Format("02/01/2006 15:04"), actor, reason)
	return true, "Orçamento rejeitado com sucesso."
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// QuoteFilter define a listagem de orçamentos. O escopo por papel é
// aplicado no repositório: clientes enxergam apenas orçamentos dos seus
// veículos e mecânicos apenas os atribuídos a eles.
type QuoteFilter struct {
	RequesterID   string
	RequesterRole UserRole
	Status        string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}
