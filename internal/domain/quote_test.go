package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuote_RecomputeTotal(t *testing.T) {
	quote := Quote{
		LaborValue: decimal.RequireFromString("100.00"),
		PartsValue: decimal.RequireFromString("50.00"),
	}

	quote.RecomputeTotal()

	assert.True(t, quote.TotalValue.Equal(decimal.RequireFromString("150.00")),
		"total esperado 150.00, obtido %s", quote.TotalValue)
}

func TestQuote_Approve(t *testing.T) {
	today := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	t.Run("pendente e dentro da validade aprova", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusPending, ValidUntil: today.AddDate(0, 0, 5)}

		ok, _ := quote.Approve(today)

		assert.True(t, ok)
		assert.Equal(t, QuoteStatusApproved, quote.Status)
	})

	t.Run("validade no próprio dia ainda aprova", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusPending, ValidUntil: today.Truncate(24 * time.Hour)}

		ok, _ := quote.Approve(today)

		assert.True(t, ok)
	})

	t.Run("vencido transiciona para expired e falha", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusPending, ValidUntil: today.AddDate(0, 0, -1)}

		ok, msg := quote.Approve(today)

		assert.False(t, ok)
		assert.Equal(t, QuoteStatusExpired, quote.Status)
		assert.Contains(t, msg, "expirado")
	})

	t.Run("não pendente falha sem mutação", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusRejected, ValidUntil: today.AddDate(0, 0, -1)}

		ok, _ := quote.Approve(today)

		assert.False(t, ok)
		assert.Equal(t, QuoteStatusRejected, quote.Status,
			"checagem de status vem antes da checagem de validade")
	})
}

func TestQuote_Reject(t *testing.T) {
	now := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	t.Run("motivo válido registra decisão nas observações", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusPending, Notes: "Observação original."}

		ok, _ := quote.Reject("Preço acima do esperado.", "joao.silva", now)

		assert.True(t, ok)
		assert.Equal(t, QuoteStatusRejected, quote.Status)
		assert.Contains(t, quote.Notes, "Observação original.", "observações anteriores são preservadas")
		assert.Contains(t, quote.Notes, "[REJEITADO em 10/03/2026 14:30 por joao.silva]")
		assert.Contains(t, quote.Notes, "Preço acima do esperado.")
	})

	t.Run("motivo curto falha sem mutação", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusPending, Notes: "Original"}

		ok, msg := quote.Reject("   curto   ", "joao.silva", now)

		assert.False(t, ok)
		assert.Contains(t, msg, "10 caracteres")
		assert.Equal(t, QuoteStatusPending, quote.Status)
		assert.Equal(t, "Original", quote.Notes)
	})

	t.Run("não pendente falha", func(t *testing.T) {
		quote := Quote{Status: QuoteStatusApproved}

		ok, _ := quote.Reject("Motivo suficientemente longo.", "joao.silva", now)

		assert.False(t, ok)
		assert.Equal(t, QuoteStatusApproved, quote.Status)
	})
}
