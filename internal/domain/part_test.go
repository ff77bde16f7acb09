package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPart_CheckAvailability(t *testing.T) {
	part := Part{Code: "FLT-001", QuantityInStock: 5, Status: PartStatusAvailable}

	ok, reason := part.CheckAvailability(5)
	assert.True(t, ok)
	assert.Empty(t, reason)

	ok, reason = part.CheckAvailability(6)
	assert.False(t, ok)
	assert.Contains(t, reason, "FLT-001")

	part.Status = PartStatusOutOfStock
	ok, reason = part.CheckAvailability(1)
	assert.False(t, ok)
	assert.Contains(t, reason, "esgotada")
}

func TestPart_Decrease_NuncaFicaNegativo(t *testing.T) {
	part := Part{QuantityInStock: 3, Status: PartStatusAvailable}

	assert.False(t, part.Decrease(4))
	assert.Equal(t, 3, part.QuantityInStock, "falha na baixa não pode mutar o estoque")

	assert.True(t, part.Decrease(3))
	assert.Equal(t, 0, part.QuantityInStock)
	assert.Equal(t, PartStatusOutOfStock, part.Status, "chegar a zero deve marcar esgotada")
}

func TestPart_Decrease_ConsistenteComCheckAvailability(t *testing.T) {
	// Se a checagem passa, a baixa da mesma quantidade nunca pode falhar.
	for qty := 1; qty <= 10; qty++ {
		part := Part{QuantityInStock: 7, Status: PartStatusAvailable}
		ok, _ := part.CheckAvailability(qty)
		if ok {
			assert.True(t, part.Decrease(qty), "baixa de %d falhou após checagem aprovada", qty)
		} else {
			assert.False(t, part.Decrease(qty))
		}
	}
}

func TestPart_Increase_ReativaPecaEsgotada(t *testing.T) {
	part := Part{QuantityInStock: 0, Status: PartStatusOutOfStock}

	part.Increase(4)
	assert.Equal(t, 4, part.QuantityInStock)
	assert.Equal(t, PartStatusAvailable, part.Status)
}

func TestPart_Descontinuada_NaoMudaStatus(t *testing.T) {
	part := Part{QuantityInStock: 2, Status: PartStatusDiscontinued}

	assert.True(t, part.Decrease(2))
	assert.Equal(t, PartStatusDiscontinued, part.Status, "peça descontinuada não vira esgotada")

	part.Increase(5)
	assert.Equal(t, PartStatusDiscontinued, part.Status, "peça descontinuada não volta a available")
}

func TestPart_BelowMinimum(t *testing.T) {
	part := Part{QuantityInStock: 5, MinimumStock: 5}
	assert.True(t, part.BelowMinimum())

	part.QuantityInStock = 6
	assert.False(t, part.BelowMinimum())
}
