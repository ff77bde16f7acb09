package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PartStatus representa a situação da peça no estoque.
type PartStatus string

const (
	PartStatusAvailable    PartStatus = "available"
	PartStatusOutOfStock   PartStatus = "out_of_stock"
	PartStatusDiscontinued PartStatus = "discontinued"
)

// Part representa uma peça do catálogo da oficina.
// A quantidade em estoque e o status derivado são de propriedade exclusiva
// do livro-razão de estoque: nenhuma outra camada escreve esses campos
// diretamente, apenas via Decrease/Increase.
type Part struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Manufacturer    string          `json:"manufacturer"`
	QuantityInStock int             `json:"quantity_in_stock"`
	MinimumStock    int             `json:"minimum_stock"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Status          PartStatus      `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CheckAvailability verifica se há estoque suficiente para a quantidade
// solicitada. Retorna (false, motivo) quando a peça está esgotada ou a
// quantidade excede o disponível.
func (p *Part) CheckAvailability(qty int) (bool, string) {
	if p.Status == PartStatusOutOfStock {
		return false, fmt.Sprintf("Peça %s está esgotada.", p.Code)
	}
	if qty > p.QuantityInStock {
		return false, fmt.Sprintf("Estoque insuficiente para a peça %s: solicitado %d, disponível %d.", p.Code, qty, p.QuantityInStock)
	}
	return true, ""
}

// Decrease subtrai qty do estoque. Retorna false sem mutação se qty exceder
// o disponível. Ao chegar a zero o status vira out_of_stock, exceto para
// peças descontinuadas.
func (p *Part) Decrease(qty int) bool {
	if qty > p.QuantityInStock {
		return false
	}
	p.QuantityInStock -= qty
	if p.QuantityInStock == 0 && p.Status != PartStatusDiscontinued {
		p.Status = PartStatusOutOfStock
	}
	return true
}

// Increase soma qty ao estoque. Se a peça estava esgotada e a quantidade
// ficou positiva, o status volta a available. Peças descontinuadas nunca
// mudam de status automaticamente.
func (p *Part) Increase(qty int) {
	prev := p.Status
	p.QuantityInStock += qty
	if prev == PartStatusOutOfStock && p.QuantityInStock > 0 {
		p.Status = PartStatusAvailable
	}
}

// BelowMinimum indica se a peça está no estoque mínimo ou abaixo dele.
func (p *Part) BelowMinimum() bool {
	return p.QuantityInStock <= p.MinimumStock
}

// PartFilter define os parâmetros de busca e paginação de peças.
type PartFilter struct {
	Manufacturer string
	Status       string
	BelowMinimum *bool
	Page         int
	Limit        int
}

// StockAdjustmentRequest é o payload esperado para o ajuste manual de estoque.
type StockAdjustmentRequest struct {
	Delta int `json:"delta"`
}

// AvailabilityResult é a resposta da consulta de disponibilidade de estoque.
type AvailabilityResult struct {
	PartID       string `json:"part_id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Requested    int    `json:"requested"`
	Available    int    `json:"available"`
	Sufficient   bool   `json:"sufficient"`
	Difference   int    `json:"difference"`
	BelowMinimum bool   `json:"below_minimum"`
	Reason       string `json:"reason,omitempty"`
}
