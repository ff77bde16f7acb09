// Package policy centraliza a autorização por papel em uma única tabela
// (papel, ação, predicado de propriedade) consultada antes de qualquer
// método de domínio. Substitui checagens ad hoc espalhadas por handler.
package policy

import (
	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
)

// Action identifica uma operação autorizável.
type Action string

const (
	ActionCreateQuote       Action = "quote:create"
	ActionReadQuote         Action = "quote:read"
	ActionApproveQuote      Action = "quote:approve"
	ActionRejectQuote       Action = "quote:reject"
	ActionGenerateOrder     Action = "order:generate"
	ActionReadOrder         Action = "order:read"
	ActionUpdateOrderStatus Action = "order:update-status"
	ActionAddPart           Action = "order:add-part"
	ActionRemovePart        Action = "order:remove-part"
	ActionConcludeOrder     Action = "order:conclude"
	ActionCancelOrder       Action = "order:cancel"
	ActionAdjustStock       Action = "stock:adjust"
	ActionManageCatalog     Action = "catalog:manage"
)

// Resource carrega os dados de propriedade relevantes para o predicado:
// o dono do veículo do orçamento e o mecânico responsável.
type Resource struct {
	OwnerID    string
	MechanicID string
}

// predicate decide a propriedade: recebe o chamador e o recurso.
type predicate func(c domain.Caller, r Resource) bool

func anyone(domain.Caller, Resource) bool { return true }

func isOwner(c domain.Caller, r Resource) bool { return r.OwnerID != "" && c.UserID == r.OwnerID }

func isAssigned(c domain.Caller, r Resource) bool {
	return r.MechanicID != "" && c.UserID == r.MechanicID
}

// table mapeia (ação, papel) -> predicado. Papel ausente = negado.
// Aprovação e rejeição de orçamento seguem a regra estrita: apenas o
// cliente proprietário do veículo decide.
var table = map[Action]map[domain.UserRole]predicate{
	ActionCreateQuote: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionReadQuote: {
		domain.RoleCustomer: isOwner,
		domain.RoleMechanic: isAssigned,
		domain.RoleManager:  anyone,
	},
	ActionApproveQuote: {
		domain.RoleCustomer: isOwner,
	},
	ActionRejectQuote: {
		domain.RoleCustomer: isOwner,
	},
	ActionGenerateOrder: {
		domain.RoleMechanic: isAssigned,
		domain.RoleManager:  anyone,
	},
	ActionReadOrder: {
		domain.RoleCustomer: isOwner,
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionUpdateOrderStatus: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionAddPart: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionRemovePart: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionConcludeOrder: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionCancelOrder: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
	ActionAdjustStock: {
		domain.RoleManager: anyone,
	},
	ActionManageCatalog: {
		domain.RoleMechanic: anyone,
		domain.RoleManager:  anyone,
	},
}

// Authorize consulta a tabela e retorna ForbiddenError quando o papel do
// chamador não permite a ação ou o predicado de propriedade falha.
// Nenhum método de domínio deve rodar antes desta consulta.
func Authorize(c domain.Caller, action Action, res Resource) error {
	roles, ok := table[action]
	if !ok {
		return apperror.NewForbiddenError("Ação desconhecida.")
	}
	pred, ok := roles[c.Role]
	if !ok {
		return apperror.NewForbiddenError("Você não tem a permissão necessária para esta ação.")
	}
	if !pred(c, res) {
		return apperror.NewForbiddenError("Este recurso não pertence a você.")
	}
	return nil
}
