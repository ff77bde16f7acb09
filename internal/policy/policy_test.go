package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
)

func caller(id string, role domain.UserRole) domain.Caller {
	return domain.Caller{UserID: id, Username: "teste", Role: role}
}

func assertForbidden(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	_, ok := err.(*apperror.ForbiddenError)
	assert.True(t, ok, "esperado ForbiddenError, obtido %T", err)
}

func TestAuthorize_AprovacaoApenasDonoDoVeiculo(t *testing.T) {
	res := Resource{OwnerID: "owner-1", MechanicID: "mech-1"}

	assert.NoError(t, Authorize(caller("owner-1", domain.RoleCustomer), ActionApproveQuote, res))

	assertForbidden(t, Authorize(caller("outro", domain.RoleCustomer), ActionApproveQuote, res))
	assertForbidden(t, Authorize(caller("mech-1", domain.RoleMechanic), ActionApproveQuote, res))
	assertForbidden(t, Authorize(caller("gerente", domain.RoleManager), ActionApproveQuote, res))
}

func TestAuthorize_RejeicaoSegueMesmaRegraDaAprovacao(t *testing.T) {
	res := Resource{OwnerID: "owner-1"}

	assert.NoError(t, Authorize(caller("owner-1", domain.RoleCustomer), ActionRejectQuote, res))
	assertForbidden(t, Authorize(caller("gerente", domain.RoleManager), ActionRejectQuote, res))
}

func TestAuthorize_GeracaoDeOrdem(t *testing.T) {
	res := Resource{MechanicID: "mech-1"}

	assert.NoError(t, Authorize(caller("mech-1", domain.RoleMechanic), ActionGenerateOrder, res))
	assert.NoError(t, Authorize(caller("gerente", domain.RoleManager), ActionGenerateOrder, res))

	assertForbidden(t, Authorize(caller("outro-mech", domain.RoleMechanic), ActionGenerateOrder, res))
	assertForbidden(t, Authorize(caller("owner-1", domain.RoleCustomer), ActionGenerateOrder, res))
}

func TestAuthorize_AjusteDeEstoqueApenasGerente(t *testing.T) {
	assert.NoError(t, Authorize(caller("gerente", domain.RoleManager), ActionAdjustStock, Resource{}))

	assertForbidden(t, Authorize(caller("mech-1", domain.RoleMechanic), ActionAdjustStock, Resource{}))
	assertForbidden(t, Authorize(caller("cliente", domain.RoleCustomer), ActionAdjustStock, Resource{}))
}

func TestAuthorize_LeituraDeOrcamentoPorPapel(t *testing.T) {
	res := Resource{OwnerID: "owner-1", MechanicID: "mech-1"}

	assert.NoError(t, Authorize(caller("owner-1", domain.RoleCustomer), ActionReadQuote, res))
	assert.NoError(t, Authorize(caller("mech-1", domain.RoleMechanic), ActionReadQuote, res))
	assert.NoError(t, Authorize(caller("qualquer", domain.RoleManager), ActionReadQuote, res))

	assertForbidden(t, Authorize(caller("outro", domain.RoleCustomer), ActionReadQuote, res))
	assertForbidden(t, Authorize(caller("outro-mech", domain.RoleMechanic), ActionReadQuote, res))
}

func TestAuthorize_AcaoDesconhecidaNegada(t *testing.T) {
	assertForbidden(t, Authorize(caller("qualquer", domain.RoleManager), Action("inexistente"), Resource{}))
}
