package userservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"oficinago/internal/domain"
	apperror "oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/token"
)

// mockUserRepo simula o repositório de usuários.
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Save(ctx context.Context, user domain.User) (domain.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

// mockTokenService simula a emissão de tokens.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken(userID string, username string, userRole string) (string, error) {
	args := m.Called(userID, username, userRole)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateToken(tokenString string) (*token.CustomClaims, error) {
	args := m.Called(tokenString)
	return args.Get(0).(*token.CustomClaims), args.Error(1)
}

func newService(repo *mockUserRepo, tokenSvc *mockTokenService) *UserService {
	return NewUserService(repo, tokenSvc, logger.NewLogger("error"))
}

func validRegistration() domain.UserRegistration {
	return domain.UserRegistration{
		Username: "joao.silva",
		Email:    "joao@example.com",
		Password: "senha-segura-123",
		Role:     domain.RoleCustomer,
		CPF:      "123.456.789-00",
	}
}

func TestRegister_SucessoComHashDeSenha(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newService(repo, new(mockTokenService))

	repo.On("Save", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("senha-segura-123"))
		return err == nil && u.Role == domain.RoleCustomer
	})).Return(domain.User{ID: "user-1"}, nil)

	_, err := svc.Register(context.Background(), validRegistration())

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRegister_SenhaCurta(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newService(repo, new(mockTokenService))

	reg := validRegistration()
	reg.Password = "curta"

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_PapelInvalido(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newService(repo, new(mockTokenService))

	reg := validRegistration()
	reg.Role = "admin"

	_, err := svc.Register(context.Background(), reg)

	assert.Error(t, err)
	_, ok := err.(*apperror.ValidationError)
	assert.True(t, ok)
}

func TestLogin_Sucesso(t *testing.T) {
	repo := new(mockUserRepo)
	tokenSvc := new(mockTokenService)
	svc := newService(repo, tokenSvc)

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-segura-123"), bcrypt.MinCost)
	user := domain.User{
		ID:           "user-1",
		Username:     "joao.silva",
		Email:        "joao@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}

	repo.On("FindByEmail", mock.Anything, "joao@example.com").Return(user, nil)
	tokenSvc.On("GenerateToken", "user-1", "joao.silva", "customer").Return("token-emitido", nil)

	tokenString, logged, err := svc.Login(context.Background(), "joao@example.com", "senha-segura-123")

	assert.NoError(t, err)
	assert.Equal(t, "token-emitido", tokenString)
	assert.Equal(t, "user-1", logged.ID)
}

func TestLogin_SenhaErrada(t *testing.T) {
	repo := new(mockUserRepo)
	tokenSvc := new(mockTokenService)
	svc := newService(repo, tokenSvc)

	hash, _ := bcrypt.GenerateFromPassword([]byte("senha-correta-123"), bcrypt.MinCost)
	repo.On("FindByEmail", mock.Anything, "joao@example.com").Return(
		domain.User{PasswordHash: string(hash)}, nil)

	_, _, err := svc.Login(context.Background(), "joao@example.com", "senha-errada")

	assert.Error(t, err)
	_, ok := err.(*apperror.UnauthorizedError)
	assert.True(t, ok)
	tokenSvc.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_EmailInexistenteNaoRevelaExistencia(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newService(repo, new(mockTokenService))

	repo.On("FindByEmail", mock.Anything, "nao@existe.com").Return(
		domain.User{}, apperror.NewNotFoundError("Usuário não encontrado."))

	_, _, err := svc.Login(context.Background(), "nao@existe.com", "qualquer-senha")

	assert.Error(t, err)
	typed, ok := err.(*apperror.UnauthorizedError)
	assert.True(t, ok, "esperado UnauthorizedError, obtido %T", err)
	assert.Contains(t, typed.Error(), "Credenciais inválidas")
}
