package userservice

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
	"oficinago/internal/pkg/token"
)

// UserRepository define o contrato de persistência exigido pelo serviço.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByID(ctx context.Context, id string) (domain.User, error)
}

// UserService implementa o registro e a autenticação de usuários.
type UserService struct {
	Repo     UserRepository
	TokenSvc token.TokenService
	Logger   logger.Logger
}

// NewUserService cria e retorna uma nova instância do Serviço de Usuários.
func NewUserService(repo UserRepository, tokenSvc token.TokenService, logger logger.Logger) *UserService {
	return &UserService{
		Repo:     repo,
		TokenSvc: tokenSvc,
		Logger:   logger,
	}
}

// Register valida o payload, gera o hash da senha e grava o usuário.
func (s *UserService) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)

	if reg.Username == "" || reg.Email == "" {
		return domain.User{}, errors.NewValidationError("Username e e-mail são obrigatórios.")
	}
	if !strings.Contains(reg.Email, "@") {
		return domain.User{}, errors.NewValidationError("E-mail inválido.")
	}
	if len(reg.Password) < 8 {
		return domain.User{}, errors.NewValidationError("A senha deve ter no mínimo 8 caracteres.")
	}
	if reg.Role == "" {
		reg.Role = domain.RoleCustomer
	}
	if !domain.ValidRole(reg.Role) {
		return domain.User{}, errors.NewValidationError("Papel de usuário inválido.")
	}
	if reg.CPF == "" {
		return domain.User{}, errors.NewValidationError("CPF é obrigatório.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, errors.NewInternalError("Falha ao gerar hash da senha", err)
	}

	user := domain.User{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: string(hash),
		Role:         reg.Role,
		CPF:          reg.CPF,
		Phone:        reg.Phone,
	}

	created, err := s.Repo.Save(ctx, user)
	if err != nil {
		return domain.User{}, err
	}

	s.Logger.Info("Usuário registrado.", map[string]interface{}{"user_id": created.ID, "role": created.Role})
	return created, nil
}

// Login confere as credenciais e emite um JWT com o papel do usuário.
// Credencial inválida responde sempre com a mesma mensagem, sem revelar
// se o e-mail existe.
func (s *UserService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	user, err := s.Repo.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := err.(*errors.NotFoundError); ok {
			return "", domain.User{}, errors.NewUnauthorizedError("Credenciais inválidas.")
		}
		return "", domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.User{}, errors.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.TokenSvc.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return "", domain.User{}, errors.NewInternalError("Falha ao gerar token", err)
	}

	s.Logger.Info("Login realizado.", map[string]interface{}{"user_id": user.ID})
	return tokenString, user, nil
}
