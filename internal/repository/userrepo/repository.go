package userrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"oficinago/internal/domain"
	"oficinago/internal/errors"
	"oficinago/internal/pkg/logger"
)

const userColumns = `id, username, email, password_hash, role, cpf, phone, birth_date, created_at, updated_at`

// UserRepository persiste contas de usuário (clientes, mecânicos e gerentes).
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria e retorna uma nova instância do Repositório de Usuários.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role,
		&u.CPF, &u.Phone, &u.BirthDate, &u.CreatedAt, &u.UpdatedAt,
	)
	return u, err
}

// Save insere um novo usuário. Username, email e CPF são únicos.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.DB.ExecContext(ctxTimeout, `
        INSERT INTO users (id, username, email, password_hash, role, cpf, phone, birth_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
		user.CPF, user.Phone, user.BirthDate, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domain.User{}, errors.NewConflictError("Usuário, e-mail ou CPF já cadastrado.")
		}
		return domain.User{}, errors.NewDBError("Falha ao criar usuário", err)
	}

	r.logger.Info("Usuário criado.", map[string]interface{}{"user_id": user.ID, "role": user.Role})
	return user, nil
}

// FindByEmail busca o usuário pelo e-mail (usado no login).
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, email))
	if err == sql.ErrNoRows {
		return domain.User{}, errors.NewNotFoundError("Usuário não encontrado.")
	}
	if err != nil {
		return domain.User{}, errors.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}

// FindByID busca o usuário pelo identificador.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRowContext(ctxTimeout, query, id))
	if err == sql.ErrNoRows {
		return domain.User{}, errors.NewNotFoundError(fmt.Sprintf("Usuário com ID %s não encontrado.", id))
	}
	if err != nil {
		return domain.User{}, errors.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}
