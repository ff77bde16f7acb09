package domain

import "time"

// User representa a entidade do usuário no sistema.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // Oculta o hash da senha no JSON de resposta
	Role         UserRole   `json:"role"`
	CPF          string     `json:"cpf"`
	Phone        string     `json:"phone"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRole é um tipo string para representar o papel do usuário na oficina.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleMechanic UserRole = "mechanic"
	RoleManager  UserRole = "manager"
)

// ValidRole informa se o papel é um dos três reconhecidos.
func ValidRole(r UserRole) bool {
	return r == RoleCustomer || r == RoleMechanic || r == RoleManager
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
	CPF      string   `json:"cpf"`
	Phone    string   `json:"phone"`
}
