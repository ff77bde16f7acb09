package domain

// Caller é a identidade do chamador de uma operação: quem é e qual o seu
// papel. É extraída do token pela camada HTTP e repassada aos serviços;
// nenhuma regra de negócio consulta o token diretamente.
type Caller struct {
	UserID   string
	Username string
	Role     UserRole
}
