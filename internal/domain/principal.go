package domain

// Principal - личность вызывающего, полученная из валидного токена.
// Живет только в рамках одного запроса.
type Principal struct {
	UserID      int64
	Authorities []string
}

func NewPrincipal(userID int64, authorities []string) Principal {
	return Principal{
		UserID:      userID,
		Authorities: authorities,
	}
}

// IsAuthenticated сообщает, установлена ли личность.
func (p Principal) IsAuthenticated() bool {
	return p.UserID != 0
}
