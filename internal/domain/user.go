package domain

import "time"

// User описывает пользователя. Пользователи управляются внешним сервисом,
// здесь на них только ссылаются по ID.
type User struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}
