// Package models содержит доменные структуры: пользователь, техника,
// отзыв, избранное, сессия практики и подписка. Структуры используются
// в бизнес-логике, хранилище и при сериализации ответов.
package models

import "time"

const (
	// RoleUser роль по умолчанию при регистрации.
	RoleUser = "user"
	// RoleAdmin администратор: может удалять чужие отзывы.
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя системы.
//
// IsPremium хранимый флаг. Фактический премиум вычисляется с учётом
// PremiumExpiresAt: истёкший срок означает отсутствие премиума, даже если
// флаг ещё true.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

// IsAdmin сообщает, что у пользователя роль администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserStats сводка практики пользователя.
type UserStats struct {
	TotalSessions      int      `json:"total_sessions"`
	AvgRating          float64  `json:"avg_rating"`
	MostUsedComplaint  string   `json:"most_used_complaint"`
	TotalTimePracticed int      `json:"total_time_practiced"`
	StreakDays         int      `json:"streak_days"`
	FavoriteTechniques []string `json:"favorite_techniques"`
}
