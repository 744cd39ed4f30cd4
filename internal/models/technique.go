package models

import (
	"encoding/json"
	"time"
)

// Technique элемент каталога техник акупрессуры.
// Гейт доступа использует только ID и IsPremium; Payload (инструкции,
// медиа, предупреждения) передаётся клиенту без изменений.
type Technique struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	IsPremium bool            `json:"is_premium"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Favorite техника в избранном пользователя. Пара (UserID, TechniqueID) уникальна.
type Favorite struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TechniqueID string    `json:"technique_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PracticeSession запись о выполненной технике.
type PracticeSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	TechniqueID   string    `json:"technique_id"`
	TechniqueName string    `json:"technique_name"`
	Complaint     string    `json:"complaint"`
	Duration      int       `json:"duration"`
	Rating        *int      `json:"rating,omitempty"`
	Date          time.Time `json:"date"`
}

// ComplaintStats описывает, как часто пользователи практикуют с конкретной жалобой.
// Trending выставляется, если за последнюю неделю сессий больше, чем за предыдущую.
type ComplaintStats struct {
	Complaint string `json:"complaint"`
	Count     int    `json:"count"`
	Trending  bool   `json:"trending"`
}

// ComplaintCount это сырые счётчики одной жалобы из хранилища.
type ComplaintCount struct {
	Complaint string
	Total     int
	Recent    int
	Previous  int
}
