package models

import "time"

// UserProfile is an independent learner identity on this installation
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrentLevel JLPTLevel `json:"current_level"`
	CreatedAt    time.Time `json:"created_at"`
	LastActive   time.Time `json:"last_active"`
}
