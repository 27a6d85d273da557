package model

import "time"

type Account struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"user_id"`
	Name                string    `json:"name"`
	Kind                string    `json:"kind"`
	OpeningBalanceCents int64     `json:"opening_balance_cents"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
