package models

import "time"

// Role describes how a user participates in the marketplace.
type Role string

const (
	RoleBuyer  Role = "Buyer"
	RoleSeller Role = "Seller"
	RoleBoth   Role = "Both"
)

// Valid reports whether the role is one of the known marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleBoth:
		return true
	}
	return false
}

// CanSell reports whether the role permits listing services.
func (r Role) CanSell() bool { return r == RoleSeller || r == RoleBoth }

// CanBuy reports whether the role permits placing orders.
func (r Role) CanBuy() bool { return r == RoleBuyer || r == RoleBoth }

// User is a registered marketplace participant, keyed by Telegram ID.
// Created once on registration completion; role changes go through support.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Name       string    `db:"name"`
	Username   string    `db:"username"`
	Role       Role      `db:"role"`
	CreatedAt  time.Time `db:"created_at"`
}
