package models

import (
	"errors"
)

var (
	ErrNoRecord             = errors.New("models: no matching record found")
	ErrInvalidCredentials   = errors.New("models: invalid credentials")
	ErrDuplicateEmail       = errors.New("models: duplicate email")
	ErrDuplicatePhone       = errors.New("models: duplicate phone number")
	ErrUserNotFound         = errors.New("models: user not found")
	ErrInvalidPassword      = errors.New("models: invalid password")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrPackageNotFound      = errors.New("package not found")
	ErrTipNotFound          = errors.New("tip not found")
	ErrMatchNotFound        = errors.New("match not found")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrSubscriptionExists   = errors.New("subscription already exists for transaction")
	ErrNoActiveSubscription = errors.New("no active subscription")
)
