package account

import "errors"

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNotPremium      = errors.New("account is not on the premium plan")
)
