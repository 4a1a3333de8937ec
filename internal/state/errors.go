package state

import "errors"

var (
	ErrPlayerExists        = errors.New("player already exists")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrMarketNotFound      = errors.New("market not found")
	ErrUnauthorized        = errors.New("unauthorized")
)
