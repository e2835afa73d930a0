package service

import (
	"database/sql"
	"errors"
)

var (
	ErrUnknownDevice  = errors.New("unknown device")
	ErrOrderNotFound  = errors.New("order not found")
	ErrTableNotFound  = errors.New("table not found")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
