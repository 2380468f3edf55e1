package repository

import "errors"

var ErrNotFound = errors.New("record not found")

type scanner interface {
	Scan(dest ...interface{}) error
}
