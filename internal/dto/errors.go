package dto

import (
	"errors"
)

var (
	ErrAlreadyExists = errors.New("errAlreadyExists")
	ErrConstraint    = errors.New("errConstraintViolation")
	ErrNoData        = errors.New("errNoData")
)
