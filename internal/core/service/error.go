package service

import "github.com/pkg/errors"

var ErrInvalidInput = errors.New("invalid input")
