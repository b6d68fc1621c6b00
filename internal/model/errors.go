package model

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpstreamParse = errors.New("upstream reply did not match expected shape")
	ErrUpstreamCall  = errors.New("upstream call failed")
)
