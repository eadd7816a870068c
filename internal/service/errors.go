package service

import "errors"

// Failure classes surfaced by the services. Callers match with errors.Is;
// the wrapped message carries the offending id or field.
var (
	ErrCardNotFound       = errors.New("card not found")
	ErrWorkshopNotFound   = errors.New("workshop not found")
	ErrWorkCenterNotFound = errors.New("work center not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrScheduleNotFound   = errors.New("schedule not found")
	ErrInvalidCardStatus  = errors.New("invalid card status")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
