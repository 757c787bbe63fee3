package service

import "errors"

// Errors returned by the services. Handlers map them to HTTP statuses with
// errors.Is; anything else is an internal failure.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrReportNotFound     = errors.New("report not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrNoFile             = errors.New("no file uploaded")
	ErrNotImage           = errors.New("only image files are allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrUploadBusy         = errors.New("too many concurrent uploads")
)
