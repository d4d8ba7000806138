package core

import "errors"

// Common errors.
var (
	ErrReadOnly      = errors.New("project is in read-only mode")
	ErrNotFound      = errors.New("file not found")
	ErrExists        = errors.New("target path already exists")
	ErrSamePath      = errors.New("old path equals new path")
	ErrUnpairedISH   = errors.New("topics and ISH files are not paired")
	ErrMalformedISH  = errors.New("malformed ISH file, no ishobject root")
	ErrNoMap         = errors.New("no ditamap found")
	ErrMissingHeader = errors.New("missing title heading")
)
