package domain

import "errors"

var (
	ErrUnsupportedModel  = errors.New("unsupported model")
	ErrMissingCredential = errors.New("missing credential")
	ErrArchive           = errors.New("invalid archive")
	ErrImageDecode       = errors.New("image decode failed")
	ErrProvider          = errors.New("provider failure")
)
