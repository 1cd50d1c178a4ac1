package audio

import "errors"

var (
	ErrUnsupported  = errors.New("unsupported audio file type")
	ErrNoneSelected = errors.New("no audio file selected")
)
