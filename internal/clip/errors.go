package clip

import "errors"

// Failure kinds raised while resolving a sound. None of them is fatal: every
// resolution path ends in the synthesized tone.
var (
	ErrInvalidDirectory = errors.New("invalid sound directory")
	ErrFormat           = errors.New("unsupported or malformed audio")
	ErrDecodeTimeout    = errors.New("audio decode timed out")
	ErrIO               = errors.New("audio file read failed")
)
