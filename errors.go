package narrowphase

import "github.com/pkg/errors"

var (
	ErrNilShape         = errors.New("nil shape")
	ErrInvalidTransform = errors.New("invalid transform")
	ErrInvalidSweep     = errors.New("invalid sweep")
)
