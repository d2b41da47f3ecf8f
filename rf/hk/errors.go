package hk

import "errors"

var (
	ErrNoTraces             = errors.New("hk: no traces to stack")
	ErrInvalidVelocity      = errors.New("hk: P-wave velocity must be positive and finite")
	ErrInvalidRootOrder     = errors.New("hk: root order must be positive and finite")
	ErrEmptyRange           = errors.New("hk: H and k ranges must not be empty")
	ErrInconsistentVelocity = errors.New("hk: inconsistent V_p values inferred from traces")

	ErrNoLayers       = errors.New("hk: stack has no layers")
	ErrWeightMismatch = errors.New("hk: weight count does not match layer count")
	ErrShapeMismatch  = errors.New("hk: stack layers differ in shape")
)
