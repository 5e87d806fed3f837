package vehicle

import "errors"

var (
	// ErrInvalidTimeStep is returned when dt is zero, negative or not finite.
	ErrInvalidTimeStep = errors.New("vehicle: time step must be positive and finite")

	ErrInvalidThrottle = errors.New("vehicle: throttle must be finite")

	ErrNoBody       = errors.New("vehicle: no rigid body bound")
	ErrNoSensor     = errors.New("vehicle: no ground sensor bound")
	ErrNoDrivetrain = errors.New("vehicle: no drivetrain bound")

	// ErrInvalidParams wraps every parameter validation failure.
	ErrInvalidParams = errors.New("vehicle: invalid parameters")
)
