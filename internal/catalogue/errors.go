package catalogue

import "errors"

// Sentinel errors returned by Catalogue operations. ErrUnknownStop and
// ErrBadInput come from the Add* calls while the catalogue is being
// built; ErrUnknownStop, ErrUnknownBus and ErrDistanceUndefined come from
// the lookups; ErrAlreadySealed guards the build/serve lifecycle split.
var (
	// ErrUnknownStop indicates a bus referenced a stop name that was never
	// added with AddStop.
	ErrUnknownStop = errors.New("catalogue: unknown stop")

	// ErrUnknownBus indicates BusInfo was asked about a bus number that was
	// never added with AddBus.
	ErrUnknownBus = errors.New("catalogue: unknown bus")

	// ErrDistanceUndefined indicates neither (src,dst) nor (dst,src) has a
	// declared road distance.
	ErrDistanceUndefined = errors.New("catalogue: distance undefined")

	// ErrBadInput indicates a structurally invalid add: a route with fewer
	// than two stops, a loop whose first stop does not equal its last, or a
	// non-positive distance value.
	ErrBadInput = errors.New("catalogue: bad input")

	// ErrAlreadySealed indicates a mutating call (AddStop, AddBus,
	// AddDistance, Seal) was made after Seal() had already succeeded.
	ErrAlreadySealed = errors.New("catalogue: already sealed")
)
