package thetadup

import "errors"

// Error taxonomy for the package. Every failure returned across the public
// surface wraps one of these sentinels, so callers can discriminate with
// errors.Is instead of parsing message strings.
var (
	// ErrInvalidArgument reports a caller-supplied parameter outside its
	// valid domain: lg_k < MinLgK, p outside (0,1], or an empty byte input
	// where a header is expected.
	ErrInvalidArgument = errors.New("thetadup: invalid argument")

	// ErrVersionMismatch reports a serialized serial_version byte that does
	// not match serialVersion.
	ErrVersionMismatch = errors.New("thetadup: serial version mismatch")

	// ErrTypeMismatch reports a serialized sketch_type byte the requested
	// deserializer does not recognize.
	ErrTypeMismatch = errors.New("thetadup: sketch type mismatch")

	// ErrSeedMismatch reports a serialized seed_hash that does not match the
	// caller-supplied seed.
	ErrSeedMismatch = errors.New("thetadup: seed hash mismatch")

	// ErrTruncated reports a byte buffer shorter than its declared layout.
	ErrTruncated = errors.New("thetadup: truncated input")

	// ErrIoFailure reports a read/write failure from an underlying byte sink.
	ErrIoFailure = errors.New("thetadup: io failure")

	// ErrLogicFault reports a probe cycle that completed without resolving,
	// which indicates a broken invariant. A correct implementation never
	// returns this; callers that see it should treat the sketch as corrupt.
	ErrLogicFault = errors.New("thetadup: probe cycle exhausted without resolution")
)
