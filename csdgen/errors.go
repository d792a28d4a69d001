package csdgen

import "github.com/pkg/errors"

var (
	// ErrTemplateInvalid is returned when an opcode is built from a template
	// that lacks the annotations needed to determine its signature.
	ErrTemplateInvalid = errors.New("invalid opcode template")

	// ErrParameterCountMismatch is logged when a module has a different number
	// of parameters than its template declares. It is not returned; the
	// parameters are replaced with InvalidParam instead.
	ErrParameterCountMismatch = errors.New("parameter count mismatch")

	// ErrUnsupportedMapping is returned for value mappings of an unknown kind
	// or mappings that cannot be resolved.
	ErrUnsupportedMapping = errors.New("unsupported value mapping")

	// ErrUnsupportedRateConversion is returned when a cable connects ports of
	// different rates. Converting between rates is not implemented.
	ErrUnsupportedRateConversion = errors.New("patch cable rate conversion is not implemented")

	// ErrUnknownRate is returned for rate tags other than 'k' and 'a'.
	ErrUnknownRate = errors.New("unknown rate type")
)
