package rt

import "errors"

// Configuration errors. Init fails with these before any resource is created.
var (
	// ErrDimensionsTooLarge is returned when width or height exceeds 65535.
	ErrDimensionsTooLarge = errors.New("rt: image dimensions exceed 16 bits")

	// ErrMixedPropSize is returned when objects carry different numbers of
	// shape parameters.
	ErrMixedPropSize = errors.New("rt: objects have mixed parameter counts")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("rt: invalid image dimensions")
)

// ErrNotInitialized is returned when Render is called before Init or after Close.
var ErrNotInitialized = errors.New("rt: renderer not initialized")

// Setup errors.
var (
	// ErrProgramBuild is returned when the kernel program fails to compile.
	ErrProgramBuild = errors.New("rt: kernel build failed")

	// ErrBufferAlloc is returned when a device buffer cannot be created.
	ErrBufferAlloc = errors.New("rt: buffer allocation failed")
)

// Per-frame errors. The frame is aborted; the renderer stays usable.
var (
	// ErrBindArguments is returned when kernel arguments cannot be bound.
	ErrBindArguments = errors.New("rt: binding kernel arguments failed")

	// ErrDispatch is returned when the kernel dispatch fails.
	ErrDispatch = errors.New("rt: kernel dispatch failed")

	// ErrReadBack is returned when the output buffer cannot be read back.
	ErrReadBack = errors.New("rt: output read-back failed")
)

// ErrUnknown wraps failures that fit no other category.
var ErrUnknown = errors.New("rt: unknown error")

// ErrorKind groups errors by the lifecycle stage that produced them.
type ErrorKind uint8

const (
	KindUnknown ErrorKind = iota
	KindConfiguration
	KindNotInitialized
	KindSetup
	KindFrame
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotInitialized:
		return "not-initialized"
	case KindSetup:
		return "setup"
	case KindFrame:
		return "frame"
	default:
		return "unknown"
	}
}

var kindTable = []struct {
	err  error
	kind ErrorKind
}{
	{ErrDimensionsTooLarge, KindConfiguration},
	{ErrMixedPropSize, KindConfiguration},
	{ErrInvalidDimensions, KindConfiguration},
	{ErrNotInitialized, KindNotInitialized},
	{ErrProgramBuild, KindSetup},
	{ErrBufferAlloc, KindSetup},
	{ErrBindArguments, KindFrame},
	{ErrDispatch, KindFrame},
	{ErrReadBack, KindFrame},
}

// KindOf classifies err by the first sentinel it wraps. Errors that wrap no
// known sentinel, including nil, are KindUnknown.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			return e.kind
		}
	}
	return KindUnknown
}
