// Package herrors defines the error kinds the core reports across
// reader, loader, and emitter boundaries.
package herrors

import "fmt"

// Kind classifies an error the way the dispatch layer needs to react to it.
type Kind int

const (
	// IoError is an underlying OS error: file not found, permission denied,
	// disk full. Surfaced at the core boundary.
	IoError Kind = iota
	// FormatError means the binary reader recognised the container but
	// could not parse it (truncated, malformed). Logged, not fatal.
	FormatError
	// UnsupportedFormat means the file is well-formed but uses a feature
	// the reader does not handle. The component is still emitted.
	UnsupportedFormat
	// ConfigError is an invalid format/version string at configuration
	// time. Falls back to a default instead of failing.
	ConfigError
	// SidecarError is a JSON parse failure for one compiler sidecar file.
	SidecarError
	// OutputError means the final SBOM could not be written.
	OutputError
)

func (k Kind) String() string {
	switch k {
	case IoError:
		return "IoError"
	case FormatError:
		return "FormatError"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case ConfigError:
		return "ConfigError"
	case SidecarError:
		return "SidecarError"
	case OutputError:
		return "OutputError"
	default:
		return "UnknownError"
	}
}

// Error wraps an underlying cause with the Kind that decides how the
// dispatch layer should react to it.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "elfreader.ExtractSymbols"
	Path string // the file path involved, if any
	Err  error  // the underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	var he *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			he = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return he != nil && he.Kind == kind
}
