package domain

// ResolutionKind tags the outcome of resolving a module name.
type ResolutionKind uint8

const (
	// ResolutionNotFound means the finder does not recognize the name. It is not an error.
	ResolutionNotFound ResolutionKind = iota
	// ResolutionFound means a source file was located.
	ResolutionFound
	// ResolutionFailed means resolution itself failed.
	ResolutionFailed
)

// String returns the string representation of the ResolutionKind.
func (k ResolutionKind) String() string {
	switch k {
	case ResolutionFound:
		return "found"
	case ResolutionFailed:
		return "failed"
	default:
		return "not found"
	}
}

// Resolution is the tagged result of a finder lookup.
type Resolution struct {
	Kind ResolutionKind
	// Path is the absolute source path when Kind is ResolutionFound.
	Path string
	// Err is set when Kind is ResolutionFailed.
	Err error
}

// Found returns a successful resolution for path.
func Found(path string) Resolution {
	return Resolution{Kind: ResolutionFound, Path: path}
}

// NotFound returns the declining resolution.
func NotFound() Resolution {
	return Resolution{Kind: ResolutionNotFound}
}

// Failed returns a resolution carrying err.
func Failed(err error) Resolution {
	return Resolution{Kind: ResolutionFailed, Err: err}
}

// IsFound reports whether a source was located.
func (r Resolution) IsFound() bool {
	return r.Kind == ResolutionFound
}
