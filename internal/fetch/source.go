package fetch

import (
	"context"
	"errors"
)

// Source locates the document of one program. The first non-empty of
// Path, URL and Program is used.
type Source struct {
	Path    string
	URL     string
	Program string
}

// String describes the source for logs.
func (s Source) String() string {
	switch {
	case s.Path != "":
		return "file " + s.Path
	case s.URL != "":
		return "url " + s.URL
	case s.Program != "":
		return "program " + s.Program
	default:
		return "none"
	}
}

// ErrNoSource is returned for a Source with no location set.
var ErrNoSource = errors.New("idl source has no path, url or program")

// Router dispatches a Source to the matching fetcher. A nil fetcher fails
// sources of that kind.
type Router struct {
	File Fetcher
	HTTP Fetcher
	RPC  Fetcher
}

// Fetch loads the document of src.
func (r *Router) Fetch(ctx context.Context, src Source) ([]byte, error) {
	var f Fetcher
	var ref string
	switch {
	case src.Path != "":
		f, ref = r.File, src.Path
	case src.URL != "":
		f, ref = r.HTTP, src.URL
	case src.Program != "":
		f, ref = r.RPC, src.Program
	default:
		return nil, ErrNoSource
	}
	if f == nil {
		return nil, errors.New("no fetcher configured for " + src.String())
	}
	return f.Fetch(ctx, ref)
}
