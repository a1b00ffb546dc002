package cli

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/fetch"
)

// parseSource reads a command argument as a URL, a file path or, when
// allowProgram is set and the argument is no existing path, a program id.
func parseSource(arg string, allowProgram bool, exists func(string) bool) fetch.Source {
	switch {
	case strings.HasPrefix(arg, "http://"), strings.HasPrefix(arg, "https://"):
		return fetch.Source{URL: arg}
	case allowProgram && !exists(arg) && !strings.ContainsAny(arg, `/\.`):
		return fetch.Source{Program: arg}
	default:
		return fetch.Source{Path: arg}
	}
}

// newRouter wires the file, HTTP and RPC fetchers. An empty endpoint leaves
// program sources unsupported.
func newRouter(endpoint string, timeout time.Duration, log *zap.Logger) *fetch.Router {
	r := &fetch.Router{
		File: fetch.FileFetcher{},
		HTTP: fetch.NewHTTPFetcher(timeout),
	}
	if endpoint != "" {
		r.RPC = fetch.NewRPCFetcherForEndpoint(endpoint, log)
	}
	return r
}
