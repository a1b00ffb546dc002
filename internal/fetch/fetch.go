// Package fetch loads IDL documents from files, HTTP endpoints and on-chain
// IDL accounts.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/zhairuihao/anchor-src-gen/internal/onchain"
)

// ErrNotFound reports that a source holds no document. Callers skip such
// programs instead of retrying them.
var ErrNotFound = errors.New("idl not found")

// MaxDocumentSize bounds documents read over HTTP.
const MaxDocumentSize = 64 << 20

// Fetcher loads the raw document identified by ref.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// FileFetcher reads documents from the local filesystem.
type FileFetcher struct{}

// Fetch reads the file at path.
func (FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read idl: %w", err)
	}
	return data, nil
}

// HTTPFetcher downloads documents with GET requests.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.Status)
}

// Fetch downloads url. A 404 or 410 maps to ErrNotFound; other non-2xx
// responses return a *StatusError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{URL: url, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("GET %s: document larger than %d bytes", url, MaxDocumentSize)
	}
	return data, nil
}

// AccountGetter is the part of *rpc.Client the RPC fetcher uses.
type AccountGetter interface {
	GetAccountInfoWithOpts(ctx context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error)
}

// RPCFetcher reads the IDL account of a program through a JSON RPC node.
type RPCFetcher struct {
	client     AccountGetter
	commitment rpc.CommitmentType
	log        *zap.Logger
}

// NewRPCFetcher creates a fetcher reading at confirmed commitment.
func NewRPCFetcher(client AccountGetter, log *zap.Logger) *RPCFetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &RPCFetcher{client: client, commitment: rpc.CommitmentConfirmed, log: log}
}

// NewRPCFetcherForEndpoint dials endpoint.
func NewRPCFetcherForEndpoint(endpoint string, log *zap.Logger) *RPCFetcher {
	return NewRPCFetcher(rpc.New(endpoint), log)
}

// Fetch derives the IDL account of the base58 program address and returns
// its decompressed document.
func (f *RPCFetcher) Fetch(ctx context.Context, program string) ([]byte, error) {
	id, err := solana.PublicKeyFromBase58(program)
	if err != nil {
		return nil, fmt.Errorf("program address %q: %w", program, err)
	}
	addr, err := onchain.IDLAddress(id)
	if err != nil {
		return nil, err
	}

	out, err := f.client.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: f.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil || out.Value.Data == nil)) {
		return nil, fmt.Errorf("%w: program %s has no idl account at %s", ErrNotFound, id, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("get idl account %s: %w", addr, err)
	}

	acct, err := onchain.DecodePayload(out.Value.Data.GetBinary())
	if errors.Is(err, onchain.ErrEmptyPayload) {
		return nil, fmt.Errorf("%w: idl account %s is empty", ErrNotFound, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("idl account %s: %w", addr, err)
	}
	if !acct.Anchor() {
		f.log.Warn("idl account has an unexpected tag",
			zap.String("program", id.String()),
			zap.String("account", addr.String()))
	}
	return acct.JSON, nil
}
