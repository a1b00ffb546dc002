package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zhairuihao/anchor-src-gen/internal/onchain"
	"github.com/zhairuihao/anchor-src-gen/internal/testutil"
)

const escrowProgram = "Fg6PaFpoGXkYsidMpWTK6W2BeZ7FEfcYkg476zPFsLnS"

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "escrow.json")
	require.NoError(t, os.WriteFile(path, testutil.EscrowIDL(), 0o644))

	data, err := FileFetcher{}.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, testutil.EscrowIDL(), data)

	_, err = FileFetcher{}.Fetch(context.Background(), filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/escrow.json":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			_, _ = w.Write(testutil.EscrowIDL())
		case "/gone.json":
			w.WriteHeader(http.StatusGone)
		case "/busy.json":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5 * time.Second)

	t.Run("ok", func(t *testing.T) {
		data, err := f.Fetch(context.Background(), srv.URL+"/escrow.json")
		require.NoError(t, err)
		assert.Equal(t, testutil.EscrowIDL(), data)
	})

	t.Run("not found", func(t *testing.T) {
		for _, p := range []string{"/missing.json", "/gone.json"} {
			_, err := f.Fetch(context.Background(), srv.URL+p)
			assert.ErrorIs(t, err, ErrNotFound, p)
		}
	})

	t.Run("status", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/busy.json")
		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusTooManyRequests, se.Status)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Fetch(ctx, srv.URL+"/escrow.json")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// fakeAccounts serves account data keyed by address.
type fakeAccounts struct {
	accounts map[solana.PublicKey][]byte
	err      error
	calls    int
}

func (f *fakeAccounts) GetAccountInfoWithOpts(_ context.Context, account solana.PublicKey, opts *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if opts == nil || opts.Encoding != solana.EncodingBase64 {
		return nil, errors.New("expected base64 encoding")
	}
	data, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{Value: &rpc.Account{Data: rpc.DataBytesOrJSONFromBytes(data)}}, nil
}

func TestRPCFetcher(t *testing.T) {
	program := solana.MustPublicKeyFromBase58(escrowProgram)
	addr, err := onchain.IDLAddress(program)
	require.NoError(t, err)
	payload, err := onchain.EncodePayload(program, testutil.EscrowIDL())
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		client := &fakeAccounts{accounts: map[solana.PublicKey][]byte{addr: payload}}
		data, err := NewRPCFetcher(client, nil).Fetch(context.Background(), escrowProgram)
		require.NoError(t, err)
		assert.Equal(t, testutil.EscrowIDL(), data)
		assert.Equal(t, 1, client.calls)
	})

	t.Run("missing account", func(t *testing.T) {
		client := &fakeAccounts{accounts: map[solana.PublicKey][]byte{}}
		_, err := NewRPCFetcher(client, nil).Fetch(context.Background(), escrowProgram)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty account", func(t *testing.T) {
		client := &fakeAccounts{accounts: map[solana.PublicKey][]byte{addr: make([]byte, onchain.HeaderLength)}}
		_, err := NewRPCFetcher(client, nil).Fetch(context.Background(), escrowProgram)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transport", func(t *testing.T) {
		client := &fakeAccounts{err: errors.New("connection reset")}
		_, err := NewRPCFetcher(client, nil).Fetch(context.Background(), escrowProgram)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := NewRPCFetcher(&fakeAccounts{}, nil).Fetch(context.Background(), "not-base58!")
		require.Error(t, err)
	})

	t.Run("foreign tag warns", func(t *testing.T) {
		data := append([]byte(nil), payload...)
		data[0] ^= 0xff
		core, logs := observer.New(zap.WarnLevel)
		client := &fakeAccounts{accounts: map[solana.PublicKey][]byte{addr: data}}
		_, err := NewRPCFetcher(client, zap.New(core)).Fetch(context.Background(), escrowProgram)
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("idl account has an unexpected tag").Len())
	})
}

type staticFetcher string

func (s staticFetcher) Fetch(_ context.Context, ref string) ([]byte, error) {
	return []byte(string(s) + ":" + ref), nil
}

func TestRouter(t *testing.T) {
	r := &Router{File: staticFetcher("file"), HTTP: staticFetcher("http"), RPC: staticFetcher("rpc")}

	tests := []struct {
		name string
		src  Source
		want string
	}{
		{"path wins", Source{Path: "a.json", URL: "http://x", Program: escrowProgram}, "file:a.json"},
		{"url", Source{URL: "http://x/idl.json", Program: escrowProgram}, "http:http://x/idl.json"},
		{"program", Source{Program: escrowProgram}, "rpc:" + escrowProgram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Fetch(context.Background(), tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := r.Fetch(context.Background(), Source{})
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = (&Router{}).Fetch(context.Background(), Source{Program: escrowProgram})
	assert.Error(t, err)
}
