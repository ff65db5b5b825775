package privySigner

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Layr-Labs/solana-signer-go/pkg/clients/privy"
	"github.com/Layr-Labs/solana-signer-go/pkg/sdk"
	"github.com/Layr-Labs/solana-signer-go/pkg/signerErrors"
	"github.com/Layr-Labs/solana-signer-go/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testAppId     = "test-app-id"
	testAppSecret = "test-app-secret"
	testWalletId  = "test-wallet-id"
)

// fakePrivy answers wallet lookups with address and signs rpc payloads as the
// message of tx, returning tx with key's signature in its slot.
type fakePrivy struct {
	t       *testing.T
	key     sdk.PrivateKey
	address string
	tx      *sdk.Transaction

	walletStatus atomic.Int32
	walletCalls  atomic.Int32

	// respond overrides the signed_transaction value when set
	respond func(payload []byte) string
}

func (f *fakePrivy) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/wallets/" + testWalletId:
		f.walletCalls.Add(1)
		if status := f.walletStatus.Load(); status != 0 {
			w.WriteHeader(int(status))
			_, _ = w.Write([]byte(`{"error":"Invalid app ID or app secret"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(privy.WalletResponse{Id: testWalletId, Address: f.address, ChainType: "solana"})
	case "/wallets/" + testWalletId + "/rpc":
		var request privy.SignTransactionRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		payload, err := base64.StdEncoding.DecodeString(request.Params.Transaction)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var signed string
		if f.respond != nil {
			signed = f.respond(payload)
		} else {
			signed = f.sign(payload)
		}
		_ = json.NewEncoder(w).Encode(privy.SignTransactionResponse{
			Method: "signTransaction",
			Data:   privy.SignTransactionData{SignedTransaction: signed, Encoding: "base64"},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePrivy) sign(payload []byte) string {
	signatures := make([]sdk.Signature, sdk.NumRequiredSignatures(f.tx))
	for i, key := range f.tx.Message.AccountKeys[:len(signatures)] {
		if key.Equals(f.key.PublicKey()) {
			copy(signatures[i][:], ed25519.Sign(ed25519.PrivateKey(f.key), payload))
		}
	}
	return base64.StdEncoding.EncodeToString(testutil.EncodeWithSignatures(f.t, f.tx, signatures))
}

func newFakePrivy(t *testing.T, key sdk.PrivateKey, tx *sdk.Transaction, opts ...func(*fakePrivy)) (*fakePrivy, *httptest.Server) {
	fake := &fakePrivy{t: t, key: key, address: key.PublicKey().String(), tx: tx}
	for _, opt := range opts {
		opt(fake)
	}
	server := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(server.Close)
	return fake, server
}

func newTestSigner(t *testing.T, baseUrl string) *PrivySigner {
	signer, err := NewPrivySigner(&privy.Config{
		AppId:     testAppId,
		AppSecret: testAppSecret,
		WalletId:  testWalletId,
		BaseUrl:   baseUrl,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return signer
}

func Test_PrivySignerLifecycle(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	tx := testutil.CreateTestTransaction(t, key.PublicKey())
	fake, server := newFakePrivy(t, key, tx)
	ctx := context.Background()

	signer := newTestSigner(t, server.URL)

	t.Run("Should be unavailable before Init", func(t *testing.T) {
		assert.Equal(t, sdk.PublicKey{}, signer.PublicKey())
		assert.False(t, signer.IsAvailable(ctx))

		_, err := signer.SignMessage(ctx, []byte("x"))
		assert.ErrorIs(t, err, signerErrors.ErrNotAvailable)

		signed, err := signer.SignTransaction(ctx, testutil.CreateTestTransaction(t, key.PublicKey()))
		assert.Nil(t, signed)
		assert.ErrorIs(t, err, signerErrors.ErrNotAvailable)
	})

	t.Run("Should fetch the wallet address on Init", func(t *testing.T) {
		require.NoError(t, signer.Init(ctx))
		assert.Equal(t, key.PublicKey(), signer.PublicKey())
		assert.True(t, signer.IsAvailable(ctx))
	})

	t.Run("Should not refetch after a successful Init", func(t *testing.T) {
		before := fake.walletCalls.Load()
		require.NoError(t, signer.Init(ctx))
		assert.Equal(t, before, fake.walletCalls.Load())
	})
}

func Test_PrivySignerInitFailures(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	tx := testutil.CreateTestTransaction(t, key.PublicKey())
	ctx := context.Background()

	t.Run("Should report a rejected credential and allow a retry", func(t *testing.T) {
		fake, server := newFakePrivy(t, key, tx)
		fake.walletStatus.Store(http.StatusUnauthorized)
		signer := newTestSigner(t, server.URL)

		err := signer.Init(ctx)
		assert.ErrorIs(t, err, signerErrors.ErrRemoteApiError)
		assert.False(t, signer.IsAvailable(ctx))
		assert.Equal(t, sdk.PublicKey{}, signer.PublicKey())

		fake.walletStatus.Store(0)
		require.NoError(t, signer.Init(ctx))
		assert.True(t, signer.IsAvailable(ctx))
	})

	t.Run("Should reject an invalid wallet address", func(t *testing.T) {
		_, server := newFakePrivy(t, key, tx, func(f *fakePrivy) { f.address = "not-a-solana-address" })
		signer := newTestSigner(t, server.URL)

		err := signer.Init(ctx)
		assert.ErrorIs(t, err, signerErrors.ErrInvalidPublicKey)
		assert.False(t, signer.IsAvailable(ctx))
	})

	t.Run("Should serialize concurrent Init calls", func(t *testing.T) {
		fake, server := newFakePrivy(t, key, tx)
		signer := newTestSigner(t, server.URL)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, signer.Init(ctx))
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), fake.walletCalls.Load())
		assert.Equal(t, key.PublicKey(), signer.PublicKey())
	})
}

func Test_PrivySignerSigning(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	ctx := context.Background()

	t.Run("Should return the remote transaction and write the signature locally", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, key.PublicKey())
		_, server := newFakePrivy(t, key, tx)
		signer := newTestSigner(t, server.URL)
		require.NoError(t, signer.Init(ctx))

		message, err := sdk.MessageBytes(tx)
		require.NoError(t, err)

		signed, err := signer.SignTransaction(ctx, tx)
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(ed25519.PublicKey(key.PublicKey().Bytes()), message, signed.Signature[:]))

		remote, err := base64.StdEncoding.DecodeString(signed.EncodedTransaction)
		require.NoError(t, err)
		decoded, err := sdk.UnmarshalTransaction(remote)
		require.NoError(t, err)
		assert.Equal(t, signed.Signature, decoded.Signatures[0])

		require.Len(t, tx.Signatures, 1)
		assert.Equal(t, signed.Signature, tx.Signatures[0])
	})

	t.Run("Should sign a partial transaction in the cosigner slot", func(t *testing.T) {
		payer := testutil.CreateTestKeypair(t)
		tx := testutil.CreateMultiSignerTransaction(t, payer.PublicKey(), key.PublicKey())
		_, server := newFakePrivy(t, key, tx)
		signer := newTestSigner(t, server.URL)
		require.NoError(t, signer.Init(ctx))

		signed, err := signer.SignPartialTransaction(ctx, tx)
		require.NoError(t, err)
		require.Len(t, tx.Signatures, 2)
		assert.Equal(t, sdk.Signature{}, tx.Signatures[0])
		assert.Equal(t, signed.Signature, tx.Signatures[1])
	})

	t.Run("Should return only the signature for a message", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, key.PublicKey())
		_, server := newFakePrivy(t, key, tx)
		signer := newTestSigner(t, server.URL)
		require.NoError(t, signer.Init(ctx))

		message, err := sdk.MessageBytes(tx)
		require.NoError(t, err)
		sig, err := signer.SignMessage(ctx, message)
		require.NoError(t, err)
		assert.True(t, ed25519.Verify(ed25519.PublicKey(key.PublicKey().Bytes()), message, sig[:]))
	})
}

func Test_PrivySignerBadResponses(t *testing.T) {
	key := testutil.CreateTestKeypair(t)
	other := testutil.CreateTestKeypair(t)
	ctx := context.Background()

	tx := testutil.CreateTestTransaction(t, key.PublicKey())
	foreignTx := testutil.CreateTestTransaction(t, other.PublicKey())

	tests := []struct {
		name        string
		respond     func(t *testing.T) func(payload []byte) string
		expectedErr error
	}{
		{
			name: "signer missing from the returned transaction",
			respond: func(t *testing.T) func([]byte) string {
				return func([]byte) string {
					sigs := []sdk.Signature{{1}}
					return base64.StdEncoding.EncodeToString(testutil.EncodeWithSignatures(t, foreignTx, sigs))
				}
			},
			expectedErr: signerErrors.ErrSigningFailed,
		},
		{
			name: "no signatures in the returned transaction",
			respond: func(t *testing.T) func([]byte) string {
				return func([]byte) string {
					return base64.StdEncoding.EncodeToString(testutil.EncodeWithSignatures(t, tx, nil))
				}
			},
			expectedErr: signerErrors.ErrSigningFailed,
		},
		{
			name: "empty signature slot",
			respond: func(t *testing.T) func([]byte) string {
				return func([]byte) string {
					sigs := []sdk.Signature{{}}
					return base64.StdEncoding.EncodeToString(testutil.EncodeWithSignatures(t, tx, sigs))
				}
			},
			expectedErr: signerErrors.ErrSigningFailed,
		},
		{
			name: "invalid base64",
			respond: func(t *testing.T) func([]byte) string {
				return func([]byte) string { return "%%%not-base64" }
			},
			expectedErr: signerErrors.ErrSerializationError,
		},
		{
			name: "truncated transaction bytes",
			respond: func(t *testing.T) func([]byte) string {
				return func([]byte) string { return base64.StdEncoding.EncodeToString([]byte{5}) }
			},
			expectedErr: signerErrors.ErrSerializationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, server := newFakePrivy(t, key, tx, func(f *fakePrivy) { f.respond = tt.respond(t) })
			signer := newTestSigner(t, server.URL)
			require.NoError(t, signer.Init(ctx))

			local := testutil.CreateTestTransaction(t, key.PublicKey())
			signed, err := signer.SignTransaction(ctx, local)
			assert.Nil(t, signed)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Empty(t, local.Signatures)
		})
	}
}

func Test_SignTransactionRequiresLocalSignerSlot(t *testing.T) {
	ctx := context.Background()
	key := testutil.CreateTestKeypair(t)
	_, server := newFakePrivy(t, key, testutil.CreateTestTransaction(t, key.PublicKey()))

	signer := newTestSigner(t, server.URL)
	require.NoError(t, signer.Init(ctx))

	other := testutil.CreateTestKeypair(t)
	tx := testutil.CreateTestTransaction(t, other.PublicKey())

	signed, err := signer.SignTransaction(ctx, tx)
	assert.Nil(t, signed)
	assert.ErrorIs(t, err, signerErrors.ErrSigningFailed)
	assert.Empty(t, tx.Signatures)

	signed, err = signer.SignPartialTransaction(ctx, tx)
	assert.Nil(t, signed)
	assert.ErrorIs(t, err, signerErrors.ErrSigningFailed)
	assert.Empty(t, tx.Signatures)
}
