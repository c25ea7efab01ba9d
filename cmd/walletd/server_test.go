package main

import (
	"bytes"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shieldcore/internal/walletcore"
	"shieldcore/internal/zerocash"
)

type testServer struct {
	*httptest.Server
	metrics *MetricsCollector
}

func newTestServer(t *testing.T, limiter *ClientRateLimiter) *testServer {
	t.Helper()
	metrics := NewMetricsCollector()
	core := walletcore.New(walletcore.NewZerocashLibrary(nil),
		walletcore.WithWorkers(2),
		walletcore.WithObserver(metrics),
	)
	health := NewHealthChecker("test")
	health.ProverReady(1, time.Millisecond)
	health.AddSelfTest("core", CoreSelfTest(core))
	api := NewWalletAPI(core, health, metrics, limiter, zerolog.Nop())

	srv := httptest.NewServer(api.GetRouter())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, metrics: metrics}
}

func (s *testServer) post(t *testing.T, path string, body any, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(s.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (s *testServer) generateKey(t *testing.T) walletcore.KeyBundle {
	t.Helper()
	var bundle walletcore.KeyBundle
	require.Equal(t, http.StatusOK, s.post(t, "/v1/keys", struct{}{}, &bundle))
	return bundle
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	var report HealthReport
	assert.Equal(t, http.StatusOK, s.get(t, "/healthz", &report))
	assert.Equal(t, Healthy, report.Status)
	require.Len(t, report.Components, 2)
	assert.Equal(t, "core", report.Components[1].Name)
	assert.Equal(t, "OK", report.Components[1].Message)
}

func TestKeyEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	bundle := s.generateKey(t)

	var derived walletcore.KeyBundle
	require.Equal(t, http.StatusOK, s.post(t, "/v1/keys/derive", spendingKeyRequest{SpendingKey: bundle.SpendingKey}, &derived))
	assert.Equal(t, bundle, derived)

	var addr addressResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/addresses/from-incoming-view-key", incomingViewKeyRequest{IncomingViewKey: bundle.IncomingViewKey}, &addr))
	assert.Equal(t, bundle.PublicAddress, addr.PublicAddress)

	var valid validityResponse
	require.Equal(t, http.StatusOK, s.get(t, "/v1/addresses/"+bundle.PublicAddress, &valid))
	assert.True(t, valid.Valid)
	require.Equal(t, http.StatusOK, s.get(t, "/v1/addresses/00ff", &valid))
	assert.False(t, valid.Valid)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/keys/derive", spendingKeyRequest{SpendingKey: "xyz"}, &errResp))
	assert.Equal(t, "InvalidKeyEncoding", errResp.Kind)
}

func TestMnemonicEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	bundle := s.generateKey(t)

	var words wordsResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/mnemonic/encode", wordsRequest{SpendingKey: bundle.SpendingKey, Language: walletcore.LanguageCodeFrench}, &words))
	assert.Len(t, strings.Fields(words.Words), zerocash.MnemonicWords)

	var key spendingKeyRequest
	require.Equal(t, http.StatusOK, s.post(t, "/v1/mnemonic/decode", wordsRequest{Words: words.Words, Language: walletcore.LanguageCodeFrench}, &key))
	assert.Equal(t, bundle.SpendingKey, key.SpendingKey)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/mnemonic/encode", wordsRequest{SpendingKey: bundle.SpendingKey, Language: 8}, &errResp))
	assert.Equal(t, "InvalidLanguageCode", errResp.Kind)
}

func TestCreateNoteAndDecrypt(t *testing.T) {
	s := newTestServer(t, nil)
	bundle := s.generateKey(t)

	var created noteResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/notes", createNoteRequest{
		Owner:   bundle.PublicAddress,
		Value:   42,
		Memo:    hex.EncodeToString([]byte("rent")),
		AssetID: hex.EncodeToString(zerocash.NativeAssetID[:]),
		Sender:  bundle.PublicAddress,
	}, &created))

	raw, err := hex.DecodeString(created.Note)
	require.NoError(t, err)
	note, err := zerocash.ReadNote(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), note.Value())
	memo := note.Memo()
	assert.Equal(t, "rent", string(bytes.TrimRight(memo[:], "\x00")))

	key, err := zerocash.SaplingKeyFromHex(bundle.SpendingKey)
	require.NoError(t, err)
	mn, err := zerocash.NewMerkleNote(note, key.OutgoingViewKey())
	require.NoError(t, err)
	ciphertext := hex.EncodeToString(mn.Serialize())

	other := s.generateKey(t)
	batch := []string{"not hex", ciphertext, ciphertext}

	var owner decryptResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/notes/decrypt/owner", decryptRequest{Ciphertexts: batch, Key: bundle.IncomingViewKey}, &owner))
	require.Len(t, owner.Notes, 2)
	assert.Equal(t, uint32(1), owner.Notes[0].Index)
	assert.Equal(t, uint32(2), owner.Notes[1].Index)
	assert.Equal(t, created.Note, owner.Notes[0].Note)

	var spender decryptResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/notes/decrypt/spender", decryptRequest{Ciphertexts: batch, Key: bundle.OutgoingViewKey}, &spender))
	assert.Len(t, spender.Notes, 2)

	var stranger decryptResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/notes/decrypt/owner", decryptRequest{Ciphertexts: batch, Key: other.IncomingViewKey}, &stranger))
	assert.NotNil(t, stranger.Notes)
	assert.Empty(t, stranger.Notes)

	var nf hashResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/notes/nullifier", nullifierRequest{Note: created.Note, Position: 7, ViewKey: bundle.ViewKey}, &nf))
	assert.Len(t, nf.Hash, 2*walletcore.HashSize)

	metrics := scrape(t, s)
	assert.Contains(t, metrics, `walletd_decrypt_skipped_total{direction="owner",stage="hex"} 2`)
	assert.Contains(t, metrics, `walletd_decrypted_notes_total{direction="owner"} 2`)
	assert.Contains(t, metrics, `walletd_decrypt_batches_total{direction="spender"} 1`)
}

func TestCreateNoteRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	bundle := s.generateKey(t)
	asset := hex.EncodeToString(zerocash.NativeAssetID[:])

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/notes", createNoteRequest{
		Owner: "zz", AssetID: asset, Sender: bundle.PublicAddress,
	}, &errResp))
	assert.Empty(t, errResp.Kind)

	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/notes", createNoteRequest{
		Owner: bundle.PublicAddress, AssetID: "00", Sender: bundle.PublicAddress,
	}, &errResp))
	assert.Equal(t, "DecodeError", errResp.Kind)

	errResp = errorResponse{}
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/notes", createNoteRequest{
		Owner: bundle.PublicAddress, Memo: "rent", AssetID: asset, Sender: bundle.PublicAddress,
	}, &errResp))
	assert.Equal(t, "memo: invalid hex", errResp.Error)
	assert.Empty(t, errResp.Kind)
}

func TestWitnessEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	zero := hex.EncodeToString(make([]byte, walletcore.HashSize))

	var witness witnessResponse
	require.Equal(t, http.StatusOK, s.post(t, "/v1/witness", witnessJSON{
		RootHash: zero,
		TreeSize: 4,
		AuthPath: []witnessNodeJSON{
			{Side: "Right", HashOfSibling: zero},
			{Side: "Left", HashOfSibling: zero},
		},
	}, &witness))
	assert.Equal(t, uint64(1), witness.Position)
	assert.Equal(t, 2, witness.Depth)
	assert.Equal(t, zero, witness.RootHash)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/witness", witnessJSON{
		RootHash: zero,
		AuthPath: []witnessNodeJSON{{Side: "right", HashOfSibling: zero}},
	}, &errResp))
	assert.Equal(t, "InvalidWitnessSide", errResp.Kind)
}

func TestTransactionEndpointsRejectBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	bundle := s.generateKey(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/transactions", createTransactionRequest{
		Version: 9, SpendingKey: bundle.SpendingKey,
	}, &errResp))
	assert.Equal(t, "UnsupportedTransactionVersion", errResp.Kind)

	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/transactions", createTransactionRequest{
		Version: 1, Outputs: []string{"nope"}, SpendingKey: bundle.SpendingKey,
	}, &errResp))

	assert.Equal(t, http.StatusBadRequest, s.post(t, "/v1/transactions/hash", hashTransactionRequest{Transaction: "0102"}, &errResp))
	assert.Equal(t, "DecodeError", errResp.Kind)

	assert.Contains(t, scrape(t, s), `walletd_transactions_total{outcome="UnsupportedTransactionVersion"} 1`)
}

func TestMalformedBody(t *testing.T) {
	s := newTestServer(t, nil)
	resp, err := http.Post(s.URL+"/v1/keys/derive", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimitedRoutes(t *testing.T) {
	s := newTestServer(t, NewClientRateLimiter(1, 1, time.Hour))
	s.generateKey(t)

	var errResp errorResponse
	assert.Equal(t, http.StatusTooManyRequests, s.post(t, "/v1/keys", struct{}{}, &errResp))
	assert.Equal(t, http.StatusOK, s.get(t, "/healthz", nil), "health is not limited")
	assert.Contains(t, scrape(t, s), "walletd_http_rate_limited_total 1")
}

func scrape(t *testing.T, s *testServer) string {
	t.Helper()
	resp, err := http.Get(s.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
