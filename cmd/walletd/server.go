// server.go - HTTP API for the wallet daemon
package main

import (
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"shieldcore/internal/walletcore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Requests larger than this are refused before decoding.
const maxRequestBytes = 32 << 20

// WalletAPI exposes Core operations over JSON. Binary fields are hex strings.
type WalletAPI struct {
	core    *walletcore.Core
	health  *HealthChecker
	metrics *MetricsCollector
	limiter *ClientRateLimiter
	logger  zerolog.Logger
	router  *mux.Router
}

// NewWalletAPI creates the API and registers its routes. limiter may be nil.
func NewWalletAPI(core *walletcore.Core, health *HealthChecker, metrics *MetricsCollector, limiter *ClientRateLimiter, logger zerolog.Logger) *WalletAPI {
	api := &WalletAPI{
		core:    core,
		health:  health,
		metrics: metrics,
		limiter: limiter,
		logger:  logger,
		router:  mux.NewRouter(),
	}
	api.setupRoutes()
	return api
}

func (api *WalletAPI) setupRoutes() {
	// Operational endpoints are not rate limited
	api.router.HandleFunc("/healthz", api.getHealth).Methods("GET")
	api.router.Handle("/metrics", api.metrics.Handler()).Methods("GET")

	v1 := api.router.PathPrefix("/v1").Subrouter()
	if api.limiter != nil {
		v1.Use(api.limiter.Middleware(api.metrics.RecordRateLimited))
	}
	v1.Use(api.observe)

	// Keys
	v1.HandleFunc("/keys", api.generateKey).Methods("POST")
	v1.HandleFunc("/keys/derive", api.deriveKey).Methods("POST")
	v1.HandleFunc("/addresses/{address}", api.validateAddress).Methods("GET")
	v1.HandleFunc("/addresses/from-incoming-view-key", api.addressFromIVK).Methods("POST")

	// Mnemonics
	v1.HandleFunc("/mnemonic/encode", api.keyToWords).Methods("POST")
	v1.HandleFunc("/mnemonic/decode", api.wordsToKey).Methods("POST")

	// Notes
	v1.HandleFunc("/notes", api.createNote).Methods("POST")
	v1.HandleFunc("/notes/nullifier", api.nullifier).Methods("POST")
	v1.HandleFunc("/notes/decrypt/owner", api.decryptForOwner).Methods("POST")
	v1.HandleFunc("/notes/decrypt/spender", api.decryptForSpender).Methods("POST")

	// Transactions
	v1.HandleFunc("/witness", api.reconstructWitness).Methods("POST")
	v1.HandleFunc("/transactions", api.createTransaction).Methods("POST")
	v1.HandleFunc("/transactions/hash", api.hashTransaction).Methods("POST")
}

// GetRouter returns the configured router
func (api *WalletAPI) GetRouter() *mux.Router {
	return api.router
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (api *WalletAPI) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		api.metrics.RecordRequest(route, rec.code)
		api.logger.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.code).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// Health

func (api *WalletAPI) getHealth(w http.ResponseWriter, r *http.Request) {
	report := api.health.Report()
	code := http.StatusOK
	if report.Status == Unhealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

// Keys

type spendingKeyRequest struct {
	SpendingKey string `json:"spendingKey"`
}

func (api *WalletAPI) generateKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.core.GenerateKey())
}

func (api *WalletAPI) deriveKey(w http.ResponseWriter, r *http.Request) {
	var req spendingKeyRequest
	if !readJSON(w, r, &req) {
		return
	}
	bundle, err := api.core.DeriveFromPrivateKey(req.SpendingKey)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

type validityResponse struct {
	Valid bool `json:"valid"`
}

func (api *WalletAPI) validateAddress(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	writeJSON(w, http.StatusOK, validityResponse{Valid: api.core.IsValidPublicAddress(address)})
}

type incomingViewKeyRequest struct {
	IncomingViewKey string `json:"incomingViewKey"`
}

type addressResponse struct {
	PublicAddress string `json:"publicAddress"`
}

func (api *WalletAPI) addressFromIVK(w http.ResponseWriter, r *http.Request) {
	var req incomingViewKeyRequest
	if !readJSON(w, r, &req) {
		return
	}
	address, err := api.core.PublicAddressFromIncomingViewKey(req.IncomingViewKey)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addressResponse{PublicAddress: address})
}

// Mnemonics

type wordsRequest struct {
	SpendingKey string                  `json:"spendingKey,omitempty"`
	Words       string                  `json:"words,omitempty"`
	Language    walletcore.LanguageCode `json:"language"`
}

type wordsResponse struct {
	Words string `json:"words"`
}

func (api *WalletAPI) keyToWords(w http.ResponseWriter, r *http.Request) {
	var req wordsRequest
	if !readJSON(w, r, &req) {
		return
	}
	words, err := api.core.SpendingKeyToWords(req.SpendingKey, req.Language)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wordsResponse{Words: words})
}

func (api *WalletAPI) wordsToKey(w http.ResponseWriter, r *http.Request) {
	var req wordsRequest
	if !readJSON(w, r, &req) {
		return
	}
	key, err := api.core.WordsToSpendingKey(req.Words, req.Language)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spendingKeyRequest{SpendingKey: key})
}

// Notes

type createNoteRequest struct {
	Owner   string `json:"owner"`
	Value   uint64 `json:"value"`
	Memo    string `json:"memo"`
	AssetID string `json:"assetId"`
	Sender  string `json:"sender"`
}

type noteResponse struct {
	Note string `json:"note"`
}

func (api *WalletAPI) createNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if !readJSON(w, r, &req) {
		return
	}
	owner, ok := decodeHexField(w, "owner", req.Owner)
	if !ok {
		return
	}
	sender, ok := decodeHexField(w, "sender", req.Sender)
	if !ok {
		return
	}
	asset, ok := decodeHexField(w, "assetId", req.AssetID)
	if !ok {
		return
	}
	memo, ok := decodeHexField(w, "memo", req.Memo)
	if !ok {
		return
	}
	note, err := api.core.CreateNote(walletcore.NoteParams{
		Owner:   owner,
		Value:   req.Value,
		Memo:    memo,
		AssetID: asset,
		Sender:  sender,
	})
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{Note: hex.EncodeToString(note)})
}

type nullifierRequest struct {
	Note     string `json:"note"`
	Position uint64 `json:"position"`
	ViewKey  string `json:"viewKey"`
}

type hashResponse struct {
	Hash string `json:"hash"`
}

func (api *WalletAPI) nullifier(w http.ResponseWriter, r *http.Request) {
	var req nullifierRequest
	if !readJSON(w, r, &req) {
		return
	}
	nf, err := api.core.Nullifier(req.Note, req.Position, req.ViewKey)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hashResponse{Hash: nf})
}

type decryptRequest struct {
	Ciphertexts []string `json:"ciphertexts"`
	Key         string   `json:"key"`
}

type decryptResponse struct {
	Notes []walletcore.DecryptedNote `json:"notes"`
}

func (api *WalletAPI) decryptForOwner(w http.ResponseWriter, r *http.Request) {
	api.decrypt(w, r, api.core.DecryptNotesForOwner)
}

func (api *WalletAPI) decryptForSpender(w http.ResponseWriter, r *http.Request) {
	api.decrypt(w, r, api.core.DecryptNotesForSpender)
}

func (api *WalletAPI) decrypt(w http.ResponseWriter, r *http.Request, run func([]string, string) ([]walletcore.DecryptedNote, error)) {
	var req decryptRequest
	if !readJSON(w, r, &req) {
		return
	}
	notes, err := run(req.Ciphertexts, req.Key)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	walletcore.SortByIndex(notes)
	if notes == nil {
		notes = []walletcore.DecryptedNote{}
	}
	writeJSON(w, http.StatusOK, decryptResponse{Notes: notes})
}

// Transactions

type witnessNodeJSON struct {
	Side          string `json:"side"`
	HashOfSibling string `json:"hashOfSibling"`
}

type witnessJSON struct {
	RootHash string            `json:"rootHash"`
	TreeSize uint64            `json:"treeSize"`
	AuthPath []witnessNodeJSON `json:"authPath"`
}

func (wj witnessJSON) wire() (walletcore.WireWitness, error) {
	root, err := hex.DecodeString(wj.RootHash)
	if err != nil {
		return walletcore.WireWitness{}, errors.New("rootHash: invalid hex")
	}
	out := walletcore.WireWitness{
		RootHash: root,
		TreeSize: wj.TreeSize,
		AuthPath: make([]walletcore.WireWitnessNode, len(wj.AuthPath)),
	}
	for i, node := range wj.AuthPath {
		sibling, err := hex.DecodeString(node.HashOfSibling)
		if err != nil {
			return walletcore.WireWitness{}, errors.New("authPath[" + strconv.Itoa(i) + "].hashOfSibling: invalid hex")
		}
		out.AuthPath[i] = walletcore.WireWitnessNode{Side: node.Side, HashOfSibling: sibling}
	}
	return out, nil
}

type witnessResponse struct {
	RootHash string `json:"rootHash"`
	TreeSize uint64 `json:"treeSize"`
	Position uint64 `json:"position"`
	Depth    int    `json:"depth"`
}

func (api *WalletAPI) reconstructWitness(w http.ResponseWriter, r *http.Request) {
	var req witnessJSON
	if !readJSON(w, r, &req) {
		return
	}
	wire, err := req.wire()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	witness, err := api.core.ReconstructWitness(wire)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	var position uint64
	for i, node := range witness.AuthPath {
		if node.Side == walletcore.SideRight {
			position |= 1 << uint(i)
		}
	}
	writeJSON(w, http.StatusOK, witnessResponse{
		RootHash: hex.EncodeToString(witness.RootHash[:]),
		TreeSize: witness.TreeSize,
		Position: position,
		Depth:    len(witness.AuthPath),
	})
}

type spendJSON struct {
	Note    string      `json:"note"`
	Witness witnessJSON `json:"witness"`
}

type createTransactionRequest struct {
	Version     uint8       `json:"version"`
	Fee         uint64      `json:"fee"`
	Expiration  uint32      `json:"expirationSequence"`
	Spends      []spendJSON `json:"spends"`
	Outputs     []string    `json:"outputs"`
	SpendingKey string      `json:"spendingKey"`
}

type transactionResponse struct {
	Transaction string `json:"transaction"`
	Hash        string `json:"hash"`
}

func (api *WalletAPI) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !readJSON(w, r, &req) {
		return
	}

	spends := make([]walletcore.SpendComponents, len(req.Spends))
	for i, s := range req.Spends {
		note, ok := decodeHexField(w, "spends["+strconv.Itoa(i)+"].note", s.Note)
		if !ok {
			return
		}
		wire, err := s.Witness.wire()
		if err != nil {
			writeError(w, http.StatusBadRequest, "spends["+strconv.Itoa(i)+"].witness."+err.Error(), "")
			return
		}
		spends[i] = walletcore.SpendComponents{Note: note, Witness: wire}
	}
	outputs := make([][]byte, len(req.Outputs))
	for i, o := range req.Outputs {
		note, ok := decodeHexField(w, "outputs["+strconv.Itoa(i)+"]", o)
		if !ok {
			return
		}
		outputs[i] = note
	}

	raw, err := api.core.CreateTransaction(req.Version, req.Fee, req.Expiration, spends, outputs, req.SpendingKey)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	hash, err := api.core.HashTransaction(raw)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionResponse{Transaction: hex.EncodeToString(raw), Hash: hash})
}

type hashTransactionRequest struct {
	Transaction string `json:"transaction"`
}

func (api *WalletAPI) hashTransaction(w http.ResponseWriter, r *http.Request) {
	var req hashTransactionRequest
	if !readJSON(w, r, &req) {
		return
	}
	raw, ok := decodeHexField(w, "transaction", req.Transaction)
	if !ok {
		return
	}
	hash, err := api.core.HashTransaction(raw)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hashResponse{Hash: hash})
}

// Helpers

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", "")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "")
		return false
	}
	return true
}

func decodeHexField(w http.ResponseWriter, field, s string) ([]byte, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+": invalid hex", "")
		return nil, false
	}
	return b, true
}

func writeCoreError(w http.ResponseWriter, err error) {
	kind, ok := walletcore.KindOf(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, err.Error(), "")
		return
	}
	code := http.StatusBadRequest
	if kind == walletcore.KindTransactionPosting {
		code = http.StatusUnprocessableEntity
	}
	writeError(w, code, err.Error(), kind.String())
}

func writeError(w http.ResponseWriter, code int, msg, kind string) {
	writeJSON(w, code, errorResponse{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
