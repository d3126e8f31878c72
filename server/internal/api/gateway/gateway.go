// Gateway API implementation
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"SlideLab/server/internal/pkg/encryption"
	"SlideLab/server/internal/pkg/helpers"
	"SlideLab/server/internal/pkg/slide"
	"SlideLab/server/internal/protocol"
	"SlideLab/server/internal/services/attack"
	"SlideLab/server/internal/services/auth"
)

// requestTimeout bounds every storage-backed handler
const requestTimeout = 5 * time.Second

// Server represents the API gateway
type Server struct {
	addr       string
	authSvc    *auth.Service
	attackSvc  *attack.Service
	log        *helpers.Logger
	mu         sync.RWMutex
	clients    map[*Client]bool
	broadcast  chan interface{}
	register   chan *Client
	unregister chan *Client
	hubOnce    sync.Once
}

// Client represents a connected WebSocket client
type Client struct {
	conn   *websocket.Conn
	send   chan interface{}
	server *Server
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractToken extracts the token from "Bearer <token>" format
func extractToken(authHeader string) string {
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// New creates a new gateway server
func New(addr string, authSvc *auth.Service, attackSvc *attack.Service) *Server {
	server := &Server{
		addr:       addr,
		authSvc:    authSvc,
		attackSvc:  attackSvc,
		log:        helpers.NewLogger("Gateway"),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan interface{}, 1024), // Buffered channel to prevent blocking
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	attackSvc.SetBroadcastHandler(server.Broadcast)
	return server
}

// Handler builds the router and starts the hub goroutine on first use
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() { go s.runHub() })

	router := mux.NewRouter()

	// Root endpoint - return OK for health checks
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("SlideLab API Server"))
	}).Methods("GET", "OPTIONS")

	router.HandleFunc("/api/auth/token", s.handleToken).Methods("POST", "OPTIONS")

	// Cipher endpoints; decryption needs an operator token
	router.HandleFunc("/api/cipher", s.handleCipherInfo).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/encrypt", s.handleEncrypt).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/encrypt/short", s.handleEncryptShort).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/decrypt", s.requireOperator(s.handleDecrypt)).Methods("POST", "OPTIONS")

	// Corpus and attack endpoints
	router.HandleFunc("/api/corpora", s.requireOperator(s.handleCreateCorpus)).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/corpora/{corpusID}", s.handleGetCorpus).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/corpora/{corpusID}/attack", s.requireOperator(s.handleAttack)).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/corpora/{corpusID}/recoveries", s.handleGetRecoveries).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/confirm", s.handleConfirm).Methods("POST", "OPTIONS")

	// WebSocket endpoint
	router.HandleFunc("/ws", s.handleWebSocket)

	return corsMiddleware(router)
}

// Start starts the gateway server
func (s *Server) Start() error {
	handler := s.Handler()
	fmt.Printf("Gateway server listening on %s\n", s.addr)
	return http.ListenAndServe(s.addr, handler)
}

// requireOperator rejects requests without a valid operator token
func (s *Server) requireOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Missing authorization token", http.StatusUnauthorized)
			return
		}

		token := extractToken(authHeader)
		if token == "" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		if _, err := s.authSvc.ValidateToken(token); err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

// handleToken exchanges the operator password for a token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req protocol.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	token, err := s.authSvc.Login(req.Operator, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	writeJSON(w, map[string]string{
		"operator": req.Operator,
		"token":    token,
	})
}

// handleCipherInfo returns the public cipher parameters (never the keys)
func (s *Server) handleCipherInfo(w http.ResponseWriter, r *http.Request) {
	cipher := s.attackSvc.Cipher()
	writeJSON(w, map[string]interface{}{
		"name":       cipher.Name(),
		"block_bits": cipher.BlockSize(),
		"rounds":     cipher.Rounds(),
		"sbox":       cipher.SBox().Ints(),
	})
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	cipher := s.attackSvc.Cipher()
	s.handleBlock(w, r, cipher.Rounds(), cipher.EncryptBlock)
}

func (s *Server) handleEncryptShort(w http.ResponseWriter, r *http.Request) {
	s.handleBlock(w, r, encryption.ShortRounds, s.attackSvc.Cipher().EncryptShort)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	cipher := s.attackSvc.Cipher()
	s.handleBlock(w, r, cipher.Rounds(), cipher.DecryptBlock)
}

// handleBlock decodes one block, applies fn and writes the result
func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request, rounds int, fn func(encryption.Block) encryption.Block) {
	var req protocol.EncryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	block, err := encryption.ParseBlock(req.Block)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, protocol.EncryptResponse{
		Input:  req.Block,
		Output: int(fn(block)),
		Rounds: rounds,
	})
}

func (s *Server) handleCreateCorpus(w http.ResponseWriter, r *http.Request) {
	var req protocol.CorpusCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var (
		rec *protocol.CorpusRecord
		err error
	)
	if req.Random > 0 {
		if len(req.Plaintexts) > 0 {
			http.Error(w, "plaintexts and random are mutually exclusive", http.StatusBadRequest)
			return
		}
		if err := helpers.ValidateRandomCount(req.Random); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		seed := time.Now().UnixNano()
		if req.Seed != nil {
			seed = *req.Seed
		}
		rec, err = s.attackSvc.CreateRandomCorpus(ctx, req.Name, req.Random, seed)
	} else {
		plaintexts, verr := helpers.ValidatePlaintexts(req.Plaintexts)
		if verr != nil {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		rec, err = s.attackSvc.CreateCorpus(ctx, req.Name, plaintexts)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleGetCorpus(w http.ResponseWriter, r *http.Request) {
	corpusID, ok := corpusIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rec, err := s.attackSvc.GetCorpus(ctx, corpusID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, rec)
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	corpusID, ok := corpusIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	report, err := s.attackSvc.RunAttack(ctx, corpusID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleGetRecoveries(w http.ResponseWriter, r *http.Request) {
	corpusID, ok := corpusIDFromPath(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recs, err := s.attackSvc.ListRecoveries(ctx, corpusID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"recoveries": recs})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req protocol.ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := helpers.ValidateCorpusID(req.CorpusID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	k0, k1, err := helpers.ValidateKeyPair(req.K0, req.K1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	confirmed, err := s.attackSvc.Confirm(ctx, req.CorpusID, k0, k1)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, protocol.ConfirmResponse{
		CorpusID:  req.CorpusID,
		K0:        req.K0,
		K1:        req.K1,
		Confirmed: confirmed,
	})
}

// writeError maps service errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, attack.ErrCorpusNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, slide.ErrInsufficientData),
		errors.Is(err, encryption.ErrDomain),
		errors.Is(err, encryption.ErrInvalidSBox),
		errors.Is(err, encryption.ErrInvalidRounds):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error("Request failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func corpusIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	corpusID := parseInt(mux.Vars(r)["corpusID"])
	if err := helpers.ValidateCorpusID(corpusID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return corpusID, true
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
