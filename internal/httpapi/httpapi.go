// Package httpapi exposes the submission, read, and admin surfaces of
// spec.md 6 over plain net/http, grounded on the teacher's main.go +
// x402.Middleware wiring style (slog-based logging of every request,
// JSON bodies, bearer-token gated admin routes).
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ethdenver2026/relay/internal/admin"
	"github.com/ethdenver2026/relay/internal/rpcoracle"
	"github.com/ethdenver2026/relay/internal/store"
	"github.com/ethdenver2026/relay/internal/types"
)

// Coordinator is the narrow interface httpapi needs from
// internal/coordinator, kept small so tests can substitute a stub.
type Coordinator interface {
	Submit(ctx context.Context, auth types.Authorization) (string, error)
}

// Server wires the submission coordinator, the read APIs, and the admin
// surface into one http.Handler.
type Server struct {
	mux         *http.ServeMux
	coordinator Coordinator
	store       *store.Store
	admin       *admin.Surface
	tokens      *admin.TokenIssuer
	oracle      rpcoracle.Oracle
	log         *slog.Logger
}

// NewServer builds the HTTP handler tree.
func NewServer(coord Coordinator, s *store.Store, adminSurface *admin.Surface, tokens *admin.TokenIssuer, oracle rpcoracle.Oracle, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		mux:         http.NewServeMux(),
		coordinator: coord,
		store:       s,
		admin:       adminSurface,
		tokens:      tokens,
		oracle:      oracle,
		log:         logger,
	}
	srv.routes()
	return srv
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /submit", s.handleSubmit)
	s.mux.HandleFunc("GET /info", s.handleInfo)
	s.mux.HandleFunc("GET /logs", s.handleLogs)
	s.mux.HandleFunc("GET /relayer_address", s.handleRelayerAddress)

	s.mux.HandleFunc("POST /admin/set_rpc_target", s.adminHandler(s.handleSetRPCTarget))
	s.mux.HandleFunc("POST /admin/set_chain_id", s.adminHandler(s.handleSetChainID))
	s.mux.HandleFunc("POST /admin/set_threshold", s.adminHandler(s.handleSetThreshold))
	s.mux.HandleFunc("POST /admin/set_ecdsa_derivation_path", s.adminHandler(s.handleSetECDSADerivationPath))
	s.mux.HandleFunc("POST /admin/set_relayer_address", s.adminHandler(s.handleSetRelayerAddress))
	s.mux.HandleFunc("POST /admin/derive_relayer_address", s.adminHandler(s.handleDeriveRelayerAddress))
	s.mux.HandleFunc("POST /admin/add_asset", s.adminHandler(s.handleAddAsset))
	s.mux.HandleFunc("POST /admin/deprecate_asset", s.adminHandler(s.handleDeprecateAsset))
	s.mux.HandleFunc("POST /admin/disable_asset", s.adminHandler(s.handleDisableAsset))
	s.mux.HandleFunc("POST /admin/pause", s.adminHandler(s.handlePause))
	s.mux.HandleFunc("POST /admin/refresh_gas_balance", s.adminHandler(s.handleRefreshGasBalance))
}
