package httpapi

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethdenver2026/relay/internal/admin"
	"github.com/ethdenver2026/relay/internal/types"
)

// adminFunc is an HTTP handler that has already been authenticated and
// knows the calling principal.
type adminFunc func(principal string, w http.ResponseWriter, r *http.Request)

// adminHandler extracts and validates the bearer token, then dispatches to
// fn with the resolved principal, matching the teacher's x402 middleware
// gating pattern generalized from per-request payment to admin ACL.
func (s *Server) adminHandler(fn adminFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authz, "Bearer ")
		if !ok || tokenString == "" {
			writeJSON(w, http.StatusUnauthorized, submitResponse{Error: "missing bearer token"})
			return
		}
		principal, err := s.tokens.Principal(tokenString)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, submitResponse{Error: "invalid admin token"})
			return
		}
		fn(principal, w, r)
	}
}

func writeAdminErr(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	if errors.Is(err, admin.ErrNotAdmin) {
		status = http.StatusForbidden
	}
	writeJSON(w, status, submitResponse{Error: err.Error()})
}

type okResponse struct {
	OK bool `json:"ok"`
}

type setRPCTargetRequest struct {
	CanisterID string `json:"canister_id"`
}

func (s *Server) handleSetRPCTarget(principal string, w http.ResponseWriter, r *http.Request) {
	var req setRPCTargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.SetRPCTarget(principal, req.CanisterID); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type setChainIDRequest struct {
	ChainID uint64 `json:"chain_id"`
}

func (s *Server) handleSetChainID(principal string, w http.ResponseWriter, r *http.Request) {
	var req setChainIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.SetChainID(principal, req.ChainID); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type setThresholdRequest struct {
	ThresholdWei string `json:"threshold_wei"`
}

func (s *Server) handleSetThreshold(principal string, w http.ResponseWriter, r *http.Request) {
	var req setThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	threshold, ok := new(big.Int).SetString(req.ThresholdWei, 10)
	if !ok {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.SetThreshold(principal, threshold); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type setECDSADerivationPathRequest struct {
	KeyName string   `json:"key_name"`
	Path    []string `json:"path"`
}

func (s *Server) handleSetECDSADerivationPath(principal string, w http.ResponseWriter, r *http.Request) {
	var req setECDSADerivationPathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	path := make([][]byte, len(req.Path))
	for i, p := range req.Path {
		path[i] = []byte(p)
	}
	if err := s.admin.SetECDSADerivationPath(principal, req.KeyName, path); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type setRelayerAddressRequest struct {
	Address types.Address `json:"address"`
}

func (s *Server) handleSetRelayerAddress(principal string, w http.ResponseWriter, r *http.Request) {
	var req setRelayerAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.SetRelayerAddress(principal, req.Address); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleDeriveRelayerAddress(principal string, w http.ResponseWriter, r *http.Request) {
	addr, err := s.admin.DeriveRelayerAddress(r.Context(), principal)
	if err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": addr.Hex()})
}

type addAssetRequest struct {
	ID            string        `json:"id"`
	EVMAddress    types.Address `json:"evm_address"`
	FeeBPS        uint16        `json:"fee_bps"`
	DomainName    string        `json:"domain_name"`
	DomainVersion string        `json:"domain_version"`
}

func (s *Server) handleAddAsset(principal string, w http.ResponseWriter, r *http.Request) {
	var req addAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.AddAsset(principal, req.ID, req.EVMAddress, req.FeeBPS, req.DomainName, req.DomainVersion); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type assetIDRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleDeprecateAsset(principal string, w http.ResponseWriter, r *http.Request) {
	var req assetIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.DeprecateAsset(principal, req.ID); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleDisableAsset(principal string, w http.ResponseWriter, r *http.Request) {
	var req assetIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.DisableAsset(principal, req.ID); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

func (s *Server) handlePause(principal string, w http.ResponseWriter, r *http.Request) {
	var req pauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}
	if err := s.admin.Pause(principal, req.Paused); err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, okResponse{OK: true})
}

func (s *Server) handleRefreshGasBalance(principal string, w http.ResponseWriter, r *http.Request) {
	balance, err := s.admin.RefreshGasBalance(r.Context(), principal)
	if err != nil {
		writeAdminErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"gas_wei": balance.String()})
}
