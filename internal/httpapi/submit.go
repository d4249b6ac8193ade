package httpapi

import (
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/ethdenver2026/relay/internal/coordinator"
	"github.com/ethdenver2026/relay/internal/types"
)

// submitRequest mirrors spec.md 6.1's Authorization request fields.
type submitRequest struct {
	AssetID     string        `json:"asset_id"`
	From        types.Address `json:"from"`
	To          types.Address `json:"to"`
	Value       string        `json:"value"`
	ValidAfter  int64         `json:"valid_after"`
	ValidBefore int64         `json:"valid_before"`
	Nonce       types.Nonce32 `json:"nonce"`
	SigV        uint8         `json:"sig_v"`
	SigR        types.Hash    `json:"sig_r"`
	SigS        types.Hash    `json:"sig_s"`
}

type submitResponse struct {
	TxHash string `json:"tx_hash,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}

	value, ok := new(big.Int).SetString(req.Value, 10)
	if !ok {
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: "bad_input"})
		return
	}

	auth := types.Authorization{
		AssetID:     req.AssetID,
		From:        req.From,
		To:          req.To,
		Value:       value,
		ValidAfter:  req.ValidAfter,
		ValidBefore: req.ValidBefore,
		Nonce:       req.Nonce,
		V:           req.SigV,
		R:           req.SigR,
		S:           req.SigS,
	}

	txHash, err := s.coordinator.Submit(r.Context(), auth)
	if err != nil {
		code := "estimation_fail"
		if subErr, ok := err.(*coordinator.SubmitError); ok {
			code = string(subErr.Code)
		}
		s.log.Error("submission failed", "err", err, "from", req.From.Hex(), "asset", req.AssetID)
		writeJSON(w, http.StatusBadRequest, submitResponse{Error: code})
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{TxHash: txHash})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
