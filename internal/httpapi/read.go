package httpapi

import (
	"math/big"
	"net/http"
	"strconv"
)

type infoResponse struct {
	RelayerAddr   string `json:"relayer_addr,omitempty"`
	GasWei        string `json:"gas_wei"`
	ThresholdWei  string `json:"threshold_wei"`
	CyclesBalance string `json:"cycles_balance"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.ConfigSnapshot()
	resp := infoResponse{
		ThresholdWei:  bigOrZero(cfg.ThresholdWei),
		GasWei:        bigOrZero(cfg.CachedGasWei),
		CyclesBalance: "0", // no cycles metering outside the original host platform
	}
	if cfg.RelayerAddressSet {
		resp.RelayerAddr = cfg.RelayerAddress.Hex()
	}
	writeJSON(w, http.StatusOK, resp)
}

func bigOrZero(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

type logEntryResponse struct {
	ID          uint64 `json:"id"`
	TS          int64  `json:"ts"`
	ChainID     uint64 `json:"chain_id"`
	AssetID     string `json:"asset_id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValidBefore int64  `json:"valid_before"`
	Nonce       string `json:"nonce"`
	TxHash      string `json:"tx_hash,omitempty"`
	Status      string `json:"status"`
	FailReason  string `json:"fail_reason,omitempty"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	var afterID *uint64
	if v := r.URL.Query().Get("after_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			afterID = &n
		}
	}

	entries := s.store.LogRead(afterID, limit)
	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := logEntryResponse{
			ID:          e.ID,
			TS:          e.TS,
			ChainID:     e.ChainID,
			AssetID:     e.AssetID,
			From:        e.From.Hex(),
			To:          e.To.Hex(),
			Value:       bigOrZero(e.Value),
			ValidBefore: e.ValidBefore,
			Nonce:       e.Nonce.Hex(),
			Status:      e.Status.String(),
			FailReason:  e.FailReason,
		}
		if e.TxHash != nil {
			resp.TxHash = e.TxHash.Hex()
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRelayerAddress(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.ConfigSnapshot()
	if !cfg.RelayerAddressSet {
		writeJSON(w, http.StatusOK, map[string]string{"address": ""})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": cfg.RelayerAddress.Hex()})
}
