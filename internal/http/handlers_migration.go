package http

import (
	"net/http"
)

type migrationRequest struct {
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
}

// handleMigrate moves every record from one owner to another in a single
// transaction, typically promoting a guest identity after sign-in.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, err)
		return
	}
	result, err := s.ledger.MigrateOwner(r.Context(), req.FromUserID, req.ToUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
