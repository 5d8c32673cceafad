package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mcoot/dartsync/internal/model"
)

// VersionHeader carries the snapshot version so clients can drop stale
// responses that arrive after a newer pushed state
const VersionHeader = "X-State-Version"

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// State writes a room snapshot. Snapshots are never cacheable.
func State(w http.ResponseWriter, state *model.RoomState) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set(VersionHeader, strconv.FormatInt(state.Version, 10))
	JSON(w, http.StatusOK, state)
}

// NoContent writes a 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
