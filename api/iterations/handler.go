package iterations

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kilianp07/modesim/infra/output"
)

// NewHandler returns an HTTP handler exposing stored iteration statistics via
// GET /api/iterations?run_id=&from=&to=. Requests must include an
// Authorization header with "Bearer <token>" when token is non-empty.
func NewHandler(store output.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		q := output.Query{RunID: r.URL.Query().Get("run_id")}
		var err error
		if q.From, err = intParam(r, "from"); err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		if s := r.URL.Query().Get("to"); s != "" {
			to, err := strconv.Atoi(s)
			if err != nil {
				http.Error(w, "invalid to", http.StatusBadRequest)
				return
			}
			q.To = &to
		}
		stats, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func intParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
