package validators

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
)

// DefaultReportLimit caps report rows when the caller does not say otherwise.
const DefaultReportLimit = 10

// PathID extracts a positive numeric identifier from the route.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// LimitParam parses the optional ?limit= query parameter, falling back to def.
func LimitParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit")
	}
	return limit, nil
}
