package validators

import (
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/angelmondragon/authdash-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
)

// PathParam returns the decoded, trimmed chi URL parameter.
func PathParam(r *http.Request, name string) (string, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid path parameter").WithDetails(map[string]any{"field": name})
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").WithDetails(map[string]any{"field": name})
	}
	return value, nil
}
