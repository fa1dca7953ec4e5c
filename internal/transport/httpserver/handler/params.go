package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

var errTrailingData = errors.New("unexpected data after json body")

// intParam reads a route parameter as a signed integer. Range checks belong
// to the repository, which already clamps skips and ignores empty counts.
func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return parsed, nil
}
