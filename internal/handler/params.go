package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type recommendationParams struct {
	Username string `validate:"required,max=64,printascii"`
	Limit    int    `validate:"min=1,max=50"`
}

type profileParams struct {
	Username string `validate:"required,max=64,printascii"`
}

type batchParams struct {
	Page  int `validate:"min=1,max=10000"`
	Limit int `validate:"min=1,max=100"`
}

// queryInt reads an integer query parameter, returning fallback when absent.
func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func usernameParam(r *http.Request) string {
	return chi.URLParam(r, "username")
}
