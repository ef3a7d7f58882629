package thongke

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/gorilla/mux"
)

type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// TongKet handles GET /thong-ke/dot-thu/{id}.
func (h *Handler) TongKet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid period id"))
		return
	}
	tk, err := h.Repo.TongKet(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tk)
}

// PhanTich handles GET /thong-ke/dot-thu/{id}/khoan-thu.
func (h *Handler) PhanTich(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid period id"))
		return
	}
	rows, err := h.Repo.PhanTich(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}
