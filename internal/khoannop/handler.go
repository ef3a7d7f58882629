package khoannop

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/gorilla/mux"
)

// Handler exposes the read side of the ledger. Mutations go through the
// payment recorder and the period manager's recalculation action.
type Handler struct {
	Repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo}
}

// ListByDotThu handles GET /dot-thu/{id}/khoan-nop with an optional
// khoanThuId filter.
func (h *Handler) ListByDotThu(w http.ResponseWriter, r *http.Request) {
	dotThuID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid period id"))
		return
	}

	var list []KhoanNop
	if q := r.URL.Query().Get("khoanThuId"); q != "" {
		khoanThuID, convErr := strconv.Atoi(q)
		if convErr != nil {
			apperr.WriteHTTP(w, apperr.Validation("invalid khoanThuId"))
			return
		}
		list, err = h.Repo.ListByDotThuVaKhoanThu(uint(dotThuID), uint(khoanThuID))
	} else {
		list, err = h.Repo.ListByDotThu(uint(dotThuID))
	}
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// ListByHoKhau handles GET /ho-khau/{id}/khoan-nop?dotThuId=N.
func (h *Handler) ListByHoKhau(w http.ResponseWriter, r *http.Request) {
	hoKhauID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid household id"))
		return
	}
	dotThuID, err := strconv.Atoi(r.URL.Query().Get("dotThuId"))
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("dotThuId query parameter is required"))
		return
	}

	list, err := h.Repo.ListByHoKhauVaDotThu(uint(hoKhauID), uint(dotThuID))
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get handles GET /khoan-nop/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	kn, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("ledger row not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(kn)
}
