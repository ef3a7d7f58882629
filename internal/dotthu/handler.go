package dotthu

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	Manager  *Manager
	validate *validator.Validate
}

func NewHandler(m *Manager) *Handler {
	return &Handler{Manager: m, validate: validator.New()}
}

type createRequest struct {
	Ten       string              `json:"ten" validate:"required"`
	NgayTao   string              `json:"ngayTao" validate:"required"`
	HanCuoi   string              `json:"hanCuoi" validate:"required"`
	KhoanThus []KhoanThuSelection `json:"khoanThus"`
}

type updateRequest struct {
	Ten       string              `json:"ten"`
	NgayTao   string              `json:"ngayTao"`
	HanCuoi   string              `json:"hanCuoi"`
	KhoanThus []KhoanThuSelection `json:"khoanThus"`
}

// Create handles POST /dot-thu.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.WriteHTTP(w, apperr.Wrap(apperr.KindValidation, "missing required fields", err))
		return
	}
	ngayTao, err := utils.ParseDate(req.NgayTao)
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation(err.Error()))
		return
	}
	hanCuoi, err := utils.ParseDate(req.HanCuoi)
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation(err.Error()))
		return
	}

	// The deadline day itself still counts as on time.
	dot, err := h.Manager.CreateDotThu(req.Ten, ngayTao, utils.EndOfDay(hanCuoi), req.KhoanThus)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(dot)
}

// List handles GET /dot-thu.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Manager.Repo.List()
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get handles GET /dot-thu/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	dot, err := h.Manager.Repo.FindByID(id)
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("period not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dot)
}

// Update handles PUT /dot-thu/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}

	var ngayTao, hanCuoi *time.Time
	if req.NgayTao != "" {
		t, err := utils.ParseDate(req.NgayTao)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		ngayTao = &t
	}
	if req.HanCuoi != "" {
		t, err := utils.ParseDate(req.HanCuoi)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		t = utils.EndOfDay(t)
		hanCuoi = &t
	}

	dot, err := h.Manager.UpdateDotThu(id, req.Ten, ngayTao, hanCuoi, req.KhoanThus)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dot)
}

// Delete handles DELETE /dot-thu/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.Manager.DeleteDotThu(id); err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Close handles POST /dot-thu/{id}/khoa.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Manager.CloseDotThu)
}

// Reopen handles POST /dot-thu/{id}/mo-lai.
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Manager.ReopenDotThu)
}

// Complete handles POST /dot-thu/{id}/hoan-thanh.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.lifecycle(w, r, h.Manager.CompleteDotThu)
}

func (h *Handler) lifecycle(w http.ResponseWriter, r *http.Request, op func(uint) (*DotThu, error)) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	dot, err := op(id)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dot)
}

// AutoClose handles POST /dot-thu/tu-dong-khoa, the manual trigger for the
// scheduled batch.
func (h *Handler) AutoClose(w http.ResponseWriter, r *http.Request) {
	processed, err := h.Manager.AutoClose(time.Now())
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"processed": processed})
}

// ThongKe handles GET /dot-thu/thong-ke.
func (h *Handler) ThongKe(w http.ResponseWriter, r *http.Request) {
	tk, err := h.Manager.ThongKe(time.Now())
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tk)
}

// Recalc handles POST /khoan-nop/{id}/tinh-lai.
func (h *Handler) Recalc(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	kn, err := h.Manager.RecalcKhoanNop(id)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(kn)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}
