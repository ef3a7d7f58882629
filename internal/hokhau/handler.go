package hokhau

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type Handler struct {
	Repo     *Repository
	validate *validator.Validate
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{Repo: repo, validate: validator.New()}
}

type upsertRequest struct {
	MaHo         string  `json:"maHo" validate:"required"`
	ChuHo        string  `json:"chuHo" validate:"required"`
	SoDienThoai  string  `json:"soDienThoai"`
	DienTich     float64 `json:"dienTich" validate:"gte=0"`
	SoThanhVien  int     `json:"soThanhVien" validate:"gte=0"`
	DungInternet *bool   `json:"dungInternet"`
}

// Create handles POST /ho-khau.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.WriteHTTP(w, apperr.Wrap(apperr.KindValidation, "missing required fields", err))
		return
	}

	hk := HoKhau{
		MaHo:        req.MaHo,
		ChuHo:       req.ChuHo,
		SoDienThoai: req.SoDienThoai,
		DienTich:    req.DienTich,
		SoThanhVien: req.SoThanhVien,
	}
	if hk.SoThanhVien == 0 {
		hk.SoThanhVien = 1
	}
	if req.DungInternet != nil {
		hk.DungInternet = *req.DungInternet
	}
	if err := h.Repo.Create(&hk); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(hk)
}

// List handles GET /ho-khau.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List()
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get handles GET /ho-khau/{id} including the vehicle registrations.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	hk, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("household not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hk)
}

// Update handles PUT /ho-khau/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	hk, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("household not found"))
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if req.MaHo != "" {
		hk.MaHo = req.MaHo
	}
	if req.ChuHo != "" {
		hk.ChuHo = req.ChuHo
	}
	if req.SoDienThoai != "" {
		hk.SoDienThoai = req.SoDienThoai
	}
	if req.DienTich > 0 {
		hk.DienTich = req.DienTich
	}
	if req.SoThanhVien > 0 {
		hk.SoThanhVien = req.SoThanhVien
	}
	if req.DungInternet != nil {
		hk.DungInternet = *req.DungInternet
	}

	if err := h.Repo.Update(hk); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hk)
}

// Delete handles DELETE /ho-khau/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	if err := h.Repo.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteHTTP(w, apperr.NotFound("household not found"))
			return
		}
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
