package phuongtien

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
	HoKhauID     uint   `json:"hoKhauId" validate:"required"`
	BienSo       string `json:"bienSo" validate:"required"`
	Loai         LoaiXe `json:"loai" validate:"required"`
	MoTa         string `json:"moTa"`
	DangHoatDong *bool  `json:"dangHoatDong"`
}

// Create handles POST /phuong-tien.
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
	if !req.Loai.Valid() {
		apperr.WriteHTTP(w, apperr.Validation("loai must be CAR, MOTORBIKE or BICYCLE"))
		return
	}

	pt := PhuongTien{
		HoKhauID:     req.HoKhauID,
		BienSo:       req.BienSo,
		Loai:         req.Loai,
		MoTa:         req.MoTa,
		DangHoatDong: true,
	}
	if req.DangHoatDong != nil {
		pt.DangHoatDong = *req.DangHoatDong
	}
	if err := h.Repo.Create(&pt); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(pt)
}

// List handles GET /phuong-tien with an optional hoKhauId filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []PhuongTien
		err  error
	)
	if q := r.URL.Query().Get("hoKhauId"); q != "" {
		id, convErr := strconv.Atoi(q)
		if convErr != nil {
			apperr.WriteHTTP(w, apperr.Validation("invalid hoKhauId"))
			return
		}
		list, err = h.Repo.ListByHoKhau(uint(id))
	} else {
		list, err = h.Repo.List()
	}
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get handles GET /phuong-tien/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	pt, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("vehicle not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pt)
}

// Update handles PUT /phuong-tien/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	pt, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("vehicle not found"))
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if req.BienSo != "" {
		pt.BienSo = req.BienSo
	}
	if req.Loai != "" {
		if !req.Loai.Valid() {
			apperr.WriteHTTP(w, apperr.Validation("loai must be CAR, MOTORBIKE or BICYCLE"))
			return
		}
		pt.Loai = req.Loai
	}
	if req.HoKhauID != 0 {
		pt.HoKhauID = req.HoKhauID
	}
	if req.MoTa != "" {
		pt.MoTa = req.MoTa
	}
	if req.DangHoatDong != nil {
		pt.DangHoatDong = *req.DangHoatDong
	}

	if err := h.Repo.Update(pt); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pt)
}

// Delete handles DELETE /phuong-tien/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	if err := h.Repo.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteHTTP(w, apperr.NotFound("vehicle not found"))
			return
		}
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
