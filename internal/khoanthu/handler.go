package khoanthu

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/utils"
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
	Ten            string       `json:"ten" validate:"required"`
	Loai           LoaiKhoanThu `json:"loai"`
	BatBuoc        *bool        `json:"batBuoc"`
	SoTienToiThieu *int64       `json:"soTienToiThieu" validate:"omitempty,gte=0"`
	HanNop         string       `json:"hanNop"`
}

// Create handles POST /khoan-thu. The kind tag is resolved here, exactly
// once: explicit in the payload, otherwise inferred from the display name.
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

	loai := req.Loai
	if loai == "" {
		loai = ResolveLoai(req.Ten)
	} else if !loai.Valid() {
		apperr.WriteHTTP(w, apperr.Newf(apperr.KindValidation, "unknown fee kind %q", loai))
		return
	}

	kt := KhoanThu{
		Ten:  req.Ten,
		Loai: loai,
	}
	if req.SoTienToiThieu != nil {
		kt.SoTienToiThieu = *req.SoTienToiThieu
	}
	if req.BatBuoc != nil {
		kt.BatBuoc = *req.BatBuoc
	}
	if req.HanNop != "" {
		t, err := utils.ParseDate(req.HanNop)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		kt.HanNop = &t
	}

	if err := h.Repo.Create(&kt); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(kt)
}

// List handles GET /khoan-thu with an optional batBuoc filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		list []KhoanThu
		err  error
	)
	if r.URL.Query().Get("batBuoc") == "true" {
		list, err = h.Repo.ListBatBuoc()
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

// Get handles GET /khoan-thu/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	kt, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("fee type not found"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(kt)
}

// Update handles PUT /khoan-thu/{id}. The kind tag is only changed when the
// payload sets it explicitly; renaming never re-triggers inference.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	kt, err := h.Repo.FindByID(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.NotFound("fee type not found"))
		return
	}

	var req upsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if req.Ten != "" {
		kt.Ten = req.Ten
	}
	if req.Loai != "" {
		if !req.Loai.Valid() {
			apperr.WriteHTTP(w, apperr.Newf(apperr.KindValidation, "unknown fee kind %q", req.Loai))
			return
		}
		kt.Loai = req.Loai
	}
	if req.BatBuoc != nil {
		kt.BatBuoc = *req.BatBuoc
	}
	// A pointer distinguishes "leave unchanged" from an explicit zero, so a
	// minimum can be reset once it no longer applies.
	if req.SoTienToiThieu != nil {
		if *req.SoTienToiThieu < 0 {
			apperr.WriteHTTP(w, apperr.Validation("soTienToiThieu must not be negative"))
			return
		}
		kt.SoTienToiThieu = *req.SoTienToiThieu
	}
	if req.HanNop != "" {
		t, err := utils.ParseDate(req.HanNop)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		kt.HanNop = &t
	}

	if err := h.Repo.Update(kt); err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(kt)
}

// Delete handles DELETE /khoan-thu/{id}; blocked while ledger rows still
// reference the type.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return
	}
	refs, err := h.Repo.CountLedgerRefs(uint(id))
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	if refs > 0 {
		apperr.WriteHTTP(w, apperr.Newf(apperr.KindValidation,
			"fee type is referenced by %d ledger rows and cannot be deleted", refs))
		return
	}
	if err := h.Repo.Delete(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.WriteHTTP(w, apperr.NotFound("fee type not found"))
			return
		}
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
