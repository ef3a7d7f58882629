package taikhoan

import (
	"encoding/json"
	"net/http"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/auth"
	"github.com/bluemoonbql/api-thuphi/internal/utils"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

type Handler struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, validate: validator.New()}
}

type loginRequest struct {
	TenDangNhap string `json:"tenDangNhap" validate:"required"`
	MatKhau     string `json:"matKhau" validate:"required"`
}

// Login handles POST /dang-nhap and issues a JWT for valid credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("tenDangNhap and matKhau are required"))
		return
	}

	var tk TaiKhoan
	if err := h.DB.Where("ten_dang_nhap = ?", req.TenDangNhap).First(&tk).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !utils.CheckPassword(tk.MatKhau, req.MatKhau) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateToken(tk.ID, tk.LaQuanTri)
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type createRequest struct {
	TenDangNhap string `json:"tenDangNhap" validate:"required"`
	MatKhau     string `json:"matKhau" validate:"required,min=8"`
	HoTen       string `json:"hoTen"`
	LaQuanTri   bool   `json:"laQuanTri"`
}

// Create handles POST /tai-khoan (admin only, routed behind RequireAdmin).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.WriteHTTP(w, apperr.Validation("malformed JSON"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		apperr.WriteHTTP(w, apperr.Wrap(apperr.KindValidation, "missing or invalid fields", err))
		return
	}

	hash, err := utils.HashPassword(req.MatKhau)
	if err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	tk := TaiKhoan{
		TenDangNhap: req.TenDangNhap,
		MatKhau:     hash,
		HoTen:       req.HoTen,
		LaQuanTri:   req.LaQuanTri,
	}
	if err := h.DB.Create(&tk).Error; err != nil {
		apperr.WriteHTTP(w, apperr.Duplicate("username already exists"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tk)
}
