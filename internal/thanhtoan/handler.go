package thanhtoan

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/auth"
	"github.com/bluemoonbql/api-thuphi/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	Recorder *Recorder
	validate *validator.Validate
}

func NewHandler(rec *Recorder) *Handler {
	return &Handler{Recorder: rec, validate: validator.New()}
}

type createRequest struct {
	DotThuID   uint   `json:"dotThuId" validate:"required"`
	KhoanThuID uint   `json:"khoanThuId" validate:"required"`
	HoKhauID   uint   `json:"hoKhauId" validate:"required"`
	NguoiNop   string `json:"nguoiNop"`
	SoTien     int64  `json:"soTien" validate:"required,gt=0"`
	NgayNop    string `json:"ngayNop"`
	HinhThuc   string `json:"hinhThuc"`
	GhiChu     string `json:"ghiChu"`
}

// Create handles POST /thanh-toan.
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

	in := RecordInput{
		DotThuID:   req.DotThuID,
		KhoanThuID: req.KhoanThuID,
		HoKhauID:   req.HoKhauID,
		NguoiNop:   req.NguoiNop,
		SoTien:     req.SoTien,
		HinhThuc:   req.HinhThuc,
		GhiChu:     req.GhiChu,
		NguoiTaoID: auth.UserIDFrom(r.Context()),
	}
	if req.NgayNop != "" {
		t, err := utils.ParseDate(req.NgayNop)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		in.NgayNop = t
	}

	tt, err := h.Recorder.Record(in)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(tt)
}

// List handles GET /thanh-toan with optional dotThuId / hoKhauId filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := h.Recorder.DB.Model(&ThanhToan{}).Order("ngay_nop DESC")
	if v := r.URL.Query().Get("dotThuId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation("invalid dotThuId"))
			return
		}
		q = q.Where("dot_thu_id = ?", id)
	}
	if v := r.URL.Query().Get("hoKhauId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation("invalid hoKhauId"))
			return
		}
		q = q.Where("ho_khau_id = ?", id)
	}
	if r.URL.Query().Get("trangThai") != "" {
		q = q.Where("trang_thai = ?", r.URL.Query().Get("trangThai"))
	}

	var list []ThanhToan
	if err := q.Find(&list).Error; err != nil {
		apperr.WriteHTTP(w, apperr.Internal(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Get handles GET /thanh-toan/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	tt, err := h.Recorder.findByID(id)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tt)
}

type updateRequest struct {
	NguoiNop string `json:"nguoiNop"`
	SoTien   int64  `json:"soTien" validate:"gte=0"`
	NgayNop  string `json:"ngayNop"`
	HinhThuc string `json:"hinhThuc"`
	GhiChu   string `json:"ghiChu"`
}

// Update handles PUT /thanh-toan/{id}.
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
	if err := h.validate.Struct(req); err != nil {
		apperr.WriteHTTP(w, apperr.Wrap(apperr.KindValidation, "invalid fields", err))
		return
	}

	in := UpdateInput{
		NguoiNop: req.NguoiNop,
		SoTien:   req.SoTien,
		HinhThuc: req.HinhThuc,
		GhiChu:   req.GhiChu,
	}
	if req.NgayNop != "" {
		t, err := utils.ParseDate(req.NgayNop)
		if err != nil {
			apperr.WriteHTTP(w, apperr.Validation(err.Error()))
			return
		}
		in.NgayNop = &t
	}

	tt, err := h.Recorder.Update(id, in)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tt)
}

type cancelRequest struct {
	LyDo string `json:"lyDo"`
}

// Delete handles DELETE /thanh-toan/{id}: a soft cancel, idempotent.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // body optional

	tt, err := h.Recorder.Cancel(id, req.LyDo, auth.UserIDFrom(r.Context()))
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tt)
}

// Restore handles POST /thanh-toan/{id}/khoi-phuc.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req cancelRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	tt, err := h.Recorder.Restore(id, req.LyDo)
	if err != nil {
		apperr.WriteHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(tt)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		apperr.WriteHTTP(w, apperr.Validation("invalid id"))
		return 0, false
	}
	return uint(id), true
}
