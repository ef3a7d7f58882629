package thanhtoan

import (
	"errors"
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/dotthu"
	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recorder applies payments to the household ledger. Every mutation runs in
// one transaction covering the payment record and the ledger row, so a
// failure leaves both untouched.
type Recorder struct {
	DB        *gorm.DB
	KhoanNops *khoannop.Repository
	DotThus   *dotthu.Repository
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{
		DB:        db,
		KhoanNops: khoannop.NewRepository(db),
		DotThus:   dotthu.NewRepository(db),
	}
}

// RecordInput is a validated payment request.
type RecordInput struct {
	DotThuID   uint
	KhoanThuID uint
	HoKhauID   uint
	NguoiNop   string
	SoTien     int64
	NgayNop    time.Time // zero = today
	HinhThuc   string
	GhiChu     string
	NguoiTaoID uint
}

// Record books a payment against the obligation identified by the triple.
// Repeat payments for the same triple accumulate into the existing payment
// record instead of creating a second row.
func (r *Recorder) Record(in RecordInput) (*ThanhToan, error) {
	if in.SoTien <= 0 {
		return nil, apperr.Validation("soTien must be positive")
	}
	if in.DotThuID == 0 || in.KhoanThuID == 0 || in.HoKhauID == 0 {
		return nil, apperr.Validation("dotThuId, khoanThuId and hoKhauId are required")
	}

	dot, err := r.DotThus.FindByID(in.DotThuID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("period not found")
		}
		return nil, apperr.Internal(err)
	}
	if dot.TrangThai != dotthu.TrangThaiDangMo {
		return nil, apperr.PeriodClosed("period is not open for payment")
	}

	if in.NgayNop.IsZero() {
		in.NgayNop = time.Now()
	}
	if in.HinhThuc == "" {
		in.HinhThuc = "CASH"
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}

	kn, err := r.KhoanNops.FindByBoBa(tx, in.DotThuID, in.KhoanThuID, in.HoKhauID)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no obligation exists for this period, fee type and household")
		}
		return nil, apperr.Internal(err)
	}
	if err := r.KhoanNops.ApplyPayment(tx, kn.ID, in.SoTien); err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}

	var tt ThanhToan
	err = tx.Where("dot_thu_id = ? AND khoan_thu_id = ? AND ho_khau_id = ?",
		in.DotThuID, in.KhoanThuID, in.HoKhauID).First(&tt).Error
	switch {
	case err == nil:
		if tt.TrangThai == TrangThaiDaHuy {
			// A cancelled record keeps its receipt; new money reactivates it
			// with only the fresh amount outstanding.
			tt.TrangThai = TrangThaiHieuLuc
			tt.LyDoHuy = ""
			tt.NguoiHuyID = 0
			tt.HuyLuc = nil
			tt.SoTien = in.SoTien
		} else {
			tt.SoTien += in.SoTien
		}
		tt.NgayNop = in.NgayNop
		if in.NguoiNop != "" {
			tt.NguoiNop = in.NguoiNop
		}
		if in.GhiChu != "" {
			tt.GhiChu = in.GhiChu
		}
		if err := tx.Save(&tt).Error; err != nil {
			tx.Rollback()
			return nil, apperr.Internal(err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		tt = ThanhToan{
			MaBienLai:  uuid.NewString(),
			DotThuID:   in.DotThuID,
			KhoanThuID: in.KhoanThuID,
			HoKhauID:   in.HoKhauID,
			NguoiNop:   in.NguoiNop,
			SoTien:     in.SoTien,
			NgayNop:    in.NgayNop,
			HinhThuc:   in.HinhThuc,
			GhiChu:     in.GhiChu,
			NguoiTaoID: in.NguoiTaoID,
			TrangThai:  TrangThaiHieuLuc,
		}
		if err := tx.Create(&tt).Error; err != nil {
			tx.Rollback()
			return nil, apperr.Internal(err)
		}
	default:
		tx.Rollback()
		return nil, apperr.Internal(err)
	}

	if err := r.checkDangMo(tx, in.DotThuID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	return &tt, nil
}

// checkDangMo re-reads the period status inside the transaction. The pre-flight
// check outside the transaction gives a fast rejection, but only this one
// guarantees that a close landing mid-recording does not let the payment
// through.
func (r *Recorder) checkDangMo(tx *gorm.DB, dotThuID uint) error {
	var dot dotthu.DotThu
	if err := tx.Select("trang_thai").First(&dot, dotThuID).Error; err != nil {
		return apperr.Internal(err)
	}
	if dot.TrangThai != dotthu.TrangThaiDangMo {
		return apperr.PeriodClosed("period is not open for payment")
	}
	return nil
}

// Cancel soft-cancels a payment and takes its amount back off the ledger
// row. Cancelling an already-cancelled payment is a no-op success.
func (r *Recorder) Cancel(id uint, lyDo string, nguoiHuyID uint) (*ThanhToan, error) {
	tt, err := r.findByID(id)
	if err != nil {
		return nil, err
	}
	if tt.TrangThai == TrangThaiDaHuy {
		return tt, nil
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}
	kn, err := r.KhoanNops.FindByBoBa(tx, tt.DotThuID, tt.KhoanThuID, tt.HoKhauID)
	if err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if err := r.KhoanNops.ApplyPayment(tx, kn.ID, -tt.SoTien); err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	tt.TrangThai = TrangThaiDaHuy
	tt.LyDoHuy = lyDo
	tt.NguoiHuyID = nguoiHuyID
	tt.HuyLuc = &now
	if err := tx.Save(tt).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	return tt, nil
}

// Restore reverses a cancellation and re-applies the amount to the ledger.
func (r *Recorder) Restore(id uint, lyDo string) (*ThanhToan, error) {
	tt, err := r.findByID(id)
	if err != nil {
		return nil, err
	}
	if tt.TrangThai != TrangThaiDaHuy {
		return nil, apperr.NotCancelled("payment is not cancelled")
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}
	kn, err := r.KhoanNops.FindByBoBa(tx, tt.DotThuID, tt.KhoanThuID, tt.HoKhauID)
	if err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if err := r.KhoanNops.ApplyPayment(tx, kn.ID, tt.SoTien); err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}

	tt.TrangThai = TrangThaiHieuLuc
	tt.LyDoHuy = ""
	tt.NguoiHuyID = 0
	tt.HuyLuc = nil
	if lyDo != "" {
		tt.GhiChu = appendNote(tt.GhiChu, "restored: "+lyDo)
	}
	if err := tx.Save(tt).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	return tt, nil
}

// UpdateInput edits payment metadata; an amount change is applied to the
// ledger as a delta inside the same transaction.
type UpdateInput struct {
	NguoiNop string
	SoTien   int64 // 0 = unchanged
	NgayNop  *time.Time
	HinhThuc string
	GhiChu   string
}

func (r *Recorder) Update(id uint, in UpdateInput) (*ThanhToan, error) {
	tt, err := r.findByID(id)
	if err != nil {
		return nil, err
	}
	if tt.TrangThai == TrangThaiDaHuy {
		return nil, apperr.Validation("cannot edit a cancelled payment; restore it first")
	}
	if in.SoTien < 0 {
		return nil, apperr.Validation("soTien must be positive")
	}

	dot, err := r.DotThus.FindByID(tt.DotThuID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if dot.TrangThai != dotthu.TrangThaiDangMo {
		return nil, apperr.PeriodClosed("period is not open for payment changes")
	}

	tx := r.DB.Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}
	if in.SoTien > 0 && in.SoTien != tt.SoTien {
		kn, err := r.KhoanNops.FindByBoBa(tx, tt.DotThuID, tt.KhoanThuID, tt.HoKhauID)
		if err != nil {
			tx.Rollback()
			return nil, apperr.Internal(err)
		}
		if err := r.KhoanNops.ApplyPayment(tx, kn.ID, in.SoTien-tt.SoTien); err != nil {
			tx.Rollback()
			return nil, apperr.Internal(err)
		}
		tt.SoTien = in.SoTien
	}
	if in.NguoiNop != "" {
		tt.NguoiNop = in.NguoiNop
	}
	if in.NgayNop != nil {
		tt.NgayNop = *in.NgayNop
	}
	if in.HinhThuc != "" {
		tt.HinhThuc = in.HinhThuc
	}
	if in.GhiChu != "" {
		tt.GhiChu = in.GhiChu
	}
	if err := tx.Save(tt).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if err := r.checkDangMo(tx, tt.DotThuID); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	return tt, nil
}

func (r *Recorder) findByID(id uint) (*ThanhToan, error) {
	var tt ThanhToan
	if err := r.DB.First(&tt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("payment not found")
		}
		return nil, apperr.Internal(err)
	}
	return &tt, nil
}

func appendNote(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
