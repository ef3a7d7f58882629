package khoannop

import (
	"encoding/json"

	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository wraps ledger persistence.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// CreateInBatch inserts generated rows. Conflicts on the
// (period, fee type, household) unique index are silently skipped, which is
// what makes re-running generation safe.
func (r *Repository) CreateInBatch(db *gorm.DB, rows []*KhoanNop) error {
	if db == nil {
		db = r.DB
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "dot_thu_id"}, {Name: "khoan_thu_id"}, {Name: "ho_khau_id"},
		},
		DoNothing: true,
	}).Create(rows).Error
}

func (r *Repository) FindByID(id uint) (*KhoanNop, error) {
	var kn KhoanNop
	if err := r.DB.First(&kn, id).Error; err != nil {
		return nil, err
	}
	return &kn, nil
}

// FindByBoBa looks a row up by its composite identity.
func (r *Repository) FindByBoBa(db *gorm.DB, dotThuID, khoanThuID, hoKhauID uint) (*KhoanNop, error) {
	if db == nil {
		db = r.DB
	}
	var kn KhoanNop
	err := db.Where("dot_thu_id = ? AND khoan_thu_id = ? AND ho_khau_id = ?",
		dotThuID, khoanThuID, hoKhauID).First(&kn).Error
	if err != nil {
		return nil, err
	}
	return &kn, nil
}

func (r *Repository) ListByDotThu(dotThuID uint) ([]KhoanNop, error) {
	var list []KhoanNop
	err := r.DB.Where("dot_thu_id = ?", dotThuID).
		Order("ho_khau_id ASC, khoan_thu_id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) ListByDotThuVaKhoanThu(dotThuID, khoanThuID uint) ([]KhoanNop, error) {
	var list []KhoanNop
	err := r.DB.Where("dot_thu_id = ? AND khoan_thu_id = ?", dotThuID, khoanThuID).
		Order("ho_khau_id ASC").Find(&list).Error
	return list, err
}

func (r *Repository) ListByHoKhauVaDotThu(hoKhauID, dotThuID uint) ([]KhoanNop, error) {
	var list []KhoanNop
	err := r.DB.Where("ho_khau_id = ? AND dot_thu_id = ?", hoKhauID, dotThuID).
		Order("khoan_thu_id ASC").Find(&list).Error
	return list, err
}

// ApplyPayment adds delta to the paid amount and recomputes the cached
// status in a single UPDATE. The increment happens in SQL, never as a
// read-modify-write in application memory, so two concurrent recordings
// against the same row serialize at the storage layer.
func (r *Repository) ApplyPayment(db *gorm.DB, id uint, delta int64) error {
	if db == nil {
		db = r.DB
	}
	res := db.Exec(`
		UPDATE khoan_nops
		SET so_tien_da_nop = so_tien_da_nop + ?,
		    trang_thai = CASE
		        WHEN so_tien_da_nop + ? >= so_tien_phai_nop THEN ?
		        WHEN so_tien_da_nop + ? > 0 THEN ?
		        ELSE ?
		    END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		delta, delta, TrangThaiDaNopDu, delta, TrangThaiMotPhan, TrangThaiChuaNop, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateTinhLai replaces amount due and trace after an explicit
// recalculation. Only the recalculated columns are written and the status is
// re-derived in SQL against the live paid amount, so a payment recorded
// between the recalculation and this write is never overwritten.
func (r *Repository) UpdateTinhLai(id uint, soTienPhaiNop int64, dienGiai tinhphi.DienGiai, ghiChu string) error {
	trace, err := json.Marshal(dienGiai)
	if err != nil {
		return err
	}
	res := r.DB.Model(&KhoanNop{}).Where("id = ?", id).Updates(map[string]interface{}{
		"so_tien_phai_nop": soTienPhaiNop,
		"dien_giai":        string(trace),
		"ghi_chu":          ghiChu,
		"trang_thai": gorm.Expr(`CASE
			WHEN so_tien_da_nop <= 0 THEN ?
			WHEN so_tien_da_nop >= ? THEN ?
			ELSE ?
		END`, TrangThaiChuaNop, soTienPhaiNop, TrangThaiDaNopDu, TrangThaiMotPhan),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

/* ========================= Aggregates ========================= */

// CountHoKhau counts distinct households with at least one row in a period.
func (r *Repository) CountHoKhau(dotThuID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&KhoanNop{}).
		Where("dot_thu_id = ?", dotThuID).
		Distinct("ho_khau_id").Count(&n).Error
	return n, err
}

// CountHoKhauConThieu counts distinct households in a period that still have
// at least one row not fully paid.
func (r *Repository) CountHoKhauConThieu(dotThuID uint) (int64, error) {
	var n int64
	err := r.DB.Model(&KhoanNop{}).
		Where("dot_thu_id = ? AND trang_thai <> ?", dotThuID, TrangThaiDaNopDu).
		Distinct("ho_khau_id").Count(&n).Error
	return n, err
}

// SumByDotThu returns total due and total collected for a period.
func (r *Repository) SumByDotThu(dotThuID uint) (phaiNop, daNop int64, err error) {
	row := struct {
		PhaiNop int64
		DaNop   int64
	}{}
	err = r.DB.Model(&KhoanNop{}).
		Where("dot_thu_id = ?", dotThuID).
		Select("COALESCE(SUM(so_tien_phai_nop), 0) AS phai_nop, COALESCE(SUM(so_tien_da_nop), 0) AS da_nop").
		Scan(&row).Error
	return row.PhaiNop, row.DaNop, err
}
