package khoannop

import (
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
	"gorm.io/gorm"
)

// Ledger-row payment status, derived from the two amounts and cached.
const (
	TrangThaiChuaNop = "UNPAID"
	TrangThaiMotPhan = "PARTIALLY_PAID"
	TrangThaiDaNopDu = "FULLY_PAID"
)

// KhoanNop is one household's obligation for one fee type within one
// collection period. The triple (dot_thu_id, khoan_thu_id, ho_khau_id) is
// unique; generation relies on the constraint for idempotency. Rows are
// never soft-deleted: a fee that computes to zero simply never gets a row.
type KhoanNop struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	DotThuID   uint `gorm:"not null;index;uniqueIndex:idx_khoan_nop_bo_ba" json:"dotThuId"`
	KhoanThuID uint `gorm:"not null;uniqueIndex:idx_khoan_nop_bo_ba" json:"khoanThuId"`
	HoKhauID   uint `gorm:"not null;index;uniqueIndex:idx_khoan_nop_bo_ba" json:"hoKhauId"`

	SoTienPhaiNop int64  `gorm:"not null;default:0" json:"soTienPhaiNop"`
	SoTienDaNop   int64  `gorm:"not null;default:0" json:"soTienDaNop"`
	TrangThai     string `gorm:"size:30;not null;default:'UNPAID';index" json:"trangThai"`

	DienGiai tinhphi.DienGiai `gorm:"serializer:json" json:"dienGiai"`
	GhiChu   string           `json:"ghiChu"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TrangThaiTheoSoTien derives the status from the amounts. The stored status
// is a cache of exactly this function.
func TrangThaiTheoSoTien(daNop, phaiNop int64) string {
	switch {
	case daNop <= 0:
		return TrangThaiChuaNop
	case daNop >= phaiNop:
		return TrangThaiDaNopDu
	default:
		return TrangThaiMotPhan
	}
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&KhoanNop{})
}
