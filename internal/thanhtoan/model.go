package thanhtoan

import (
	"time"

	"gorm.io/gorm"
)

const (
	TrangThaiHieuLuc = "ACTIVE"
	TrangThaiDaHuy   = "CANCELLED"
)

// ThanhToan is the payment record for one obligation. The engine keeps at
// most one record per (period, fee type, household) triple and folds repeat
// payments into it by adding to the amount.
// Deletion is a soft cancel with an audit trail, never a physical delete.
type ThanhToan struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	MaBienLai string `gorm:"size:64;not null;uniqueIndex" json:"maBienLai"` // receipt code

	DotThuID   uint `gorm:"not null;index;uniqueIndex:idx_thanh_toan_bo_ba" json:"dotThuId"`
	KhoanThuID uint `gorm:"not null;uniqueIndex:idx_thanh_toan_bo_ba" json:"khoanThuId"`
	HoKhauID   uint `gorm:"not null;index;uniqueIndex:idx_thanh_toan_bo_ba" json:"hoKhauId"`

	NguoiNop string    `gorm:"size:255" json:"nguoiNop"` // payer, usually the head of household
	SoTien   int64     `gorm:"not null;default:0" json:"soTien"`
	NgayNop  time.Time `gorm:"not null" json:"ngayNop"`
	HinhThuc string    `gorm:"size:50;not null;default:'CASH'" json:"hinhThuc"`
	GhiChu   string    `json:"ghiChu"`

	NguoiTaoID uint `gorm:"not null;default:0" json:"nguoiTaoId"` // staff account that recorded it

	TrangThai  string     `gorm:"size:20;not null;default:'ACTIVE';index" json:"trangThai"`
	LyDoHuy    string     `gorm:"size:255" json:"lyDoHuy,omitempty"`
	NguoiHuyID uint       `json:"nguoiHuyId,omitempty"`
	HuyLuc     *time.Time `json:"huyLuc,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ThanhToan{})
}
