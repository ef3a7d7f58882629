package khoanthu

import (
	"time"

	"gorm.io/gorm"
)

// LoaiKhoanThu is the enumerated fee kind the calculator switches on. It is
// resolved once when the fee type is created and stored, never re-derived
// from the display name afterwards.
type LoaiKhoanThu string

const (
	LoaiDichVu   LoaiKhoanThu = "SERVICE"     // area-based service fee
	LoaiQuanLy   LoaiKhoanThu = "MANAGEMENT"  // area-based management fee
	LoaiGuiXe    LoaiKhoanThu = "PARKING"     // per-vehicle monthly fee
	LoaiDien     LoaiKhoanThu = "ELECTRICITY" // metered utility
	LoaiNuoc     LoaiKhoanThu = "WATER"       // metered utility
	LoaiInternet LoaiKhoanThu = "INTERNET"    // subscription fee
	LoaiAnNinh   LoaiKhoanThu = "SECURITY"    // flat fee
	LoaiVeSinh   LoaiKhoanThu = "SANITATION"  // flat fee
	LoaiDongGop  LoaiKhoanThu = "CONTRIBUTION"
	LoaiKhac     LoaiKhoanThu = "OTHER"
)

// Valid reports whether l is a known fee kind.
func (l LoaiKhoanThu) Valid() bool {
	switch l {
	case LoaiDichVu, LoaiQuanLy, LoaiGuiXe, LoaiDien, LoaiNuoc,
		LoaiInternet, LoaiAnNinh, LoaiVeSinh, LoaiDongGop, LoaiKhac:
		return true
	}
	return false
}

// KhoanThu is one entry of the fee catalog.
type KhoanThu struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	Ten            string       `gorm:"size:255;not null" json:"ten"`
	Loai           LoaiKhoanThu `gorm:"size:30;not null;default:'OTHER';index" json:"loai"`
	BatBuoc        bool         `gorm:"not null;default:false" json:"batBuoc"`
	SoTienToiThieu int64        `gorm:"not null;default:0" json:"soTienToiThieu"` // VND, floor for the computed amount
	HanNop         *time.Time   `json:"hanNop,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&KhoanThu{})
}
