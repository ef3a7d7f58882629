package dotthu

import (
	"time"

	"gorm.io/gorm"
)

// Period lifecycle. Transitions are one-way forward except reopen, which the
// board uses for corrections and which is deliberately permissive (CLOSED or
// COMPLETED back to OPEN).
const (
	TrangThaiDangMo    = "OPEN"
	TrangThaiDaKhoa    = "CLOSED"
	TrangThaiHoanThanh = "COMPLETED"
)

// DotThu is a time-boxed fee-collection cycle.
type DotThu struct {
	ID      uint      `gorm:"primaryKey" json:"id"`
	Ten     string    `gorm:"size:255;not null" json:"ten"`
	NgayTao time.Time `gorm:"not null" json:"ngayTao"`
	HanCuoi time.Time `gorm:"not null;index" json:"hanCuoi"`

	TrangThai  string `gorm:"size:20;not null;default:'OPEN';index" json:"trangThai"`
	TuDongKhoa bool   `gorm:"not null;default:true" json:"tuDongKhoa"`
	// KhoaThuCong is set by every manual close/reopen/complete and checked by
	// the auto-close batch in the same UPDATE, so a manual decision is never
	// clobbered by a straggling scheduled run.
	KhoaThuCong bool `gorm:"not null;default:false" json:"khoaThuCong"`

	KhoanThus []DotThuKhoanThu `gorm:"foreignKey:DotThuID;constraint:OnDelete:CASCADE" json:"khoanThus"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// DotThuKhoanThu links a period to one collected fee type, optionally with a
// period-specific amount/rate override. The set is frozen once the period
// leaves OPEN.
type DotThuKhoanThu struct {
	ID          uint  `gorm:"primaryKey" json:"id"`
	DotThuID    uint  `gorm:"not null;uniqueIndex:idx_dot_thu_khoan_thu" json:"dotThuId"`
	KhoanThuID  uint  `gorm:"not null;uniqueIndex:idx_dot_thu_khoan_thu" json:"khoanThuId"`
	SoTienGhiDe int64 `gorm:"not null;default:0" json:"soTienGhiDe"` // 0 = no override

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Migrate creates both tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DotThu{}, &DotThuKhoanThu{})
}
