package phuongtien

import (
	"time"

	"gorm.io/gorm"
)

// LoaiXe is the vehicle kind used by the parking-fee rate table.
type LoaiXe string

const (
	XeOto LoaiXe = "CAR"
	XeMay LoaiXe = "MOTORBIKE"
	XeDap LoaiXe = "BICYCLE"
)

// Valid reports whether l is a known vehicle kind.
func (l LoaiXe) Valid() bool {
	switch l {
	case XeOto, XeMay, XeDap:
		return true
	}
	return false
}

// PhuongTien is a vehicle registered to a household.
type PhuongTien struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	HoKhauID     uint   `gorm:"not null;index" json:"hoKhauId"`
	BienSo       string `gorm:"size:20;not null;uniqueIndex" json:"bienSo"`
	Loai         LoaiXe `gorm:"size:20;not null" json:"loai"`
	MoTa         string `gorm:"size:255" json:"moTa"`
	DangHoatDong bool   `gorm:"not null;default:true" json:"dangHoatDong"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&PhuongTien{})
}
