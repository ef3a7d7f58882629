package taikhoan

import (
	"gorm.io/gorm"
)

// TaiKhoan is a management-board staff account. It exists so payments and
// cancellations carry a creator identity; session handling stays a thin
// bearer-token affair.
type TaiKhoan struct {
	gorm.Model
	TenDangNhap string `json:"tenDangNhap" gorm:"size:100;not null;uniqueIndex"`
	MatKhau     string `json:"-" gorm:"size:255;not null"`
	HoTen       string `json:"hoTen" gorm:"size:255"`
	LaQuanTri   bool   `json:"laQuanTri" gorm:"not null;default:false"`
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&TaiKhoan{})
}
