package hokhau

import (
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
	"gorm.io/gorm"
)

// HoKhau is a household record. The fee engine only reads from this table;
// demographic upkeep happens through the CRUD surface below.
type HoKhau struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	MaHo         string  `gorm:"size:50;not null;uniqueIndex" json:"maHo"` // apartment code, e.g. "A-0705"
	ChuHo        string  `gorm:"size:255;not null" json:"chuHo"`           // head of household
	SoDienThoai  string  `gorm:"size:30" json:"soDienThoai"`
	DienTich     float64 `gorm:"not null;default:0" json:"dienTich"` // floor area, m²
	SoThanhVien  int     `gorm:"not null;default:1" json:"soThanhVien"`
	DungInternet bool    `gorm:"not null;default:false" json:"dungInternet"` // shared-internet subscription

	PhuongTiens []phuongtien.PhuongTien `gorm:"foreignKey:HoKhauID" json:"phuongTiens,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

// Migrate creates the table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&HoKhau{})
}
