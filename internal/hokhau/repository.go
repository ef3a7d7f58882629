package hokhau

import (
	"gorm.io/gorm"
)

// Repository wraps household persistence.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(hk *HoKhau) error {
	return r.DB.Create(hk).Error
}

func (r *Repository) FindByID(id uint) (*HoKhau, error) {
	var hk HoKhau
	if err := r.DB.Preload("PhuongTiens").First(&hk, id).Error; err != nil {
		return nil, err
	}
	return &hk, nil
}

func (r *Repository) List() ([]HoKhau, error) {
	var list []HoKhau
	err := r.DB.Order("ma_ho ASC").Find(&list).Error
	return list, err
}

// ListWithActiveVehicles is the snapshot the ledger generator runs over:
// every household plus its currently active vehicle registrations.
func (r *Repository) ListWithActiveVehicles(db *gorm.DB) ([]HoKhau, error) {
	if db == nil {
		db = r.DB
	}
	var list []HoKhau
	err := db.
		Preload("PhuongTiens", "dang_hoat_dong = ?", true).
		Order("ma_ho ASC").
		Find(&list).Error
	return list, err
}

func (r *Repository) Update(hk *HoKhau) error {
	return r.DB.Save(hk).Error
}

func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&HoKhau{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
