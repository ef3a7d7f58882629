package phuongtien

import (
	"gorm.io/gorm"
)

// Repository wraps vehicle-registry persistence.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(pt *PhuongTien) error {
	return r.DB.Create(pt).Error
}

func (r *Repository) FindByID(id uint) (*PhuongTien, error) {
	var pt PhuongTien
	if err := r.DB.First(&pt, id).Error; err != nil {
		return nil, err
	}
	return &pt, nil
}

func (r *Repository) List() ([]PhuongTien, error) {
	var list []PhuongTien
	err := r.DB.Order("ho_khau_id ASC, bien_so ASC").Find(&list).Error
	return list, err
}

// ListByHoKhau returns every vehicle of a household, active or not.
func (r *Repository) ListByHoKhau(hoKhauID uint) ([]PhuongTien, error) {
	var list []PhuongTien
	err := r.DB.Where("ho_khau_id = ?", hoKhauID).Order("bien_so ASC").Find(&list).Error
	return list, err
}

func (r *Repository) Update(pt *PhuongTien) error {
	return r.DB.Save(pt).Error
}

func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&PhuongTien{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
