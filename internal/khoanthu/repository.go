package khoanthu

import (
	"gorm.io/gorm"
)

// Repository wraps fee-catalog persistence.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

func (r *Repository) Create(kt *KhoanThu) error {
	return r.DB.Create(kt).Error
}

func (r *Repository) FindByID(id uint) (*KhoanThu, error) {
	var kt KhoanThu
	if err := r.DB.First(&kt, id).Error; err != nil {
		return nil, err
	}
	return &kt, nil
}

// FindByIDs returns the catalog entries for a set of ids, keyed by id.
func (r *Repository) FindByIDs(ids []uint) (map[uint]KhoanThu, error) {
	var list []KhoanThu
	if err := r.DB.Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[uint]KhoanThu, len(list))
	for _, kt := range list {
		out[kt.ID] = kt
	}
	return out, nil
}

func (r *Repository) List() ([]KhoanThu, error) {
	var list []KhoanThu
	err := r.DB.Order("ten ASC").Find(&list).Error
	return list, err
}

// ListBatBuoc returns the mandatory fee types; these are what a period
// collects when it is created without an explicit selection.
func (r *Repository) ListBatBuoc() ([]KhoanThu, error) {
	var list []KhoanThu
	err := r.DB.Where("bat_buoc = ?", true).Order("ten ASC").Find(&list).Error
	return list, err
}

func (r *Repository) Update(kt *KhoanThu) error {
	return r.DB.Save(kt).Error
}

// CountLedgerRefs counts ledger rows referencing the fee type. The table is
// addressed by name to keep the catalog free of a dependency on the ledger
// package.
func (r *Repository) CountLedgerRefs(id uint) (int64, error) {
	var n int64
	err := r.DB.Table("khoan_nops").Where("khoan_thu_id = ?", id).Count(&n).Error
	return n, err
}

func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&KhoanThu{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
