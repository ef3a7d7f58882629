package dotthu

import (
	"time"

	"gorm.io/gorm"
)

// Repository wraps period persistence.
type Repository struct {
	DB *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db}
}

// Create persists the period and its fee-type associations.
func (r *Repository) Create(db *gorm.DB, dot *DotThu) error {
	if db == nil {
		db = r.DB
	}
	return db.Create(dot).Error
}

func (r *Repository) FindByID(id uint) (*DotThu, error) {
	var dot DotThu
	if err := r.DB.Preload("KhoanThus").First(&dot, id).Error; err != nil {
		return nil, err
	}
	return &dot, nil
}

func (r *Repository) List() ([]DotThu, error) {
	var list []DotThu
	err := r.DB.Preload("KhoanThus").Order("ngay_tao DESC").Find(&list).Error
	return list, err
}

func (r *Repository) Update(dot *DotThu) error {
	return r.DB.Omit("KhoanThus").Save(dot).Error
}

// ReplaceKhoanThus swaps the association set, delete-all-then-reinsert.
// Callers gate this to OPEN periods, where no payments against removed fee
// types are assumed to exist.
func (r *Repository) ReplaceKhoanThus(db *gorm.DB, dotThuID uint, assocs []DotThuKhoanThu) error {
	if db == nil {
		db = r.DB
	}
	if err := db.Where("dot_thu_id = ?", dotThuID).Delete(&DotThuKhoanThu{}).Error; err != nil {
		return err
	}
	for i := range assocs {
		assocs[i].ID = 0
		assocs[i].DotThuID = dotThuID
	}
	if len(assocs) == 0 {
		return nil
	}
	return db.Create(&assocs).Error
}

func (r *Repository) Delete(id uint) error {
	res := r.DB.Delete(&DotThu{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetTrangThaiThuCong applies a manual lifecycle action and raises the
// manual-override flag in the same write.
func (r *Repository) SetTrangThaiThuCong(id uint, trangThai string) error {
	res := r.DB.Model(&DotThu{}).Where("id = ?", id).Updates(map[string]interface{}{
		"trang_thai":    trangThai,
		"khoa_thu_cong": true,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListHetHanTuDong returns the auto-close candidates: OPEN, auto-closable,
// not manually controlled, deadline passed.
func (r *Repository) ListHetHanTuDong(now time.Time) ([]DotThu, error) {
	var list []DotThu
	err := r.DB.
		Where("trang_thai = ? AND tu_dong_khoa = ? AND khoa_thu_cong = ? AND han_cuoi < ?",
			TrangThaiDangMo, true, false, now).
		Find(&list).Error
	return list, err
}

// CloseTuDongCAS is the compare-and-set write of the auto-close batch: it
// only fires while the period is still OPEN and still not manually
// controlled. A zero row count means a manual action won the race and the
// period must be left alone.
func (r *Repository) CloseTuDongCAS(id uint, trangThai string) (bool, error) {
	res := r.DB.Model(&DotThu{}).
		Where("id = ? AND trang_thai = ? AND khoa_thu_cong = ?", id, TrangThaiDangMo, false).
		Update("trang_thai", trangThai)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Counts for the period statistics endpoint.
func (r *Repository) CountAll() (int64, error) {
	var n int64
	err := r.DB.Model(&DotThu{}).Count(&n).Error
	return n, err
}

func (r *Repository) CountByTrangThai(trangThai string) (int64, error) {
	var n int64
	err := r.DB.Model(&DotThu{}).Where("trang_thai = ?", trangThai).Count(&n).Error
	return n, err
}

func (r *Repository) CountHetHan(now time.Time) (int64, error) {
	var n int64
	err := r.DB.Model(&DotThu{}).Where("han_cuoi < ?", now).Count(&n).Error
	return n, err
}
