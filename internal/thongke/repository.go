// Package thongke provides the read-only rollups the dashboards consume.
// It never mutates ledger state.
package thongke

import (
	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"gorm.io/gorm"
)

// TongKetDotThu is the per-period collection summary.
type TongKetDotThu struct {
	DotThuID      uint    `json:"dotThuId"`
	TongHoKhau    int64   `json:"tongHoKhau"`
	HoKhauDaNopDu int64   `json:"hoKhauDaNopDu"`
	TyLeHoanThanh float64 `json:"tyLeHoanThanh"` // percent, 0-100
	TongPhaiNop   int64   `json:"tongPhaiNop"`
	TongDaNop     int64   `json:"tongDaNop"`
}

// PhanTichKhoanThu is the same shape scoped to one fee type of the period.
type PhanTichKhoanThu struct {
	KhoanThuID    uint    `json:"khoanThuId"`
	Ten           string  `json:"ten"`
	SoKhoanNop    int64   `json:"soKhoanNop"`
	SoDaNopDu     int64   `json:"soDaNopDu"`
	TyLeHoanThanh float64 `json:"tyLeHoanThanh"`
	TongPhaiNop   int64   `json:"tongPhaiNop"`
	TongDaNop     int64   `json:"tongDaNop"`
}

type Repository struct {
	DB        *gorm.DB
	KhoanNops *khoannop.Repository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{DB: db, KhoanNops: khoannop.NewRepository(db)}
}

// TongKet rolls up one period.
func (r *Repository) TongKet(dotThuID uint) (*TongKetDotThu, error) {
	tk := &TongKetDotThu{DotThuID: dotThuID}

	tong, err := r.KhoanNops.CountHoKhau(dotThuID)
	if err != nil {
		return nil, err
	}
	conThieu, err := r.KhoanNops.CountHoKhauConThieu(dotThuID)
	if err != nil {
		return nil, err
	}
	tk.TongHoKhau = tong
	tk.HoKhauDaNopDu = tong - conThieu
	if tong > 0 {
		tk.TyLeHoanThanh = float64(tk.HoKhauDaNopDu) / float64(tong) * 100
	}

	tk.TongPhaiNop, tk.TongDaNop, err = r.KhoanNops.SumByDotThu(dotThuID)
	if err != nil {
		return nil, err
	}
	return tk, nil
}

// PhanTich breaks one period down by fee type.
func (r *Repository) PhanTich(dotThuID uint) ([]PhanTichKhoanThu, error) {
	var rows []PhanTichKhoanThu
	err := r.DB.
		Table("khoan_nops").
		Select(`khoan_nops.khoan_thu_id,
			khoan_thus.ten,
			COUNT(*) AS so_khoan_nop,
			SUM(CASE WHEN khoan_nops.trang_thai = ? THEN 1 ELSE 0 END) AS so_da_nop_du,
			COALESCE(SUM(khoan_nops.so_tien_phai_nop), 0) AS tong_phai_nop,
			COALESCE(SUM(khoan_nops.so_tien_da_nop), 0) AS tong_da_nop`,
			khoannop.TrangThaiDaNopDu).
		Joins("JOIN khoan_thus ON khoan_thus.id = khoan_nops.khoan_thu_id").
		Where("khoan_nops.dot_thu_id = ?", dotThuID).
		Group("khoan_nops.khoan_thu_id, khoan_thus.ten").
		Order("khoan_thus.ten ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].SoKhoanNop > 0 {
			rows[i].TyLeHoanThanh = float64(rows[i].SoDaNopDu) / float64(rows[i].SoKhoanNop) * 100
		}
	}
	return rows, nil
}
