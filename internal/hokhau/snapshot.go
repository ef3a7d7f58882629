package hokhau

import (
	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
)

// Snapshot converts a household (loaded with active vehicles) into the view
// the fee calculator consumes.
func (h *HoKhau) Snapshot() tinhphi.Snapshot {
	xe := make(map[phuongtien.LoaiXe]int)
	for _, pt := range h.PhuongTiens {
		if pt.DangHoatDong {
			xe[pt.Loai]++
		}
	}
	return tinhphi.Snapshot{
		HoKhauID:     h.ID,
		MaHo:         h.MaHo,
		DienTich:     h.DienTich,
		DungInternet: h.DungInternet,
		XeTheoLoai:   xe,
	}
}
