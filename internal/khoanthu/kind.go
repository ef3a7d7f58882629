package khoanthu

import "strings"

// Legacy fee-type names from the management board's spreadsheets carry no
// kind tag. ResolveLoai maps a display name onto a kind one time, at catalog
// creation; from then on only the stored tag is consulted.
func ResolveLoai(ten string) LoaiKhoanThu {
	t := strings.ToLower(ten)
	switch {
	case contains(t, "dịch vụ", "dich vu", "service"):
		return LoaiDichVu
	case contains(t, "quản lý", "quan ly", "management"):
		return LoaiQuanLy
	case contains(t, "gửi xe", "gui xe", "đỗ xe", "do xe", "parking"):
		return LoaiGuiXe
	case contains(t, "điện", "dien", "electric"):
		return LoaiDien
	case contains(t, "nước", "nuoc", "water"):
		return LoaiNuoc
	case contains(t, "internet", "mạng", "wifi"):
		return LoaiInternet
	case contains(t, "an ninh", "bảo vệ", "bao ve", "security"):
		return LoaiAnNinh
	case contains(t, "vệ sinh", "ve sinh", "sanitation"):
		return LoaiVeSinh
	case contains(t, "đóng góp", "dong gop", "ủng hộ", "ung ho", "từ thiện"):
		return LoaiDongGop
	default:
		return LoaiKhac
	}
}

func contains(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
