package tinhphi

import (
	"os"
	"strconv"

	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
)

// BangGia is the price table injected into the calculator. All amounts are
// VND (integer, no fractional unit). It is deliberately a plain value type so
// tests can pin every rate.
type BangGia struct {
	DonGiaDichVu int64 // per m² per period
	DonGiaQuanLy int64 // per m² per period

	GiaXe map[phuongtien.LoaiXe]int64 // per vehicle per period

	DonGiaDien   int64   // per kWh
	SanLuongDien float64 // baseline kWh used while no metering feed exists
	DonGiaNuoc   int64   // per m³
	SanLuongNuoc float64 // baseline m³ used while no metering feed exists

	PhiInternet int64 // subscription price
	PhiMacDinh  int64 // flat default (security, sanitation, unmatched kinds)
}

// MacDinh returns the board-approved default price table.
func MacDinh() BangGia {
	return BangGia{
		DonGiaDichVu: 15000,
		DonGiaQuanLy: 7000,
		GiaXe: map[phuongtien.LoaiXe]int64{
			phuongtien.XeOto: 1200000,
			phuongtien.XeMay: 70000,
			phuongtien.XeDap: 20000,
		},
		DonGiaDien:   3500,
		SanLuongDien: 100,
		DonGiaNuoc:   15000,
		SanLuongNuoc: 10,
		PhiInternet:  220000,
		PhiMacDinh:   50000,
	}
}

// TuMoiTruong overlays environment overrides on the defaults so each
// deployment can tune rates without a rebuild.
func TuMoiTruong() BangGia {
	g := MacDinh()
	overlayInt64(&g.DonGiaDichVu, "GIA_DICH_VU_M2")
	overlayInt64(&g.DonGiaQuanLy, "GIA_QUAN_LY_M2")
	overlayInt64(&g.DonGiaDien, "GIA_DIEN_KWH")
	overlayInt64(&g.DonGiaNuoc, "GIA_NUOC_M3")
	overlayInt64(&g.PhiInternet, "PHI_INTERNET")
	overlayInt64(&g.PhiMacDinh, "PHI_MAC_DINH")
	overlayFloat(&g.SanLuongDien, "DINH_MUC_DIEN_KWH")
	overlayFloat(&g.SanLuongNuoc, "DINH_MUC_NUOC_M3")
	if v, ok := envInt64("GIA_XE_OTO"); ok {
		g.GiaXe[phuongtien.XeOto] = v
	}
	if v, ok := envInt64("GIA_XE_MAY"); ok {
		g.GiaXe[phuongtien.XeMay] = v
	}
	if v, ok := envInt64("GIA_XE_DAP"); ok {
		g.GiaXe[phuongtien.XeDap] = v
	}
	return g
}

func envInt64(key string) (int64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func overlayInt64(dst *int64, key string) {
	if v, ok := envInt64(key); ok {
		*dst = v
	}
}

func overlayFloat(dst *float64, key string) {
	s := os.Getenv(key)
	if s == "" {
		return
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*dst = v
	}
}
