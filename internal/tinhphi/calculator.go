// Package tinhphi computes the obligation amount of one household for one
// fee type. Compute is pure and deterministic: same snapshot, same fee type,
// same price table, same result. It never returns an error: when input data
// is missing it falls back to a documented default and says so in the note,
// so one broken household can never abort ledger generation for the rest.
package tinhphi

import (
	"fmt"
	"math"

	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
)

// Snapshot is the household view the calculator works from, decoupled from
// the hokhau storage model.
type Snapshot struct {
	HoKhauID     uint
	MaHo         string
	DienTich     float64
	DungInternet bool
	XeTheoLoai   map[phuongtien.LoaiXe]int // active vehicle counts by kind
}

// DienGiai is the structured calculation trace stored on the ledger row.
type DienGiai struct {
	Loai        khoanthu.LoaiKhoanThu `json:"loai"`
	CongThuc    string                `json:"congThuc"`
	DienTich    float64               `json:"dienTich,omitempty"`
	DonGia      int64                 `json:"donGia,omitempty"`
	SanLuong    float64               `json:"sanLuong,omitempty"`
	XeTheoLoai  map[string]int        `json:"xeTheoLoai,omitempty"`
	TongXe      int                   `json:"tongXe,omitempty"`
	GhiDe       bool                  `json:"ghiDe,omitempty"`       // period override applied
	ToiThieu    bool                  `json:"toiThieu,omitempty"`    // minimum-amount floor applied
	DungMacDinh bool                  `json:"dungMacDinh,omitempty"` // fallback default used
}

// KetQua is a computed obligation: amount, trace, free-text note.
type KetQua struct {
	SoTien   int64
	DienGiai DienGiai
	GhiChu   string
}

// Calculator evaluates fee rules against an injected price table.
type Calculator struct {
	Gia BangGia
}

func NewCalculator(gia BangGia) *Calculator {
	return &Calculator{Gia: gia}
}

// Compute returns the obligation of one household for one fee type. ghiDe is
// the period-specific override: for area and metered kinds it replaces the
// unit rate, for flat kinds it replaces the amount, and for parking it is
// ignored (parking derives from the vehicle rate table alone). Zero means no
// override.
func (c *Calculator) Compute(snap Snapshot, kt khoanthu.KhoanThu, ghiDe int64) KetQua {
	var kq KetQua
	kq.DienGiai.Loai = kt.Loai

	switch kt.Loai {
	case khoanthu.LoaiDichVu:
		kq = c.theoDienTich(snap, kt.Loai, c.Gia.DonGiaDichVu, ghiDe)
	case khoanthu.LoaiQuanLy:
		kq = c.theoDienTich(snap, kt.Loai, c.Gia.DonGiaQuanLy, ghiDe)
	case khoanthu.LoaiGuiXe:
		kq = c.theoPhuongTien(snap)
	case khoanthu.LoaiDien:
		kq = c.theoSanLuong(kt.Loai, c.Gia.DonGiaDien, c.Gia.SanLuongDien, ghiDe)
	case khoanthu.LoaiNuoc:
		kq = c.theoSanLuong(kt.Loai, c.Gia.DonGiaNuoc, c.Gia.SanLuongNuoc, ghiDe)
	case khoanthu.LoaiInternet:
		kq = c.theoDangKy(snap, ghiDe)
	default:
		// SECURITY, SANITATION, CONTRIBUTION, OTHER: flat amount.
		kq = c.coDinh(kt.Loai, ghiDe)
	}

	if kq.SoTien < 0 {
		kq.SoTien = 0
	}
	if kt.SoTienToiThieu > 0 && kq.SoTien > 0 && kq.SoTien < kt.SoTienToiThieu {
		kq.SoTien = kt.SoTienToiThieu
		kq.DienGiai.ToiThieu = true
		kq.GhiChu = ghep(kq.GhiChu, fmt.Sprintf("raised to the minimum amount %d", kt.SoTienToiThieu))
	}
	return kq
}

// theoDienTich: amount = area × rate, falling back to the flat default when
// the household has no recorded area.
func (c *Calculator) theoDienTich(snap Snapshot, loai khoanthu.LoaiKhoanThu, donGia, ghiDe int64) KetQua {
	if ghiDe > 0 {
		donGia = ghiDe
	}
	if snap.DienTich <= 0 {
		return KetQua{
			SoTien: c.Gia.PhiMacDinh,
			DienGiai: DienGiai{
				Loai:        loai,
				CongThuc:    "default (no floor area on record)",
				DungMacDinh: true,
			},
			GhiChu: fmt.Sprintf("household %s has no floor area; default amount applied", snap.MaHo),
		}
	}
	soTien := lamTron(snap.DienTich * float64(donGia))
	return KetQua{
		SoTien: soTien,
		DienGiai: DienGiai{
			Loai:     loai,
			CongThuc: fmt.Sprintf("%.1f m2 x %d", snap.DienTich, donGia),
			DienTich: snap.DienTich,
			DonGia:   donGia,
			GhiDe:    ghiDe > 0,
		},
	}
}

// theoPhuongTien: sum of the configured monthly rate over active vehicles.
// Zero vehicles is a zero amount, not an error.
func (c *Calculator) theoPhuongTien(snap Snapshot) KetQua {
	var (
		tong   int64
		tongXe int
		counts = map[string]int{}
	)
	for loai, n := range snap.XeTheoLoai {
		if n <= 0 {
			continue
		}
		gia, ok := c.Gia.GiaXe[loai]
		if !ok {
			// Unknown vehicle kind: bill at the default flat rate rather
			// than failing the household.
			gia = c.Gia.PhiMacDinh
		}
		tong += gia * int64(n)
		tongXe += n
		counts[string(loai)] = n
	}
	return KetQua{
		SoTien: tong,
		DienGiai: DienGiai{
			Loai:       khoanthu.LoaiGuiXe,
			CongThuc:   fmt.Sprintf("%d vehicles at configured rates", tongXe),
			XeTheoLoai: counts,
			TongXe:     tongXe,
		},
	}
}

// theoSanLuong: usage × unit rate. Usage is the configured baseline until a
// metering integration replaces it; the trace marks the approximation.
func (c *Calculator) theoSanLuong(loai khoanthu.LoaiKhoanThu, donGia int64, sanLuong float64, ghiDe int64) KetQua {
	if ghiDe > 0 {
		donGia = ghiDe
	}
	return KetQua{
		SoTien: lamTron(sanLuong * float64(donGia)),
		DienGiai: DienGiai{
			Loai:        loai,
			CongThuc:    fmt.Sprintf("%.1f x %d (baseline usage)", sanLuong, donGia),
			SanLuong:    sanLuong,
			DonGia:      donGia,
			GhiDe:       ghiDe > 0,
			DungMacDinh: true,
		},
		GhiChu: "usage estimated from the configured baseline (no meter reading)",
	}
}

// theoDangKy: fixed amount while subscribed, zero otherwise.
func (c *Calculator) theoDangKy(snap Snapshot, ghiDe int64) KetQua {
	if !snap.DungInternet {
		return KetQua{
			SoTien:   0,
			DienGiai: DienGiai{Loai: khoanthu.LoaiInternet, CongThuc: "not subscribed"},
		}
	}
	phi := c.Gia.PhiInternet
	if ghiDe > 0 {
		phi = ghiDe
	}
	return KetQua{
		SoTien: phi,
		DienGiai: DienGiai{
			Loai:     khoanthu.LoaiInternet,
			CongThuc: "subscription price",
			DonGia:   phi,
			GhiDe:    ghiDe > 0,
		},
	}
}

func (c *Calculator) coDinh(loai khoanthu.LoaiKhoanThu, ghiDe int64) KetQua {
	phi := c.Gia.PhiMacDinh
	ghiDeApDung := false
	if ghiDe > 0 {
		phi = ghiDe
		ghiDeApDung = true
	}
	return KetQua{
		SoTien: phi,
		DienGiai: DienGiai{
			Loai:     loai,
			CongThuc: "flat amount",
			DonGia:   phi,
			GhiDe:    ghiDeApDung,
		},
	}
}

// lamTron rounds to the nearest whole VND.
func lamTron(v float64) int64 {
	return int64(math.Round(v))
}

func ghep(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
