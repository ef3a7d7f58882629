package tinhphi

import (
	"testing"

	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	return Snapshot{
		HoKhauID:     1,
		MaHo:         "A-0705",
		DienTich:     70,
		DungInternet: true,
		XeTheoLoai: map[phuongtien.LoaiXe]int{
			phuongtien.XeOto: 1,
			phuongtien.XeMay: 2,
		},
	}
}

func TestComputeServiceFeeByArea(t *testing.T) {
	c := NewCalculator(MacDinh())
	kq := c.Compute(testSnapshot(), khoanthu.KhoanThu{ID: 1, Ten: "Phí dịch vụ", Loai: khoanthu.LoaiDichVu}, 0)

	assert.Equal(t, int64(1050000), kq.SoTien) // 70 m2 x 15000
	assert.Equal(t, khoanthu.LoaiDichVu, kq.DienGiai.Loai)
	assert.Equal(t, 70.0, kq.DienGiai.DienTich)
	assert.Equal(t, int64(15000), kq.DienGiai.DonGia)
	assert.False(t, kq.DienGiai.GhiDe)
	assert.False(t, kq.DienGiai.DungMacDinh)
}

func TestComputeOverrideReplacesUnitRate(t *testing.T) {
	c := NewCalculator(MacDinh())
	kq := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiDichVu}, 20000)

	assert.Equal(t, int64(1400000), kq.SoTien) // 70 m2 x 20000
	assert.True(t, kq.DienGiai.GhiDe)
	assert.Equal(t, int64(20000), kq.DienGiai.DonGia)
}

func TestComputeNoAreaFallsBackToDefault(t *testing.T) {
	c := NewCalculator(MacDinh())
	snap := testSnapshot()
	snap.DienTich = 0

	kq := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiQuanLy}, 0)

	assert.Equal(t, c.Gia.PhiMacDinh, kq.SoTien)
	assert.True(t, kq.DienGiai.DungMacDinh)
	assert.Contains(t, kq.GhiChu, "A-0705")
}

func TestComputeParkingSumsVehicles(t *testing.T) {
	c := NewCalculator(MacDinh())
	kq := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiGuiXe}, 0)

	// 1 car x 1200000 + 2 motorbikes x 70000
	assert.Equal(t, int64(1340000), kq.SoTien)
	assert.Equal(t, 3, kq.DienGiai.TongXe)
	assert.Equal(t, map[string]int{"CAR": 1, "MOTORBIKE": 2}, kq.DienGiai.XeTheoLoai)
}

func TestComputeParkingNoVehiclesIsZero(t *testing.T) {
	c := NewCalculator(MacDinh())
	snap := testSnapshot()
	snap.XeTheoLoai = nil

	kq := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiGuiXe}, 0)

	assert.Equal(t, int64(0), kq.SoTien)
	assert.Equal(t, 0, kq.DienGiai.TongXe)
}

func TestComputeParkingUnknownKindBilledAtDefault(t *testing.T) {
	c := NewCalculator(MacDinh())
	snap := testSnapshot()
	snap.XeTheoLoai = map[phuongtien.LoaiXe]int{phuongtien.LoaiXe("TRUCK"): 1}

	kq := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiGuiXe}, 0)

	assert.Equal(t, c.Gia.PhiMacDinh, kq.SoTien)
}

func TestComputeMeteredUsesBaselineUsage(t *testing.T) {
	c := NewCalculator(MacDinh())

	dien := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiDien}, 0)
	assert.Equal(t, int64(350000), dien.SoTien) // 100 kWh x 3500
	assert.True(t, dien.DienGiai.DungMacDinh)
	assert.Contains(t, dien.GhiChu, "baseline")

	nuoc := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiNuoc}, 0)
	assert.Equal(t, int64(150000), nuoc.SoTien) // 10 m3 x 15000
}

func TestComputeInternetFollowsSubscription(t *testing.T) {
	c := NewCalculator(MacDinh())

	co := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiInternet}, 0)
	assert.Equal(t, c.Gia.PhiInternet, co.SoTien)

	snap := testSnapshot()
	snap.DungInternet = false
	khong := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiInternet}, 0)
	assert.Equal(t, int64(0), khong.SoTien)
}

func TestComputeFlatKindsUseOverrideAsAmount(t *testing.T) {
	c := NewCalculator(MacDinh())

	mac := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiAnNinh}, 0)
	assert.Equal(t, c.Gia.PhiMacDinh, mac.SoTien)

	ghiDe := c.Compute(testSnapshot(), khoanthu.KhoanThu{Loai: khoanthu.LoaiVeSinh}, 30000)
	assert.Equal(t, int64(30000), ghiDe.SoTien)
	assert.True(t, ghiDe.DienGiai.GhiDe)
}

func TestComputeMinimumFloorApplied(t *testing.T) {
	c := NewCalculator(MacDinh())
	snap := testSnapshot()
	snap.DienTich = 1 // 1 m2 x 15000 = 15000, below the floor

	kq := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiDichVu, SoTienToiThieu: 100000}, 0)

	assert.Equal(t, int64(100000), kq.SoTien)
	assert.True(t, kq.DienGiai.ToiThieu)
	assert.Contains(t, kq.GhiChu, "minimum")
}

func TestComputeMinimumFloorSkipsZeroAmounts(t *testing.T) {
	c := NewCalculator(MacDinh())
	snap := testSnapshot()
	snap.DungInternet = false

	kq := c.Compute(snap, khoanthu.KhoanThu{Loai: khoanthu.LoaiInternet, SoTienToiThieu: 100000}, 0)

	// Zero means not applicable; the floor must not turn it into a charge.
	assert.Equal(t, int64(0), kq.SoTien)
	assert.False(t, kq.DienGiai.ToiThieu)
}

func TestComputeIsDeterministic(t *testing.T) {
	c := NewCalculator(MacDinh())
	kt := khoanthu.KhoanThu{Loai: khoanthu.LoaiGuiXe}

	first := c.Compute(testSnapshot(), kt, 0)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, c.Compute(testSnapshot(), kt, 0))
	}
}

func TestTuMoiTruongOverlaysRates(t *testing.T) {
	t.Setenv("GIA_DICH_VU_M2", "16000")
	t.Setenv("GIA_XE_MAY", "80000")
	t.Setenv("DINH_MUC_NUOC_M3", "12.5")

	g := TuMoiTruong()

	assert.Equal(t, int64(16000), g.DonGiaDichVu)
	assert.Equal(t, int64(80000), g.GiaXe[phuongtien.XeMay])
	assert.Equal(t, 12.5, g.SanLuongNuoc)
	assert.Equal(t, int64(7000), g.DonGiaQuanLy) // untouched default
}
