package dotthu

import (
	"testing"
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/hokhau"
	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&hokhau.HoKhau{}, &phuongtien.PhuongTien{}, &khoanthu.KhoanThu{},
		&DotThu{}, &DotThuKhoanThu{}, &khoannop.KhoanNop{},
	))
	return NewManager(db, tinhphi.MacDinh())
}

// seedWorld creates two households and three catalog entries:
// household 1 (70 m², internet, one car and two motorbikes) and household 2
// (50 m², no internet, no vehicles).
func seedWorld(t *testing.T, m *Manager) (dichVu, guiXe, internet khoanthu.KhoanThu) {
	t.Helper()
	hk1 := hokhau.HoKhau{MaHo: "A-0705", ChuHo: "Nguyễn Văn An", DienTich: 70, SoThanhVien: 4, DungInternet: true}
	hk2 := hokhau.HoKhau{MaHo: "B-1203", ChuHo: "Trần Thị Bình", DienTich: 50, SoThanhVien: 2}
	require.NoError(t, m.DB.Create(&hk1).Error)
	require.NoError(t, m.DB.Create(&hk2).Error)
	require.NoError(t, m.DB.Create(&[]phuongtien.PhuongTien{
		{HoKhauID: hk1.ID, BienSo: "30A-123.45", Loai: phuongtien.XeOto, DangHoatDong: true},
		{HoKhauID: hk1.ID, BienSo: "29B1-678.90", Loai: phuongtien.XeMay, DangHoatDong: true},
		{HoKhauID: hk1.ID, BienSo: "29B1-678.91", Loai: phuongtien.XeMay, DangHoatDong: true},
		{HoKhauID: hk1.ID, BienSo: "30A-999.99", Loai: phuongtien.XeOto, DangHoatDong: false},
	}).Error)

	dichVu = khoanthu.KhoanThu{Ten: "Phí dịch vụ", Loai: khoanthu.LoaiDichVu, BatBuoc: true}
	guiXe = khoanthu.KhoanThu{Ten: "Phí gửi xe", Loai: khoanthu.LoaiGuiXe}
	internet = khoanthu.KhoanThu{Ten: "Cước Internet", Loai: khoanthu.LoaiInternet}
	require.NoError(t, m.DB.Create(&dichVu).Error)
	require.NoError(t, m.DB.Create(&guiXe).Error)
	require.NoError(t, m.DB.Create(&internet).Error)
	return dichVu, guiXe, internet
}

func caNgay(d time.Duration) time.Time { return time.Now().Add(d) }

func TestCreateDotThuGeneratesLedger(t *testing.T) {
	m := newTestManager(t)
	dichVu, guiXe, internet := seedWorld(t, m)

	dot, err := m.CreateDotThu("Thu phí tháng 8/2026", caNgay(0), caNgay(30*24*time.Hour), []KhoanThuSelection{
		{KhoanThuID: dichVu.ID},
		{KhoanThuID: guiXe.ID},
		{KhoanThuID: internet.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, TrangThaiDangMo, dot.TrangThai)
	assert.Len(t, dot.KhoanThus, 3)

	rows, err := m.KhoanNops.ListByDotThu(dot.ID)
	require.NoError(t, err)
	// Household 2 has no vehicles and no internet, so those two compute to
	// zero and get no row: 3 for household 1 plus 1 for household 2.
	require.Len(t, rows, 4)

	byKey := map[[2]uint]khoannop.KhoanNop{}
	for _, r := range rows {
		byKey[[2]uint{r.HoKhauID, r.KhoanThuID}] = r
	}
	assert.Equal(t, int64(1050000), byKey[[2]uint{1, dichVu.ID}].SoTienPhaiNop) // 70 x 15000
	assert.Equal(t, int64(750000), byKey[[2]uint{2, dichVu.ID}].SoTienPhaiNop)  // 50 x 15000
	assert.Equal(t, int64(1340000), byKey[[2]uint{1, guiXe.ID}].SoTienPhaiNop)  // inactive car excluded
	assert.Equal(t, int64(220000), byKey[[2]uint{1, internet.ID}].SoTienPhaiNop)
	assert.Equal(t, khoannop.TrangThaiChuaNop, byKey[[2]uint{1, dichVu.ID}].TrangThai)
}

func TestCreateDotThuDefaultsToMandatoryFees(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu mặc định", caNgay(0), caNgay(24*time.Hour), nil)
	require.NoError(t, err)
	require.Len(t, dot.KhoanThus, 1)
	assert.Equal(t, dichVu.ID, dot.KhoanThus[0].KhoanThuID)
}

func TestCreateDotThuValidation(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)

	_, err := m.CreateDotThu("", caNgay(0), caNgay(time.Hour), nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = m.CreateDotThu("Ngược ngày", caNgay(time.Hour), caNgay(0), nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = m.CreateDotThu("Khoản thu ma", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: 999}})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = m.CreateDotThu("Hợp lệ", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	assert.NoError(t, err)
}

func TestGenerateLedgerIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	dichVu, guiXe, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{
		{KhoanThuID: dichVu.ID}, {KhoanThuID: guiXe.ID},
	})
	require.NoError(t, err)

	before, err := m.KhoanNops.ListByDotThu(dot.ID)
	require.NoError(t, err)

	_, _, err = m.GenerateLedger(dot)
	require.NoError(t, err)

	after, err := m.KhoanNops.ListByDotThu(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))
}

func TestUpdateDotThuRejectedOnceClosed(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	require.NoError(t, err)

	_, err = m.CloseDotThu(dot.ID)
	require.NoError(t, err)

	_, err = m.UpdateDotThu(dot.ID, "Tên mới", nil, nil, nil)
	assert.Equal(t, apperr.KindPeriodClosed, apperr.KindOf(err))

	// Reopening unblocks it.
	_, err = m.ReopenDotThu(dot.ID)
	require.NoError(t, err)
	updated, err := m.UpdateDotThu(dot.ID, "Tên mới", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tên mới", updated.Ten)
}

func TestUpdateDotThuReplacesSelections(t *testing.T) {
	m := newTestManager(t)
	dichVu, guiXe, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	require.NoError(t, err)

	updated, err := m.UpdateDotThu(dot.ID, "", nil, nil, []KhoanThuSelection{
		{KhoanThuID: dichVu.ID}, {KhoanThuID: guiXe.ID},
	})
	require.NoError(t, err)
	assert.Len(t, updated.KhoanThus, 2)

	// The added fee type generated rows for households with vehicles.
	rows, err := m.KhoanNops.ListByDotThuVaKhoanThu(dot.ID, guiXe.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLifecycleIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)
	dot, err := m.CreateDotThu("Đợt thu", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	require.NoError(t, err)

	closed, err := m.CloseDotThu(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, TrangThaiDaKhoa, closed.TrangThai)

	again, err := m.CloseDotThu(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, TrangThaiDaKhoa, again.TrangThai)

	done, err := m.CompleteDotThu(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, TrangThaiHoanThanh, done.TrangThai)

	// Reopen is permissive, COMPLETED goes back to OPEN too.
	reopened, err := m.ReopenDotThu(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, TrangThaiDangMo, reopened.TrangThai)
}

func TestAutoCloseOutcomes(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)
	sel := []KhoanThuSelection{{KhoanThuID: dichVu.ID}}

	full, err := m.CreateDotThu("Đã thu đủ", caNgay(-48*time.Hour), caNgay(-24*time.Hour), sel)
	require.NoError(t, err)
	partial, err := m.CreateDotThu("Còn thiếu", caNgay(-48*time.Hour), caNgay(-24*time.Hour), sel)
	require.NoError(t, err)
	open, err := m.CreateDotThu("Chưa hết hạn", caNgay(0), caNgay(24*time.Hour), sel)
	require.NoError(t, err)

	// Pay off every row of the first period, half a row of the second.
	rows, err := m.KhoanNops.ListByDotThu(full.ID)
	require.NoError(t, err)
	for _, r := range rows {
		require.NoError(t, m.KhoanNops.ApplyPayment(nil, r.ID, r.SoTienPhaiNop))
	}
	rows, err = m.KhoanNops.ListByDotThu(partial.ID)
	require.NoError(t, err)
	require.NoError(t, m.KhoanNops.ApplyPayment(nil, rows[0].ID, rows[0].SoTienPhaiNop/2))

	processed, err := m.AutoClose(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	byID := func(id uint) *DotThu {
		d, err := m.Repo.FindByID(id)
		require.NoError(t, err)
		return d
	}
	assert.Equal(t, TrangThaiHoanThanh, byID(full.ID).TrangThai)
	assert.Equal(t, TrangThaiDaKhoa, byID(partial.ID).TrangThai)
	assert.Equal(t, TrangThaiDangMo, byID(open.ID).TrangThai)

	// Nothing left to do on the second run.
	processed, err = m.AutoClose(time.Now())
	require.NoError(t, err)
	assert.Zero(t, processed)
}

func TestAutoCloseRespectsManualControl(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu", caNgay(-48*time.Hour), caNgay(-24*time.Hour),
		[]KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	require.NoError(t, err)

	// The board closed it by hand and reopened it past the deadline; the
	// batch must leave that decision alone.
	_, err = m.CloseDotThu(dot.ID)
	require.NoError(t, err)
	_, err = m.ReopenDotThu(dot.ID)
	require.NoError(t, err)

	processed, err := m.AutoClose(time.Now())
	require.NoError(t, err)
	assert.Zero(t, processed)

	cur, err := m.Repo.FindByID(dot.ID)
	require.NoError(t, err)
	assert.Equal(t, TrangThaiDangMo, cur.TrangThai)
}

func TestDeleteDotThu(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)
	sel := []KhoanThuSelection{{KhoanThuID: dichVu.ID}}

	paid, err := m.CreateDotThu("Có tiền", caNgay(0), caNgay(time.Hour), sel)
	require.NoError(t, err)
	rows, err := m.KhoanNops.ListByDotThu(paid.ID)
	require.NoError(t, err)
	require.NoError(t, m.KhoanNops.ApplyPayment(nil, rows[0].ID, 1000))

	err = m.DeleteDotThu(paid.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	empty, err := m.CreateDotThu("Chưa có tiền", caNgay(0), caNgay(time.Hour), sel)
	require.NoError(t, err)
	require.NoError(t, m.DeleteDotThu(empty.ID))

	_, err = m.Repo.FindByID(empty.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	left, err := m.KhoanNops.ListByDotThu(empty.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRecalcKhoanNop(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)

	dot, err := m.CreateDotThu("Đợt thu", caNgay(0), caNgay(time.Hour), []KhoanThuSelection{{KhoanThuID: dichVu.ID}})
	require.NoError(t, err)

	kn, err := m.KhoanNops.FindByBoBa(nil, dot.ID, dichVu.ID, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1050000), kn.SoTienPhaiNop)

	// The registry corrected the floor area; the row follows on recalc.
	require.NoError(t, m.DB.Model(&hokhau.HoKhau{}).Where("id = ?", 1).Update("dien_tich", 80).Error)

	recalced, err := m.RecalcKhoanNop(kn.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1200000), recalced.SoTienPhaiNop)
	assert.Equal(t, 80.0, recalced.DienGiai.DienTich)

	_, err = m.CloseDotThu(dot.ID)
	require.NoError(t, err)
	_, err = m.RecalcKhoanNop(kn.ID)
	assert.Equal(t, apperr.KindPeriodClosed, apperr.KindOf(err))
}

func TestThongKe(t *testing.T) {
	m := newTestManager(t)
	dichVu, _, _ := seedWorld(t, m)
	sel := []KhoanThuSelection{{KhoanThuID: dichVu.ID}}

	_, err := m.CreateDotThu("Đang mở", caNgay(0), caNgay(time.Hour), sel)
	require.NoError(t, err)
	_, err = m.CreateDotThu("Hết hạn", caNgay(-48*time.Hour), caNgay(-24*time.Hour), sel)
	require.NoError(t, err)
	closed, err := m.CreateDotThu("Đã khóa", caNgay(0), caNgay(time.Hour), sel)
	require.NoError(t, err)
	_, err = m.CloseDotThu(closed.ID)
	require.NoError(t, err)

	tk, err := m.ThongKe(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), tk.TongSo)
	assert.Equal(t, int64(2), tk.DangMo)
	assert.Equal(t, int64(1), tk.DaKhoa)
	assert.Equal(t, int64(0), tk.HoanThanh)
	assert.Equal(t, int64(1), tk.HetHan)
}
