package khoanthu_test

import (
	"testing"

	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *khoanthu.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&khoanthu.KhoanThu{}, &khoannop.KhoanNop{}))
	return khoanthu.NewRepository(db)
}

func TestListBatBuoc(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Create(&khoanthu.KhoanThu{Ten: "Phí dịch vụ", Loai: khoanthu.LoaiDichVu, BatBuoc: true}))
	require.NoError(t, repo.Create(&khoanthu.KhoanThu{Ten: "Đóng góp từ thiện", Loai: khoanthu.LoaiDongGop}))

	list, err := repo.ListBatBuoc()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Phí dịch vụ", list[0].Ten)
}

func TestFindByIDs(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Create(&khoanthu.KhoanThu{Ten: "Phí dịch vụ", Loai: khoanthu.LoaiDichVu}))
	require.NoError(t, repo.Create(&khoanthu.KhoanThu{Ten: "Phí gửi xe", Loai: khoanthu.LoaiGuiXe}))

	got, err := repo.FindByIDs([]uint{1, 2, 99})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, khoanthu.LoaiGuiXe, got[2].Loai)
}

func TestCountLedgerRefs(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Create(&khoanthu.KhoanThu{Ten: "Phí dịch vụ", Loai: khoanthu.LoaiDichVu}))

	n, err := repo.CountLedgerRefs(1)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, repo.DB.Create(&khoannop.KhoanNop{
		DotThuID: 1, KhoanThuID: 1, HoKhauID: 1, SoTienPhaiNop: 1000,
		TrangThai: khoannop.TrangThaiChuaNop,
	}).Error)

	n, err = repo.CountLedgerRefs(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDeleteMissing(t *testing.T) {
	repo := newTestRepo(t)
	assert.ErrorIs(t, repo.Delete(404), gorm.ErrRecordNotFound)
}
