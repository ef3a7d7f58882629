package khoanthu

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&KhoanThu{}))
	return NewHandler(NewRepository(db))
}

func putKhoanThu(t *testing.T, h *Handler, id uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/khoan-thu/{id}", h.Update).Methods("PUT")
	req := httptest.NewRequest(http.MethodPut, "/khoan-thu/"+strconv.Itoa(int(id)), bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateResetsMinimumToZero(t *testing.T) {
	h := newTestHandler(t)
	kt := KhoanThu{Ten: "Quỹ từ thiện", Loai: LoaiDongGop, SoTienToiThieu: 50000}
	require.NoError(t, h.Repo.Create(&kt))

	// An explicit zero clears the minimum rather than being read as "unset".
	w := putKhoanThu(t, h, kt.ID, `{"soTienToiThieu": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := h.Repo.FindByID(kt.ID)
	require.NoError(t, err)
	assert.Zero(t, got.SoTienToiThieu)
	assert.Equal(t, "Quỹ từ thiện", got.Ten)
}

func TestUpdateLeavesMinimumWhenOmitted(t *testing.T) {
	h := newTestHandler(t)
	kt := KhoanThu{Ten: "Quỹ từ thiện", Loai: LoaiDongGop, SoTienToiThieu: 50000}
	require.NoError(t, h.Repo.Create(&kt))

	w := putKhoanThu(t, h, kt.ID, `{"ten": "Quỹ vì người nghèo"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := h.Repo.FindByID(kt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.SoTienToiThieu)
	assert.Equal(t, "Quỹ vì người nghèo", got.Ten)
}

func TestUpdateRejectsNegativeMinimum(t *testing.T) {
	h := newTestHandler(t)
	kt := KhoanThu{Ten: "Quỹ từ thiện", Loai: LoaiDongGop, SoTienToiThieu: 50000}
	require.NoError(t, h.Repo.Create(&kt))

	w := putKhoanThu(t, h, kt.ID, `{"soTienToiThieu": -1}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	got, err := h.Repo.FindByID(kt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.SoTienToiThieu)
}
