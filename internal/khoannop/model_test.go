package khoannop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrangThaiTheoSoTien(t *testing.T) {
	cases := []struct {
		daNop, phaiNop int64
		want           string
	}{
		{0, 1000000, TrangThaiChuaNop},
		{-500, 1000000, TrangThaiChuaNop},
		{500000, 1000000, TrangThaiMotPhan},
		{1000000, 1000000, TrangThaiDaNopDu},
		{1200000, 1000000, TrangThaiDaNopDu}, // over-payment counts as settled
		{0, 0, TrangThaiChuaNop},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TrangThaiTheoSoTien(tc.daNop, tc.phaiNop),
			"daNop=%d phaiNop=%d", tc.daNop, tc.phaiNop)
	}
}
