package dotthu

import (
	"errors"
	"log"
	"time"

	"github.com/bluemoonbql/api-thuphi/internal/apperr"
	"github.com/bluemoonbql/api-thuphi/internal/hokhau"
	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
	"gorm.io/gorm"
)

// Manager owns the period lifecycle and ledger generation. Handlers stay
// thin; everything with an invariant lives here.
type Manager struct {
	DB        *gorm.DB
	Repo      *Repository
	KhoanThus *khoanthu.Repository
	KhoanNops *khoannop.Repository
	HoKhaus   *hokhau.Repository
	MayTinh   *tinhphi.Calculator
}

func NewManager(db *gorm.DB, gia tinhphi.BangGia) *Manager {
	return &Manager{
		DB:        db,
		Repo:      NewRepository(db),
		KhoanThus: khoanthu.NewRepository(db),
		KhoanNops: khoannop.NewRepository(db),
		HoKhaus:   hokhau.NewRepository(db),
		MayTinh:   tinhphi.NewCalculator(gia),
	}
}

// KhoanThuSelection is one selected fee type with its optional per-period
// override.
type KhoanThuSelection struct {
	KhoanThuID  uint  `json:"khoanThuId" validate:"required"`
	SoTienGhiDe int64 `json:"soTienGhiDe" validate:"gte=0"`
}

// CreateDotThu opens a new collection period and generates its ledger. When
// no fee types are selected, every mandatory catalog entry is collected.
func (m *Manager) CreateDotThu(ten string, ngayTao, hanCuoi time.Time, selections []KhoanThuSelection) (*DotThu, error) {
	if ten == "" {
		return nil, apperr.Validation("ten is required")
	}
	if ngayTao.IsZero() || hanCuoi.IsZero() {
		return nil, apperr.Validation("ngayTao and hanCuoi are required")
	}
	if hanCuoi.Before(ngayTao) {
		return nil, apperr.Validation("hanCuoi must not be before ngayTao")
	}

	if len(selections) == 0 {
		batBuoc, err := m.KhoanThus.ListBatBuoc()
		if err != nil {
			return nil, apperr.Internal(err)
		}
		for _, kt := range batBuoc {
			selections = append(selections, KhoanThuSelection{KhoanThuID: kt.ID})
		}
	}
	if len(selections) == 0 {
		return nil, apperr.Validation("no fee types selected and no mandatory fee types exist")
	}

	dot := &DotThu{
		Ten:        ten,
		NgayTao:    ngayTao,
		HanCuoi:    hanCuoi,
		TrangThai:  TrangThaiDangMo,
		TuDongKhoa: true,
	}
	for _, sel := range selections {
		if _, err := m.KhoanThus.FindByID(sel.KhoanThuID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Newf(apperr.KindNotFound, "fee type %d not found", sel.KhoanThuID)
			}
			return nil, apperr.Internal(err)
		}
		dot.KhoanThus = append(dot.KhoanThus, DotThuKhoanThu{
			KhoanThuID:  sel.KhoanThuID,
			SoTienGhiDe: sel.SoTienGhiDe,
		})
	}

	if err := m.Repo.Create(nil, dot); err != nil {
		return nil, apperr.Internal(err)
	}

	// Generation runs after the period commit. It is idempotent (the unique
	// triple constraint absorbs replays), so a partial failure here is
	// retried by re-invoking it, not rolled back.
	if _, _, err := m.GenerateLedger(dot); err != nil {
		log.Printf("[dotthu] ledger generation for period %d incomplete: %v", dot.ID, err)
	}
	return m.Repo.FindByID(dot.ID)
}

// UpdateDotThu edits base fields and, when a selection is supplied, replaces
// the fee-type association set. Rejected once the period has left OPEN.
func (m *Manager) UpdateDotThu(id uint, ten string, ngayTao, hanCuoi *time.Time, selections []KhoanThuSelection) (*DotThu, error) {
	dot, err := m.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("period not found")
		}
		return nil, apperr.Internal(err)
	}
	if dot.TrangThai != TrangThaiDangMo {
		return nil, apperr.PeriodClosed("cannot edit a closed or completed period, reopen it first")
	}

	if ten != "" {
		dot.Ten = ten
	}
	if ngayTao != nil {
		dot.NgayTao = *ngayTao
	}
	if hanCuoi != nil {
		dot.HanCuoi = *hanCuoi
	}
	if dot.HanCuoi.Before(dot.NgayTao) {
		return nil, apperr.Validation("hanCuoi must not be before ngayTao")
	}

	tx := m.DB.Begin()
	if tx.Error != nil {
		return nil, apperr.Internal(tx.Error)
	}
	if err := tx.Omit("KhoanThus").Save(dot).Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}
	if selections != nil {
		assocs := make([]DotThuKhoanThu, 0, len(selections))
		for _, sel := range selections {
			if _, err := m.KhoanThus.FindByID(sel.KhoanThuID); err != nil {
				tx.Rollback()
				return nil, apperr.Newf(apperr.KindNotFound, "fee type %d not found", sel.KhoanThuID)
			}
			assocs = append(assocs, DotThuKhoanThu{KhoanThuID: sel.KhoanThuID, SoTienGhiDe: sel.SoTienGhiDe})
		}
		if err := m.Repo.ReplaceKhoanThus(tx, dot.ID, assocs); err != nil {
			tx.Rollback()
			return nil, apperr.Internal(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, apperr.Internal(err)
	}

	dot, err = m.Repo.FindByID(id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if selections != nil {
		// New associations may add obligations; existing triples are skipped.
		if _, _, err := m.GenerateLedger(dot); err != nil {
			log.Printf("[dotthu] ledger regeneration for period %d incomplete: %v", dot.ID, err)
		}
	}
	return dot, nil
}

// DeleteDotThu removes a period and its generated ledger. Refused once any
// money has been collected.
func (m *Manager) DeleteDotThu(id uint) error {
	dot, err := m.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("period not found")
		}
		return apperr.Internal(err)
	}
	_, daNop, err := m.KhoanNops.SumByDotThu(dot.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if daNop > 0 {
		return apperr.Validation("period has recorded payments and cannot be deleted")
	}

	tx := m.DB.Begin()
	if tx.Error != nil {
		return apperr.Internal(tx.Error)
	}
	if err := tx.Where("dot_thu_id = ?", dot.ID).Delete(&khoannop.KhoanNop{}).Error; err != nil {
		tx.Rollback()
		return apperr.Internal(err)
	}
	if err := tx.Where("dot_thu_id = ?", dot.ID).Delete(&DotThuKhoanThu{}).Error; err != nil {
		tx.Rollback()
		return apperr.Internal(err)
	}
	if err := tx.Delete(&DotThu{}, dot.ID).Error; err != nil {
		tx.Rollback()
		return apperr.Internal(err)
	}
	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return apperr.Internal(err)
	}
	return nil
}

/* ========================= Lifecycle actions ========================= */

// CloseDotThu forces CLOSED regardless of completion and marks the period
// manually controlled. Closing an already-closed period is a no-op success.
func (m *Manager) CloseDotThu(id uint) (*DotThu, error) {
	return m.setTrangThai(id, TrangThaiDaKhoa)
}

// ReopenDotThu forces OPEN, from CLOSED or COMPLETED alike.
func (m *Manager) ReopenDotThu(id uint) (*DotThu, error) {
	return m.setTrangThai(id, TrangThaiDangMo)
}

// CompleteDotThu forces COMPLETED.
func (m *Manager) CompleteDotThu(id uint) (*DotThu, error) {
	return m.setTrangThai(id, TrangThaiHoanThanh)
}

func (m *Manager) setTrangThai(id uint, trangThai string) (*DotThu, error) {
	dot, err := m.Repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("period not found")
		}
		return nil, apperr.Internal(err)
	}
	if dot.TrangThai == trangThai {
		return dot, nil // already there, keep it idempotent
	}
	if err := m.Repo.SetTrangThaiThuCong(id, trangThai); err != nil {
		return nil, apperr.Internal(err)
	}
	return m.Repo.FindByID(id)
}

/* ========================= Auto-closure ========================= */

// AutoClose scans expired, auto-closable, not-manually-controlled OPEN
// periods and moves each to COMPLETED when every household with ledger rows
// is fully paid, else CLOSED. Safe to invoke repeatedly; the CAS write skips
// periods a manual action touched in the meantime.
func (m *Manager) AutoClose(now time.Time) (processed int, err error) {
	candidates, err := m.Repo.ListHetHanTuDong(now)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	for _, dot := range candidates {
		tong, err := m.KhoanNops.CountHoKhau(dot.ID)
		if err != nil {
			log.Printf("[dotthu] auto-close: counting households for period %d: %v", dot.ID, err)
			continue
		}
		conThieu, err := m.KhoanNops.CountHoKhauConThieu(dot.ID)
		if err != nil {
			log.Printf("[dotthu] auto-close: counting unpaid households for period %d: %v", dot.ID, err)
			continue
		}

		trangThai := TrangThaiDaKhoa
		if tong > 0 && conThieu == 0 {
			trangThai = TrangThaiHoanThanh
		}
		ok, err := m.Repo.CloseTuDongCAS(dot.ID, trangThai)
		if err != nil {
			log.Printf("[dotthu] auto-close: updating period %d: %v", dot.ID, err)
			continue
		}
		if !ok {
			// Manual close/reopen raced us; their decision stands.
			continue
		}
		processed++
		log.Printf("[dotthu] auto-close: period %d (%s) -> %s", dot.ID, dot.Ten, trangThai)
	}
	return processed, nil
}

/* ========================= Ledger generation ========================= */

// GenerateLedger computes and inserts the ledger rows for a period's
// associated fee types. Existing (period, fee type, household) triples are
// skipped via the unique constraint; a zero computed amount means "not
// applicable" and no row is created. A failure for one household degrades to
// a log line, never an aborted batch.
func (m *Manager) GenerateLedger(dot *DotThu) (created, skipped int, err error) {
	if len(dot.KhoanThus) == 0 {
		return 0, 0, nil
	}

	ids := make([]uint, 0, len(dot.KhoanThus))
	for _, assoc := range dot.KhoanThus {
		ids = append(ids, assoc.KhoanThuID)
	}
	catalog, err := m.KhoanThus.FindByIDs(ids)
	if err != nil {
		return 0, 0, apperr.Internal(err)
	}

	hoKhaus, err := m.HoKhaus.ListWithActiveVehicles(nil)
	if err != nil {
		return 0, 0, apperr.Internal(err)
	}

	var rows []*khoannop.KhoanNop
	for _, hk := range hoKhaus {
		snap := hk.Snapshot()
		for _, assoc := range dot.KhoanThus {
			kt, ok := catalog[assoc.KhoanThuID]
			if !ok {
				log.Printf("[dotthu] generation: fee type %d missing from catalog, skipped", assoc.KhoanThuID)
				skipped++
				continue
			}
			kq := m.MayTinh.Compute(snap, kt, assoc.SoTienGhiDe)
			if kq.SoTien <= 0 {
				// Not applicable for this household, no obligation row.
				skipped++
				continue
			}
			rows = append(rows, &khoannop.KhoanNop{
				DotThuID:      dot.ID,
				KhoanThuID:    kt.ID,
				HoKhauID:      hk.ID,
				SoTienPhaiNop: kq.SoTien,
				SoTienDaNop:   0,
				TrangThai:     khoannop.TrangThaiChuaNop,
				DienGiai:      kq.DienGiai,
				GhiChu:        kq.GhiChu,
			})
		}
	}

	if err := m.KhoanNops.CreateInBatch(nil, rows); err != nil {
		return 0, skipped, apperr.Internal(err)
	}
	return len(rows), skipped, nil
}

// RecalcKhoanNop recomputes one ledger row's amount due and trace from the
// current household snapshot. Only allowed while the period is OPEN.
func (m *Manager) RecalcKhoanNop(khoanNopID uint) (*khoannop.KhoanNop, error) {
	kn, err := m.KhoanNops.FindByID(khoanNopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("ledger row not found")
		}
		return nil, apperr.Internal(err)
	}
	dot, err := m.Repo.FindByID(kn.DotThuID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if dot.TrangThai != TrangThaiDangMo {
		return nil, apperr.PeriodClosed("cannot recalculate a ledger row of a non-open period")
	}
	kt, err := m.KhoanThus.FindByID(kn.KhoanThuID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	hk, err := m.HoKhaus.FindByID(kn.HoKhauID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var ghiDe int64
	for _, assoc := range dot.KhoanThus {
		if assoc.KhoanThuID == kn.KhoanThuID {
			ghiDe = assoc.SoTienGhiDe
			break
		}
	}

	kq := m.MayTinh.Compute(hk.Snapshot(), *kt, ghiDe)
	if err := m.KhoanNops.UpdateTinhLai(kn.ID, kq.SoTien, kq.DienGiai, kq.GhiChu); err != nil {
		return nil, apperr.Internal(err)
	}
	return m.KhoanNops.FindByID(kn.ID)
}

/* ========================= Statistics ========================= */

// ThongKeDotThu are the period counters shown on the dashboard.
type ThongKeDotThu struct {
	TongSo    int64 `json:"tongSo"`
	DangMo    int64 `json:"dangMo"`
	DaKhoa    int64 `json:"daKhoa"`
	HoanThanh int64 `json:"hoanThanh"`
	HetHan    int64 `json:"hetHan"`
}

// ThongKe counts total/active/expired periods; read-only.
func (m *Manager) ThongKe(now time.Time) (*ThongKeDotThu, error) {
	tk := &ThongKeDotThu{}
	var err error
	if tk.TongSo, err = m.Repo.CountAll(); err != nil {
		return nil, apperr.Internal(err)
	}
	if tk.DangMo, err = m.Repo.CountByTrangThai(TrangThaiDangMo); err != nil {
		return nil, apperr.Internal(err)
	}
	if tk.DaKhoa, err = m.Repo.CountByTrangThai(TrangThaiDaKhoa); err != nil {
		return nil, apperr.Internal(err)
	}
	if tk.HoanThanh, err = m.Repo.CountByTrangThai(TrangThaiHoanThanh); err != nil {
		return nil, apperr.Internal(err)
	}
	if tk.HetHan, err = m.Repo.CountHetHan(now); err != nil {
		return nil, apperr.Internal(err)
	}
	return tk, nil
}
