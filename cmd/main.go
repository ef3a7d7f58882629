package main

import (
	"log"
	"net/http"
	"os"

	"github.com/bluemoonbql/api-thuphi/internal/auth"
	"github.com/bluemoonbql/api-thuphi/internal/dotthu"
	"github.com/bluemoonbql/api-thuphi/internal/hokhau"
	"github.com/bluemoonbql/api-thuphi/internal/khoannop"
	"github.com/bluemoonbql/api-thuphi/internal/khoanthu"
	"github.com/bluemoonbql/api-thuphi/internal/phuongtien"
	"github.com/bluemoonbql/api-thuphi/internal/taikhoan"
	"github.com/bluemoonbql/api-thuphi/internal/thanhtoan"
	"github.com/bluemoonbql/api-thuphi/internal/thongke"
	"github.com/bluemoonbql/api-thuphi/internal/tinhphi"
	"github.com/bluemoonbql/api-thuphi/internal/utils/db"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	_ = godotenv.Load()

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("database connection failed: ", err)
	}

	if err := database.AutoMigrate(
		&taikhoan.TaiKhoan{},
		&hokhau.HoKhau{},
		&phuongtien.PhuongTien{},
		&khoanthu.KhoanThu{},
		&dotthu.DotThu{},
		&dotthu.DotThuKhoanThu{},
		&khoannop.KhoanNop{},
		&thanhtoan.ThanhToan{},
	); err != nil {
		log.Fatal("auto-migrate failed: ", err)
	}

	// Handlers
	taiKhoanHandler := taikhoan.NewHandler(database)
	hoKhauHandler := hokhau.NewHandler(hokhau.NewRepository(database))
	phuongTienHandler := phuongtien.NewHandler(phuongtien.NewRepository(database))
	khoanThuHandler := khoanthu.NewHandler(khoanthu.NewRepository(database))
	khoanNopHandler := khoannop.NewHandler(khoannop.NewRepository(database))

	manager := dotthu.NewManager(database, tinhphi.TuMoiTruong())
	dotThuHandler := dotthu.NewHandler(manager)
	thanhToanHandler := thanhtoan.NewHandler(thanhtoan.NewRecorder(database))
	thongKeHandler := thongke.NewHandler(thongke.NewRepository(database))

	// Router
	r := mux.NewRouter()
	r.HandleFunc("/dang-nhap", taiKhoanHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)

	api.Handle("/tai-khoan", auth.RequireAdmin(http.HandlerFunc(taiKhoanHandler.Create))).Methods("POST")

	// Household routes
	api.HandleFunc("/ho-khau", hoKhauHandler.Create).Methods("POST")
	api.HandleFunc("/ho-khau", hoKhauHandler.List).Methods("GET")
	api.HandleFunc("/ho-khau/{id}", hoKhauHandler.Get).Methods("GET")
	api.HandleFunc("/ho-khau/{id}", hoKhauHandler.Update).Methods("PUT")
	api.HandleFunc("/ho-khau/{id}", hoKhauHandler.Delete).Methods("DELETE")
	api.HandleFunc("/ho-khau/{id}/khoan-nop", khoanNopHandler.ListByHoKhau).Methods("GET")

	// Vehicle routes
	api.HandleFunc("/phuong-tien", phuongTienHandler.Create).Methods("POST")
	api.HandleFunc("/phuong-tien", phuongTienHandler.List).Methods("GET")
	api.HandleFunc("/phuong-tien/{id}", phuongTienHandler.Get).Methods("GET")
	api.HandleFunc("/phuong-tien/{id}", phuongTienHandler.Update).Methods("PUT")
	api.HandleFunc("/phuong-tien/{id}", phuongTienHandler.Delete).Methods("DELETE")

	// Fee catalog routes
	api.HandleFunc("/khoan-thu", khoanThuHandler.Create).Methods("POST")
	api.HandleFunc("/khoan-thu", khoanThuHandler.List).Methods("GET")
	api.HandleFunc("/khoan-thu/{id}", khoanThuHandler.Get).Methods("GET")
	api.HandleFunc("/khoan-thu/{id}", khoanThuHandler.Update).Methods("PUT")
	api.HandleFunc("/khoan-thu/{id}", khoanThuHandler.Delete).Methods("DELETE")

	// Collection period routes (fixed paths registered before {id})
	api.HandleFunc("/dot-thu/thong-ke", dotThuHandler.ThongKe).Methods("GET")
	api.HandleFunc("/dot-thu/tu-dong-khoa", dotThuHandler.AutoClose).Methods("POST")
	api.HandleFunc("/dot-thu", dotThuHandler.Create).Methods("POST")
	api.HandleFunc("/dot-thu", dotThuHandler.List).Methods("GET")
	api.HandleFunc("/dot-thu/{id}", dotThuHandler.Get).Methods("GET")
	api.HandleFunc("/dot-thu/{id}", dotThuHandler.Update).Methods("PUT")
	api.HandleFunc("/dot-thu/{id}", dotThuHandler.Delete).Methods("DELETE")
	api.HandleFunc("/dot-thu/{id}/khoa", dotThuHandler.Close).Methods("POST")
	api.HandleFunc("/dot-thu/{id}/mo-lai", dotThuHandler.Reopen).Methods("POST")
	api.HandleFunc("/dot-thu/{id}/hoan-thanh", dotThuHandler.Complete).Methods("POST")
	api.HandleFunc("/dot-thu/{id}/khoan-nop", khoanNopHandler.ListByDotThu).Methods("GET")

	// Ledger routes
	api.HandleFunc("/khoan-nop/{id}", khoanNopHandler.Get).Methods("GET")
	api.HandleFunc("/khoan-nop/{id}/tinh-lai", dotThuHandler.Recalc).Methods("POST")

	// Payment routes
	api.HandleFunc("/thanh-toan", thanhToanHandler.Create).Methods("POST")
	api.HandleFunc("/thanh-toan", thanhToanHandler.List).Methods("GET")
	api.HandleFunc("/thanh-toan/{id}", thanhToanHandler.Get).Methods("GET")
	api.HandleFunc("/thanh-toan/{id}", thanhToanHandler.Update).Methods("PUT")
	api.HandleFunc("/thanh-toan/{id}", thanhToanHandler.Delete).Methods("DELETE")
	api.HandleFunc("/thanh-toan/{id}/khoi-phuc", thanhToanHandler.Restore).Methods("POST")

	// Statistics routes
	api.HandleFunc("/thong-ke/dot-thu/{id}", thongKeHandler.TongKet).Methods("GET")
	api.HandleFunc("/thong-ke/dot-thu/{id}/khoan-thu", thongKeHandler.PhanTich).Methods("GET")

	// Auto-closure of expired periods
	scheduler := dotthu.NewScheduler(manager)
	scheduler.Start()

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	addr := ":" + port()
	log.Printf("api-thuphi listening on %s", addr)
	err = http.ListenAndServe(addr, c.Handler(r))
	// log.Fatal would skip the scheduler shutdown, so stop it first.
	scheduler.Stop()
	log.Fatal("server stopped: ", err)
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}
