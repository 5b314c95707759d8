package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/arthapay/payroll-backend-go/internal/config"
	appHTTP "github.com/arthapay/payroll-backend-go/internal/handler/http"
	"github.com/arthapay/payroll-backend-go/internal/pkg/cron"
	"github.com/arthapay/payroll-backend-go/internal/pkg/database"
	"github.com/arthapay/payroll-backend-go/internal/pkg/jwt"
	"github.com/arthapay/payroll-backend-go/internal/pkg/storage"
	"github.com/arthapay/payroll-backend-go/internal/repository/postgresql"
	payrollService "github.com/arthapay/payroll-backend-go/internal/service/payroll"
	statutoryService "github.com/arthapay/payroll-backend-go/internal/service/statutory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn, database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	runRepo := postgresql.NewPayrollRunRepository(db)
	slabRepo := postgresql.NewPTSlabRepository(db)
	deadlineRepo := postgresql.NewStatutoryDeadlineRepository(db)
	fileRepo := postgresql.NewStatutoryFileRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}

	rates := cfg.Statutory.Rates
	esiCalc := statutoryService.NewESICalculator(rates)
	ptCalc := statutoryService.NewPTCalculator(slabRepo)
	pfCalc := statutoryService.NewPFCalculator(rates)
	tdsCalc := statutoryService.NewTDSCalculator(rates)

	statutorySvc := statutoryService.NewStatutoryService(
		db,
		slabRepo,
		deadlineRepo,
		fileRepo,
		runRepo,
		employeeRepo,
		fileStorage,
		tdsCalc,
	)

	builder := payrollService.NewBuilder(esiCalc, ptCalc, pfCalc, tdsCalc)
	payrollSvc := payrollService.NewPayrollService(
		db,
		runRepo,
		employeeRepo,
		builder,
		statutorySvc,
		cfg.Statutory.RunFailureThresholdPct,
	)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	statutoryHandler := appHTTP.NewStatutoryHandler(statutorySvc)

	scheduler := cron.NewScheduler()
	cron.NewStatutoryJobs(statutorySvc, cfg.Statutory.DeadlineSweepInterval).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(jwtService, payrollHandler, statutoryHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
