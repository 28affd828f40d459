package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	branchCapacityHandler "github.com/lumispa/spa-core/internal/api/handlers/branch_capacity"
	cancelBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/cancel_booking"
	commissionStatusHandler "github.com/lumispa/spa-core/internal/api/handlers/commission_status"
	completeBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/complete_booking"
	confirmBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/confirm_booking"
	createBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/create_booking"
	createWaitlistHandler "github.com/lumispa/spa-core/internal/api/handlers/create_waitlist"
	getBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/get_booking"
	getBranchBookingsHandler "github.com/lumispa/spa-core/internal/api/handlers/get_branch_bookings"
	getWaitlistHandler "github.com/lumispa/spa-core/internal/api/handlers/get_waitlist"
	matchWaitlistHandler "github.com/lumispa/spa-core/internal/api/handlers/match_waitlist"
	noShowBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/no_show_booking"
	refundPaymentHandler "github.com/lumispa/spa-core/internal/api/handlers/refund_payment"
	respondWaitlistHandler "github.com/lumispa/spa-core/internal/api/handlers/respond_waitlist"
	staffCommissionsHandler "github.com/lumispa/spa-core/internal/api/handlers/staff_commissions"
	staffUtilizationHandler "github.com/lumispa/spa-core/internal/api/handlers/staff_utilization"
	startBookingHandler "github.com/lumispa/spa-core/internal/api/handlers/start_booking"
	topEarnersHandler "github.com/lumispa/spa-core/internal/api/handlers/top_earners"
	"github.com/lumispa/spa-core/internal/api/middleware"
	"github.com/lumispa/spa-core/internal/config"
	bookingRepo "github.com/lumispa/spa-core/internal/infra/storage/booking"
	commissionRepo "github.com/lumispa/spa-core/internal/infra/storage/commission"
	paymentRepo "github.com/lumispa/spa-core/internal/infra/storage/payment"
	scheduleRepo "github.com/lumispa/spa-core/internal/infra/storage/schedule"
	waitlistRepo "github.com/lumispa/spa-core/internal/infra/storage/waitlist"
	performanceClient "github.com/lumispa/spa-core/internal/integrations/performance"
	bookingsService "github.com/lumispa/spa-core/internal/service/bookings"
	capacityService "github.com/lumispa/spa-core/internal/service/capacity"
	commissionsService "github.com/lumispa/spa-core/internal/service/commissions"
	waitlistService "github.com/lumispa/spa-core/internal/service/waitlist"
	cancelBookingUC "github.com/lumispa/spa-core/internal/usecase/cancel_booking"
	completeBookingUC "github.com/lumispa/spa-core/internal/usecase/complete_booking"
	createBookingUC "github.com/lumispa/spa-core/internal/usecase/create_booking"
	matchWaitlistUC "github.com/lumispa/spa-core/internal/usecase/match_waitlist"
	"github.com/lumispa/spa-core/pkg/dbmetrics"
	"github.com/lumispa/spa-core/pkg/logger"
	"github.com/lumispa/spa-core/pkg/metrics"
	"github.com/lumispa/spa-core/pkg/simpletxmanager"
	"github.com/lumispa/spa-core/pkg/txmanager"
)

// TxManager интерфейс транзакционного менеджера для сервисов и use cases
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting spa-core...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем клиент сервиса оценок персонала
	perfClient := performanceClient.NewClient(
		cfg.Performance.URL,
		time.Duration(cfg.Performance.Timeout)*time.Second,
		log,
	)
	log.Info("Performance client initialized (url=%s timeout=%ds)",
		cfg.Performance.URL, cfg.Performance.Timeout)

	// Инициализируем репозитории и транзакционный менеджер (с метриками или без)
	var (
		bookingRepository    *bookingRepo.Repository
		paymentRepository    *paymentRepo.Repository
		scheduleRepository   *scheduleRepo.Repository
		waitlistRepository   *waitlistRepo.Repository
		commissionRepository *commissionRepo.Repository
		txMgr                TxManager
	)

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		bookingRepository = bookingRepo.NewRepository(wrappedDB)
		paymentRepository = paymentRepo.NewRepository(wrappedDB)
		scheduleRepository = scheduleRepo.NewRepository(wrappedDB)
		waitlistRepository = waitlistRepo.NewRepository(wrappedDB)
		commissionRepository = commissionRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		bookingRepository = bookingRepo.NewRepository(db)
		paymentRepository = paymentRepo.NewRepository(db)
		scheduleRepository = scheduleRepo.NewRepository(db)
		waitlistRepository = waitlistRepo.NewRepository(db)
		commissionRepository = commissionRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	bookingSvc := bookingsService.NewService(
		bookingRepository,
		paymentRepository,
		txMgr,
		log,
	)
	commissionSvc := commissionsService.NewService(commissionRepository, log)
	capacitySvc := capacityService.NewService(bookingRepository, scheduleRepository, log)
	waitlistSvc := waitlistService.NewService(
		waitlistRepository,
		bookingRepository,
		&waitlistService.RealTimeProvider{},
		log,
	)

	// Инициализируем use cases
	createBookingUseCase := createBookingUC.NewUseCase(
		bookingRepository,
		scheduleRepository,
		paymentRepository,
		txMgr,
		log,
	)
	completeBookingUseCase := completeBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		commissionRepository,
		perfClient,
		txMgr,
		log,
	)
	matchWaitlistUseCase := matchWaitlistUC.NewUseCase(waitlistRepository, log)
	cancelBookingUseCase := cancelBookingUC.NewUseCase(
		bookingRepository,
		paymentRepository,
		matchWaitlistUseCase,
		txMgr,
		log,
	)

	// Инициализируем handlers
	createBooking := createBookingHandler.NewHandler(createBookingUseCase, log)
	getBooking := getBookingHandler.NewHandler(bookingSvc, log)
	getBranchBookings := getBranchBookingsHandler.NewHandler(bookingSvc, log)
	confirmBooking := confirmBookingHandler.NewHandler(bookingSvc, log)
	startBooking := startBookingHandler.NewHandler(bookingSvc, log)
	completeBooking := completeBookingHandler.NewHandler(completeBookingUseCase, log)
	cancelBooking := cancelBookingHandler.NewHandler(cancelBookingUseCase, log)
	noShowBooking := noShowBookingHandler.NewHandler(bookingSvc, log)
	refundPayment := refundPaymentHandler.NewHandler(bookingSvc, log)
	staffCommissions := staffCommissionsHandler.NewHandler(commissionSvc, log)
	commissionStatus := commissionStatusHandler.NewHandler(commissionSvc, log)
	topEarners := topEarnersHandler.NewHandler(commissionSvc, log)
	staffUtilization := staffUtilizationHandler.NewHandler(capacitySvc, log)
	branchCapacity := branchCapacityHandler.NewHandler(capacitySvc, log)
	createWaitlist := createWaitlistHandler.NewHandler(waitlistSvc, log)
	getWaitlist := getWaitlistHandler.NewHandler(waitlistSvc, log)
	respondWaitlist := respondWaitlistHandler.NewHandler(waitlistSvc, log)
	matchWaitlist := matchWaitlistHandler.NewHandler(matchWaitlistUseCase, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth)

	// --- Бронирования ---
	api.HandleFunc("/bookings", createBooking.Handle).Methods(http.MethodPost)
	api.HandleFunc("/bookings/by-reference/{reference}", getBooking.HandleByReference).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}", getBooking.Handle).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{bookingId}/confirm", confirmBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/start", startBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/complete", completeBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/cancel", cancelBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/no-show", noShowBooking.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/bookings/{bookingId}/refund", refundPayment.Handle).Methods(http.MethodPatch)

	// --- Филиалы ---
	api.HandleFunc("/branches/{branchId}/bookings", getBranchBookings.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/{branchId}/capacity", branchCapacity.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/{branchId}/commissions/top-earners", topEarners.Handle).Methods(http.MethodGet)

	// --- Комиссии ---
	api.HandleFunc("/staff/{staffId}/commissions", staffCommissions.HandleList).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/commissions/pending", staffCommissions.HandlePending).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/commissions/summary", staffCommissions.HandleSummary).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/earnings", staffCommissions.HandleEarnings).Methods(http.MethodGet)
	api.HandleFunc("/staff/{staffId}/utilization", staffUtilization.Handle).Methods(http.MethodGet)
	api.HandleFunc("/commissions/{commissionId}/approve", commissionStatus.HandleApprove).Methods(http.MethodPatch)
	api.HandleFunc("/commissions/{commissionId}/reject", commissionStatus.HandleReject).Methods(http.MethodPatch)
	api.HandleFunc("/commissions/{commissionId}/mark-paid", commissionStatus.HandleMarkPaid).Methods(http.MethodPatch)

	// --- Лист ожидания ---
	api.HandleFunc("/waitlist", createWaitlist.Handle).Methods(http.MethodPost)
	api.HandleFunc("/waitlist/match", matchWaitlist.Handle).Methods(http.MethodPost)
	api.HandleFunc("/waitlist/{entryId}", getWaitlist.Handle).Methods(http.MethodGet)
	api.HandleFunc("/waitlist/{entryId}/respond", respondWaitlist.Handle).Methods(http.MethodPatch)
	api.HandleFunc("/waitlist/{entryId}/extend", respondWaitlist.HandleExtend).Methods(http.MethodPatch)

	// Фоновый свипер просроченных записей листа ожидания
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runWaitlistSweeper(sweepCtx, waitlistSvc, time.Duration(cfg.Sweep.WaitlistIntervalSeconds)*time.Second, log)
	log.Info("Waitlist expiry sweeper started (interval=%ds)", cfg.Sweep.WaitlistIntervalSeconds)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	stopSweep()

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// runWaitlistSweeper периодически переводит в expired уведомлённые записи
// листа ожидания с истёкшим окном ответа
func runWaitlistSweeper(ctx context.Context, svc *waitlistService.Service, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireOverdue(ctx); err != nil {
				log.Error("Waitlist sweeper: %v", err)
			}
		}
	}
}
