package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-core/internal/assign"
	"github.com/Leganyst/booking-core/internal/busy"
	"github.com/Leganyst/booking-core/internal/config"
	"github.com/Leganyst/booking-core/internal/db"
	"github.com/Leganyst/booking-core/internal/model"
	"github.com/Leganyst/booking-core/internal/repository"
	"github.com/Leganyst/booking-core/internal/resolver"
	"github.com/Leganyst/booking-core/internal/service"
)

func main() {
	root := &cobra.Command{
		Use:   "bookingd",
		Short: "Ядро бронирования: доступность, назначение сотрудников, жизненный цикл записей",
	}
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newRemindCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openDB() (*gorm.DB, error) {
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return nil, fmt.Errorf("load db config: %w", err)
	}
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	return gormDB, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Прогнать миграции моделей",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := openDB()
			if err != nil {
				return err
			}
			if err := model.AutoMigrate(gormDB); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			log.Println("migrations applied")
			return nil
		},
	}
}

// logNotifier — заглушка доставки: сама чат-рассылка живёт в соседнем
// сервисе, ядру достаточно контракта Notifier.
type logNotifier struct{}

func (logNotifier) NotifyReminder(_ context.Context, res *model.Reservation) error {
	log.Printf("reminder due: reservation %s at %s", res.ID, res.StartsAt.Format(time.RFC3339))
	return nil
}

func newRemindCmd() *cobra.Command {
	var every time.Duration

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Разослать напоминания по подтверждённым записям",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := openDB()
			if err != nil {
				return err
			}

			appCfg := config.LoadAppConfig()

			var src busy.Source
			var sink busy.EventSink
			if appCfg.BusySourceBaseURL != "" {
				client := busy.NewClient(appCfg.BusySourceBaseURL, appCfg.BusyCallTimeout)
				src = client
				sink = client
			}

			resRepo := repository.NewGormReservationRepository(gormDB)
			svc := service.NewBookingService(
				gormDB,
				repository.NewGormCalendarRepository(gormDB),
				resRepo,
				repository.NewGormCustomerRepository(gormDB),
				resolver.New(resRepo, src, appCfg.BusyCallTimeout, appCfg.BusyMaxParallel),
				assign.NewEngine(nil),
				sink,
				logNotifier{},
				time.Duration(appCfg.ReminderLeadHours)*time.Hour,
			)

			runOnce := func(ctx context.Context) {
				sent, err := svc.SendDueReminders(ctx)
				if err != nil {
					log.Printf("reminder sweep: %v", err)
					return
				}
				log.Printf("reminder sweep: sent %d", sent)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			runOnce(ctx)
			if every <= 0 {
				return nil
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					log.Println("shutting down reminder loop...")
					return nil
				case <-ticker.C:
					runOnce(ctx)
				}
			}
		},
	}

	cmd.Flags().DurationVar(&every, "every", 0, "период повторных проходов; 0 — один проход")
	return cmd
}
