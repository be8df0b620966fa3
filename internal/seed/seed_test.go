package seed

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nexusmarket/backend/pkg/config"
	"github.com/nexusmarket/backend/pkg/db/models"
	"github.com/nexusmarket/backend/pkg/logger"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:seed_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("extract sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	tables := []any{&models.User{}, &models.Category{}, &models.Product{}}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	logg := logger.New(logger.Options{ServiceName: "seed-test", Output: io.Discard})
	svc, err := NewService(conn, pwCfg, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestRunSeedsOnce(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	seeded, err := svc.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !seeded {
		t.Fatal("expected data to be seeded")
	}

	var userCount, productCount int64
	if err := conn.Model(&models.User{}).Count(&userCount).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if err := conn.Model(&models.Product{}).Count(&productCount).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if userCount != 3 || productCount != 5 {
		t.Fatalf("unexpected seeded counts users=%d products=%d", userCount, productCount)
	}

	// A second run leaves the populated database alone.
	seeded, err = svc.Run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if seeded {
		t.Fatal("expected second run to be a no-op")
	}
	var after int64
	if err := conn.Model(&models.User{}).Count(&after).Error; err != nil {
		t.Fatalf("recount users: %v", err)
	}
	if after != userCount {
		t.Fatalf("seed ran twice, users %d -> %d", userCount, after)
	}
}
