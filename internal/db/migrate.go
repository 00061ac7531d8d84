package db

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/models"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/pricing"
	"github.com/repuestosonline09-maker/logipartve-v7-sub000/internal/rates"
)

// ConnectAndMigrate opens the database, runs migrations (SQL migrations via
// golang-migrate when MIGRATIONS=1, AutoMigrate otherwise) and optionally
// seeds reference data behind DB_SEED.
func ConnectAndMigrate() (*gorm.DB, error) {
	dsn := GetNormalizedDSN()
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_DSN is empty, check the environment")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		fmt.Println("Retrying DB connection...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	masked := dsn
	if strings.Contains(masked, "password=") {
		re := regexp.MustCompile(`(password=)([^\s]+)`)
		masked = re.ReplaceAllString(masked, `${1}***`)
	}
	fmt.Println("[DB] Using DSN:", masked)

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(dsn); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range Models() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	for _, table := range []string{"users", "quotes", "freight_rates", "user_ranges", "quote_sequences"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		seed(db)
	}
	return db, nil
}

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.Role{}, &models.User{}, &models.Customer{},
		&models.FreightRate{}, &models.UserRange{}, &models.QuoteSequence{},
		&models.Quote{}, &models.QuoteItem{}, &models.QuoteCharge{},
	}
}

// seed installs the base roles and a starter rate per (origin, mode) pair so
// a fresh install can quote immediately. Existing rows are left alone.
func seed(db *gorm.DB) {
	for _, name := range []string{models.RoleAdmin, models.RoleAnalyst} {
		var existing models.Role
		if err := db.Where("name = ?", name).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			db.Create(&models.Role{Name: name})
		}
	}

	starter := map[pricing.ShippingMode]decimal.Decimal{
		pricing.ModeAir: decimal.RequireFromString("2.50"),
		pricing.ModeSea: decimal.RequireFromString("18.00"),
	}
	p := rates.NewGormProvider(db)
	for _, origin := range pricing.Origins() {
		for mode, value := range starter {
			if _, err := p.Active(origin, mode); errors.Is(err, pricing.ErrRateNotFound) {
				_ = p.Upsert(pricing.FreightRate{Origin: origin, Mode: mode, Rate: value}, 0)
			}
		}
	}
}

// runSQLMigrations executes migrations in ./migrations using the
// golang-migrate file source.
func runSQLMigrations(dsn string) error {
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}
