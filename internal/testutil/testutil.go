// Package testutil builds throwaway databases and salons for tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barbershop-booking/internal/db"
	"github.com/BruksfildServices01/barbershop-booking/internal/models"
)

// NewDB opens a private in-memory sqlite database with every table
// migrated. One connection serialises access the way a single postgres
// row lock would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

type Salon struct {
	Shop     models.Barbershop
	Barbers  []models.Barber
	Services map[string]models.Service
}

// SeedSalon creates a salon open Monday to Saturday 09:00-18:00 with a
// daily 12:00-13:00 lunch, one barber per name, and three services:
// "corte" (30 min, 35.00), "barba" (30 min, 25.00) and "combo" (60 min,
// 55.00).
func SeedSalon(t testing.TB, gdb *gorm.DB, slug string, barberNames ...string) Salon {
	t.Helper()

	shop := models.Barbershop{
		Name:     "Barbearia " + slug,
		Slug:     slug,
		Timezone: "UTC",
	}
	require.NoError(t, gdb.Create(&shop).Error)

	for wd := 0; wd <= 6; wd++ {
		require.NoError(t, gdb.Create(&models.BusinessHours{
			BarbershopID: shop.ID,
			Weekday:      wd,
			IsActive:     wd != 0,
			StartTime:    "09:00",
			EndTime:      "18:00",
		}).Error)
	}
	require.NoError(t, gdb.Create(&models.RecurringBreak{
		BarbershopID:   shop.ID,
		Name:           "Almoço",
		StartTime:      "12:00",
		EndTime:        "13:00",
		RecurrenceType: "daily",
	}).Error)

	salon := Salon{Shop: shop, Services: map[string]models.Service{}}
	for i, name := range barberNames {
		b := models.Barber{BarbershopID: shop.ID, Name: name, Active: true, SortOrder: i}
		require.NoError(t, gdb.Create(&b).Error)
		salon.Barbers = append(salon.Barbers, b)
	}

	for _, s := range []struct {
		key      string
		duration int
		price    string
	}{
		{"corte", 30, "35.00"},
		{"barba", 30, "25.00"},
		{"combo", 60, "55.00"},
	} {
		svc := models.Service{
			BarbershopID: shop.ID,
			Name:         s.key,
			DurationMin:  s.duration,
			Price:        decimal.RequireFromString(s.price),
			Active:       true,
		}
		require.NoError(t, gdb.Create(&svc).Error)
		salon.Services[s.key] = svc
	}

	return salon
}

func Ptr[T any](v T) *T {
	return &v
}
