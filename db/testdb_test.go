package db

import (
	"testing"

	"github.com/davidx1x1/device-loan/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// newTestRepo opens an in-memory store. One pooled connection keeps the
// in-memory database alive and makes concurrent transactions queue the way
// row locks serialize them on postgres.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(gdb)
}

func seedUser(t *testing.T, r *Repo, id, email, role string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: email, Name: email, Role: role}
	if err := r.DB.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedModel(t *testing.T, r *Repo, id, brand, model string) *models.DeviceModel {
	t.Helper()
	m := &models.DeviceModel{ID: id, Brand: brand, Model: model, Category: "laptop"}
	if err := r.DB.Create(m).Error; err != nil {
		t.Fatalf("seed model %s %s: %v", brand, model, err)
	}
	return m
}

func seedDevice(t *testing.T, r *Repo, id, modelID, serial string) *models.Device {
	t.Helper()
	d := &models.Device{ID: id, DeviceModelID: modelID, Serial: serial, IsAvailable: true}
	if err := r.DB.Create(d).Error; err != nil {
		t.Fatalf("seed device %s: %v", serial, err)
	}
	return d
}
