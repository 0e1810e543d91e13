package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultDailyLimit is the number of coverage requests a new key may make per day
const DefaultDailyLimit = 10000

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table, one row per key and day
type APIUsage struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	KeyID         uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date          string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount  int    `gorm:"default:0" json:"request_count"`
	TotalStations int    `gorm:"default:0" json:"total_stations"`
	TotalShifts   int    `gorm:"default:0" json:"total_shifts"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to Postgres when dsn is set, otherwise to the SQLite file at dataPath,
// and migrates the schema
func Open(dsn, dataPath string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		if dataPath == "" {
			dataPath = "api_keys.db"
		}
		db, err = gorm.Open(sqlite.Open(dataPath), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// Today formats now as a usage date
func Today(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

// ReserveRequest counts one request for the key on date and reports whether
// it fits the daily limit. A rejected request is not counted. A limit of 0
// or less means unlimited. The increment and the check run in one
// transaction, so concurrent requests cannot both take the last slot.
func ReserveRequest(db *gorm.DB, keyID uint, date string, limit int) (bool, error) {
	allowed := true
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"request_count": gorm.Expr("request_count + ?", 1),
			}),
		}).Create(&APIUsage{KeyID: keyID, Date: date, RequestCount: 1}).Error
		if err != nil {
			return err
		}

		used, err := RequestsOn(tx, keyID, date)
		if err != nil {
			return err
		}
		if limit <= 0 || used <= limit {
			return nil
		}

		allowed = false
		return tx.Model(&APIUsage{}).
			Where("key_id = ? AND date = ?", keyID, date).
			Update("request_count", gorm.Expr("request_count - ?", 1)).Error
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// RecordTotals adds a request's input sizes to the key's row for date
func RecordTotals(db *gorm.DB, keyID uint, date string, stations, shifts int) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_stations": gorm.Expr("total_stations + ?", stations),
			"total_shifts":   gorm.Expr("total_shifts + ?", shifts),
		}),
	}).Create(&APIUsage{
		KeyID:         keyID,
		Date:          date,
		TotalStations: stations,
		TotalShifts:   shifts,
	}).Error
}

// RequestsOn returns how many requests the key made on date
func RequestsOn(db *gorm.DB, keyID uint, date string) (int, error) {
	var usage APIUsage
	err := db.Where("key_id = ? AND date = ?", keyID, date).Limit(1).Find(&usage).Error
	return usage.RequestCount, err
}

// UsageHistory returns the key's last 30 days of usage, newest first
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}
