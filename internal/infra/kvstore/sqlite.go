package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one stored value.
type Entry struct {
	Namespace string `gorm:"primaryKey;size:191"`
	Key       string `gorm:"primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName pins the table name.
func (Entry) TableName() string { return "kv_entries" }

// SQLite persists entries in a single table through gorm.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates
// the schema. ":memory:" gives a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, namespace, key string, value []byte) error {
	e := Entry{Namespace: namespace, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&e).Error
}

func (s *SQLite) Delete(ctx context.Context, namespace, key string) error {
	return s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", namespace, key).
		Delete(&Entry{}).Error
}

func (s *SQLite) Keys(ctx context.Context, namespace string) ([]string, error) {
	var keys []string
	err := s.db.WithContext(ctx).
		Model(&Entry{}).
		Where("namespace = ?", namespace).
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Ping checks the database connection.
func (s *SQLite) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
