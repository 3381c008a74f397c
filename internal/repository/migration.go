package repository

import (
	"fmt"

	"gorm.io/gorm"

	"handyhub/internal/domain/conversation"
	"handyhub/internal/domain/message"
	"handyhub/internal/domain/user"
)

// Models lists every table owned by the chat backend, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&message.Message{},
		&conversation.Conversation{},
	}
}

// InitSchema creates or updates the tables and indexes. It only relies on
// gorm's AutoMigrate so the same call prepares Postgres and SQLite.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

type tabler interface {
	TableName() string
}

// TableCounts reports the row count of every table, for migrate status.
// Missing tables are reported as -1.
func TableCounts(db *gorm.DB) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, model := range Models() {
		table := model.(tabler).TableName()
		if !db.Migrator().HasTable(model) {
			counts[table] = -1
			continue
		}
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// DropSchema drops every chat table, dependents first.
func DropSchema(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop %s: %w", models[i].(tabler).TableName(), err)
		}
	}
	return nil
}

// TruncateAll deletes every row of every chat table, dependents first.
func TruncateAll(db *gorm.DB) error {
	models := Models()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return fmt.Errorf("truncate %s: %w", models[i].(tabler).TableName(), err)
			}
		}
		return nil
	})
}
