package storage

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/vigourpt/themonneygate2/db"
	"github.com/vigourpt/themonneygate2/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var keyPattern = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeKey strips everything outside [a-zA-Z0-9._-] from a storage key
func SanitizeKey(key string) string {
	return keyPattern.ReplaceAllString(key, "")
}

// GetJSON loads the document stored under key into out. The boolean reports
// whether the key exists.
func GetJSON(key string, out interface{}) (bool, error) {
	var doc models.Document
	err := db.DB.First(&doc, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(doc.Value, out); err != nil {
		return false, err
	}
	return true, nil
}

// PutJSON upserts value as the JSON document stored under key
func PutJSON(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	doc := models.Document{Key: key, Value: datatypes.JSON(raw)}
	return db.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&doc).Error
}
