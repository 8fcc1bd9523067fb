package settings

import (
	"fmt"

	"github.com/tylerheal/clientportal/internal/database"
	"github.com/tylerheal/clientportal/internal/models"
)

// Section keys.
const (
	SectionBranding = "branding"
	SectionBilling  = "billing"
	SectionEmail    = "email"
)

// All returns every stored settings section decoded from its blob.
func All() map[string]map[string]interface{} {
	var rows []models.Setting
	database.DB.Find(&rows)

	out := make(map[string]map[string]interface{}, len(rows))
	for _, row := range rows {
		section := map[string]interface{}{}
		_ = row.Value.Decode(&section)
		out[row.Key] = section
	}
	return out
}

// Section returns one named section; missing sections decode to an empty map
// so callers can probe keys without nil checks.
func Section(key string) map[string]interface{} {
	var row models.Setting
	section := map[string]interface{}{}
	if err := database.DB.Where("key = ?", key).First(&row).Error; err == nil {
		_ = row.Value.Decode(&section)
	}
	return section
}

// Save replaces a section blob in full.
func Save(key string, data map[string]interface{}) error {
	row := models.Setting{Key: key, Value: models.MustJSON(data)}
	if err := database.DB.Save(&row).Error; err != nil {
		return fmt.Errorf("save settings section %s: %w", key, err)
	}
	return nil
}

// Str reads a string value out of a decoded section.
func Str(section map[string]interface{}, key, fallback string) string {
	if value, ok := section[key]; ok {
		if s, ok := value.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
