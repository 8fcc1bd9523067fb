package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tylerheal/clientportal/internal/database/testdb"
)

func TestSaveAndSectionRoundTrip(t *testing.T) {
	testdb.Setup(t)

	require.NoError(t, Save(SectionBranding, map[string]interface{}{
		"brand_name": "Acme",
		"logo_url":   "https://cdn.example.com/logo.svg",
	}))

	section := Section(SectionBranding)
	assert.Equal(t, "Acme", section["brand_name"])
	assert.Equal(t, "https://cdn.example.com/logo.svg", section["logo_url"])
}

func TestSectionMissingIsEmptyMap(t *testing.T) {
	testdb.Setup(t)

	section := Section("nonexistent")
	require.NotNil(t, section)
	assert.Empty(t, section)
}

func TestSaveReplacesWholeSection(t *testing.T) {
	testdb.Setup(t)

	require.NoError(t, Save(SectionBilling, map[string]interface{}{
		"currency":          "€",
		"stripe_secret_key": "sk_old",
	}))
	require.NoError(t, Save(SectionBilling, map[string]interface{}{
		"currency": "$",
	}))

	section := Section(SectionBilling)
	assert.Equal(t, "$", section["currency"])
	_, hasKey := section["stripe_secret_key"]
	assert.False(t, hasKey)
}

func TestAllListsEverySection(t *testing.T) {
	testdb.Setup(t)

	require.NoError(t, Save(SectionBranding, map[string]interface{}{"brand_name": "Acme"}))
	require.NoError(t, Save(SectionEmail, map[string]interface{}{"smtp_host": "mail.example.com"}))

	all := All()
	assert.Len(t, all, 2)
	assert.Equal(t, "Acme", all[SectionBranding]["brand_name"])
	assert.Equal(t, "mail.example.com", all[SectionEmail]["smtp_host"])
}

func TestStrFallbacks(t *testing.T) {
	section := map[string]interface{}{
		"present": "value",
		"empty":   "",
		"number":  42,
	}
	assert.Equal(t, "value", Str(section, "present", "fb"))
	assert.Equal(t, "fb", Str(section, "empty", "fb"))
	assert.Equal(t, "fb", Str(section, "number", "fb"))
	assert.Equal(t, "fb", Str(section, "absent", "fb"))
}
