package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefaults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults_EmptyPath(t *testing.T) {
	p, err := LoadDefaults("")
	require.NoError(t, err)
	assert.True(t, p.CategoryLimits[domain.CategoryFood].Equal(dec("30")))
}

func TestLoadDefaults_MissingFile(t *testing.T) {
	p, err := LoadDefaults(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.True(t, p.Enabled)
}

func TestLoadDefaults_Overrides(t *testing.T) {
	path := writeDefaults(t, `
enabled: true
autoRepay: false
penaltyMode: strict
dailySpendLimit: "0.10"
requireApprovalAbove: 0.04
categoryLimits:
  food: 35
  entertainment: 120
`)

	p, err := LoadDefaults(path)
	require.NoError(t, err)

	assert.False(t, p.AutoRepay)
	assert.Equal(t, domain.PenaltyModeStrict, p.PenaltyMode)
	assert.True(t, p.DailySpendLimit.Equal(dec("0.1")))
	assert.True(t, p.RequireApprovalAbove.Equal(dec("0.04")))
	assert.True(t, p.CategoryLimits[domain.CategoryFood].Equal(dec("35")))
	assert.True(t, p.CategoryLimits[domain.CategoryEntertainment].Equal(dec("100")))
	assert.True(t, p.CategoryLimits[domain.CategoryTransport].Equal(dec("25")))
}

func TestLoadDefaults_InvalidCategory(t *testing.T) {
	path := writeDefaults(t, `
categoryLimits:
  travel: 10
`)

	_, err := LoadDefaults(path)
	assert.True(t, errors.Is(err, domain.ErrInvalidCategory))
}

func TestLoadDefaults_InvalidPenaltyMode(t *testing.T) {
	path := writeDefaults(t, "penaltyMode: lenient\n")

	_, err := LoadDefaults(path)
	assert.True(t, errors.Is(err, domain.ErrInvalidPenaltyMode))
}

func TestLoadDefaults_InvalidYAML(t *testing.T) {
	path := writeDefaults(t, "categoryLimits: [not, a, map]\n")

	_, err := LoadDefaults(path)
	assert.Error(t, err)
}
