package assets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func TestCertStatus(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, string(models.ExpiryActive), certStatus(time.Time{}, now))
	assert.Equal(t, string(models.ExpiryExpired), certStatus(now.AddDate(0, 0, -1), now))
	assert.Equal(t, string(models.ExpiryExpiringSoon), certStatus(now.AddDate(0, 0, 10), now))
	assert.Equal(t, string(models.ExpiryActive), certStatus(now.AddDate(0, 0, 90), now))
}
