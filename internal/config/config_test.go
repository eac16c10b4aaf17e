package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Password: "secret"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
		App:      AppConfig{Timezone: "Asia/Kolkata", StandardWorkHours: 8},
		Notification: NotificationConfig{
			BatchSize:   100,
			WorkerCount: 2,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing db password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "DB_PASSWORD"},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "at least 32"},
		{name: "bad timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, wantErr: "APP_TIMEZONE"},
		{name: "zero work hours", mutate: func(c *Config) { c.App.StandardWorkHours = 0 }, wantErr: "STANDARD_WORK_HOURS"},
		{name: "no workers", mutate: func(c *Config) { c.Notification.WorkerCount = 0 }, wantErr: "notification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	c := validConfig()
	loc := c.Location()
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 5*3600+30*60, offset)
}

func TestGetEnvSlice(t *testing.T) {
	t.Setenv("TEST_SLICE", " a, b ,,c ")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvSlice("TEST_SLICE", nil))
	assert.Equal(t, []string{"x"}, getEnvSlice("TEST_SLICE_UNSET", []string{"x"}))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	d, err := getEnvDuration("TEST_DURATION", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	t.Setenv("TEST_DURATION", "soon")
	_, err = getEnvDuration("TEST_DURATION", time.Second)
	assert.Error(t, err)
}
