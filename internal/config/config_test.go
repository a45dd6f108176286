package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:           "development",
		Port:          "8080",
		JWTSecret:     "secure-secret-at-least-32-chars-long",
		JWTExpiryDays: 15,
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Missing secret", func(c *Config) { c.JWTSecret = "" }, true},
		{"Zero token expiry", func(c *Config) { c.JWTExpiryDays = 0 }, true},
		{"Owner email without password", func(c *Config) { c.OwnerEmail = "root@chirp.local" }, true},
		{"Owner credentials together", func(c *Config) {
			c.OwnerEmail = "root@chirp.local"
			c.OwnerPassword = "supersecret"
		}, false},
		{"Production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"Production weak db password", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, true},
		{"Production strong settings", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer viper.Reset()

	os.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, 15, c.JWTExpiryDays)
	assert.Equal(t, "/media", c.MediaBaseURL)
	assert.Equal(t, "hybrid", c.DBSchemaMode)
	assert.False(t, c.IsProduction())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("FEATURE_FLAGS")
	defer os.Unsetenv("JWT_EXPIRY_DAYS")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("FEATURE_FLAGS", "home_timeline=on")
	os.Setenv("JWT_EXPIRY_DAYS", "3")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "home_timeline=on", c.FeatureFlags)
	assert.Equal(t, 3, c.JWTExpiryDays)
}
