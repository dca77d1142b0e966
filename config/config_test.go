package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "2006-01-02", cfg.Attendance.DateLayout)
				assert.Equal(t, "Present", cfg.Attendance.PresentLabel)
				assert.Equal(t, "Absent", cfg.Attendance.AbsentLabel)
				assert.False(t, cfg.Attendance.TrackTotal)
				assert.Equal(t, WindowConfig{Width: 480, Height: 800}, cfg.Window)
				assert.Equal(t, LoggingConfig{Level: "info", Format: "console"}, cfg.Logging)
				assert.Empty(t, cfg.API.Addr)
				assert.Empty(t, cfg.Redis.Addr)
				assert.Equal(t, 8, cfg.Redis.DB)
				assert.Equal(t, 36*time.Hour, cfg.Redis.TTL)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"ROLLCALL_ATTENDANCE_DATE_LAYOUT": "02-01-06",
				"ROLLCALL_ATTENDANCE_TRACK_TOTAL": "true",
				"ROLLCALL_API_ADDR":               "127.0.0.1:8080",
				"ROLLCALL_REDIS_ADDR":             "127.0.0.1:6379",
				"ROLLCALL_REDIS_TTL":              "12h",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "02-01-06", cfg.Attendance.DateLayout)
				assert.True(t, cfg.Attendance.TrackTotal)
				assert.Equal(t, "127.0.0.1:8080", cfg.API.Addr)
				assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
				assert.Equal(t, 12*time.Hour, cfg.Redis.TTL)
				assert.Equal(t, 8, cfg.Redis.DB)
			},
		},
		{
			name: "file overlays environment",
			env:  map[string]string{"ROLLCALL_LOGGING_LEVEL": "debug"},
			file: "attendance:\n  present_label: P\n  absent_label: A\nlogging:\n  level: warn\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "P", cfg.Attendance.PresentLabel)
				assert.Equal(t, "A", cfg.Attendance.AbsentLabel)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "2006-01-02", cfg.Attendance.DateLayout)
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"ROLLCALL_LOGGING_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "same labels",
			env:     map[string]string{"ROLLCALL_ATTENDANCE_ABSENT_LABEL": "Present"},
			wantErr: true,
		},
		{
			name:    "api must stay on loopback",
			env:     map[string]string{"ROLLCALL_API_ADDR": "0.0.0.0:8080"},
			wantErr: true,
		},
		{
			name:    "malformed api address",
			env:     map[string]string{"ROLLCALL_API_ADDR": "8080"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "rollcall.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
				t.Setenv("ROLLCALL_CONFIG_FILE", path)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestRequireLoopback(t *testing.T) {
	assert.NoError(t, requireLoopback("localhost:9000"))
	assert.NoError(t, requireLoopback("[::1]:9000"))
	assert.Error(t, requireLoopback("192.168.1.4:9000"))
}
