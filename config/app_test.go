package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/agrorec/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agrorec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())

	cfg, err := LoadAppConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, SourceEmbedded, cfg.Data.Source)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "agrorec", cfg.Store.KeyPrefix)
	assert.Equal(t, core.DefaultPreferences().Weights, cfg.Defaults.Weights)
	assert.Equal(t, core.DefaultTopN, cfg.Defaults.TopN)
	assert.True(t, cfg.Defaults.ConsiderRegionalRelevance)
}

func TestLoadAppConfig_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
  request_timeout: 2s
data:
  source: dir
  dir: /srv/agrorec
defaults:
  max_distance_km: 50
  nutrition_objective: alta_fibra
  weights:
    collaborative: 0
`)
	t.Setenv("AGROREC_SERVER_ADDR", ":7070")
	t.Setenv("AGROREC_STORE_KEY_PREFIX", "test")
	t.Setenv("AGROREC_DEFAULTS_DESIRED_PRODUCTS", "Alface, Tomate")
	t.Setenv("AGROREC_WEIGHT_DISTANCE", "0.5")

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, SourceDir, cfg.Data.Source)
	assert.Equal(t, "/srv/agrorec", cfg.Data.Dir)
	assert.Equal(t, "test", cfg.Store.KeyPrefix)
	assert.InDelta(t, 50, cfg.Defaults.MaxDistanceKm, 1e-9)
	assert.Equal(t, core.ObjectiveHighFiber, cfg.Defaults.NutritionObjective)
	assert.Equal(t, []string{"Alface", "Tomate"}, cfg.Defaults.DesiredProducts)
	assert.InDelta(t, 0.5, cfg.Defaults.Weights.Distance, 1e-9)
	assert.InDelta(t, 0, cfg.Defaults.Weights.Collaborative, 1e-9)
	assert.InDelta(t, 0.20, cfg.Defaults.Weights.Rating, 1e-9, "unset keys keep defaults")
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown source", "data:\n  source: s3\n"},
		{"dir without path", "data:\n  source: dir\n"},
		{"unknown driver", "store:\n  driver: etcd\n"},
		{"negative weight", "defaults:\n  weights:\n    rating: -1\n"},
		{"zero distance", "defaults:\n  max_distance_km: 0\n"},
		{"unknown objective", "defaults:\n  nutrition_objective: sweet\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAppConfig(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AGROREC_SERVER_ADDR", "server.addr"},
		{"AGROREC_LOG_LEVEL", "log.level"},
		{"AGROREC_STORE_REDIS_ADDR", "store.redis_addr"},
		{"AGROREC_DATA_RATINGS_CSV", "data.ratings_csv"},
		{"AGROREC_WEIGHT_REGIONAL", "defaults.weights.regional"},
		{"AGROREC_CONFIG", ""},
		{"AGROREC_NOSECTION", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransformFunc(tt.in), tt.in)
	}
}
