package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mughalk/csc301-a2/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_NestedEndpointRecords(t *testing.T) {
	path := writeConfig(t, `{
		"UserService":               {"ip": "127.0.0.1", "port": 14001},
		"ProductService":            {"ip": "127.0.0.1", "port": 14000},
		"OrderService":              {"ip": "127.0.0.1", "port": 14002},
		"InterServiceCommunication": {"ip": "127.0.0.1", "port": 14003}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	user, err := cfg.Service(config.SectionUser)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:14001", user.Base())

	gw, err := cfg.Service(config.SectionGateway)
	require.NoError(t, err)
	assert.Equal(t, 14003, gw.Port)
}

func TestLoad_MissingFileIsFatal(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_MalformedJSONIsFatal(t *testing.T) {
	path := writeConfig(t, `{"UserService": {`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestService_MissingSection(t *testing.T) {
	path := writeConfig(t, `{"UserService": {"ip": "127.0.0.1", "port": 14001}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	_, err = cfg.Service(config.SectionProduct)
	assert.ErrorContains(t, err, "ProductService")
}

func TestDefaults_AndEnvOverride(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Pause)

	t.Setenv("CONFORM_TIMEOUT", "750ms")
	t.Setenv("CONFORM_PAUSE", "50ms")
	cfg = config.Default()
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 50*time.Millisecond, cfg.Pause)
}

func TestDefaults_BadEnvFallsBack(t *testing.T) {
	t.Setenv("CONFORM_TIMEOUT", "soon")
	cfg := config.Default()
	assert.Equal(t, 3*time.Second, cfg.Timeout)
}
