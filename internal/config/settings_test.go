package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchant-gateway/pkg/crypto"
)

func testSealer(t *testing.T) *crypto.Sealer {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)
	return sealer
}

func TestSealGatewaySettings_EncryptsCredentialsOnly(t *testing.T) {
	sealer := testSealer(t)
	settings := NewGatewaySettings(validInput())

	records, err := SealGatewaySettings(settings, sealer)
	require.NoError(t, err)
	require.Len(t, records, 6)

	for _, r := range records {
		switch r.Key {
		case KeyLoginID, KeyTransactionKey:
			assert.True(t, r.Encrypted, r.Key)
			assert.NotEqual(t, settings.Map()[r.Key], r.Value)
		default:
			assert.False(t, r.Encrypted, r.Key)
			assert.Equal(t, settings.Map()[r.Key], r.Value)
		}
	}

	opened, err := OpenGatewaySettings(records, sealer)
	require.NoError(t, err)
	assert.Equal(t, settings, opened)
}

func TestOpenGatewaySettings_RejectsCleartextCredentials(t *testing.T) {
	records := []SettingRecord{
		{Key: KeyLoginID, Value: "login5678"},
		{Key: KeyTransactionKey, Value: "abcdefghijklmnop"},
	}

	_, err := OpenGatewaySettings(records, testSealer(t))
	assert.Error(t, err)
}

func TestOpenGatewaySettings_WrongKey(t *testing.T) {
	records, err := SealGatewaySettings(NewGatewaySettings(validInput()), testSealer(t))
	require.NoError(t, err)

	_, err = OpenGatewaySettings(records, testSealer(t))
	assert.Error(t, err)
}

func TestLoadGatewayConfig(t *testing.T) {
	sealer := testSealer(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	records, err := SealGatewaySettings(NewGatewaySettings(validInput()), sealer)
	require.NoError(t, err)
	require.NoError(t, WriteSettingRecords(path, records))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "abcdefghijklmnop")

	cfg, err := LoadGatewayConfig(path, sealer)
	require.NoError(t, err)
	assert.Equal(t, "login5678", cfg.LoginID)
	assert.Equal(t, APICIM, cfg.API)
}

func TestLoadGatewayConfig_InvalidStoredSettings(t *testing.T) {
	sealer := testSealer(t)
	path := filepath.Join(t.TempDir(), "settings.json")

	input := validInput()
	input[KeyTransactionKey] = "short"
	records, err := SealGatewaySettings(NewGatewaySettings(input), sealer)
	require.NoError(t, err)
	require.NoError(t, WriteSettingRecords(path, records))

	_, err = LoadGatewayConfig(path, sealer)
	assert.Error(t, err)
}

func TestReadSettingRecords_Errors(t *testing.T) {
	_, err := ReadSettingRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err = ReadSettingRecords(path)
	assert.Error(t, err)
}
