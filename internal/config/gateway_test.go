package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func validInput() map[string]string {
	return map[string]string{
		KeyLoginID:        "login5678",
		KeyTransactionKey: "abcdefghijklmnop",
		KeyTestMode:       "true",
		KeyDevMode:        "true",
		KeyAPI:            "cim",
		KeyValidationMode: "testMode",
	}
}

func TestValidateGatewaySettings_Valid(t *testing.T) {
	settings, errs := ValidateGatewaySettings(validInput())
	require.Empty(t, errs)

	cfg, err := settings.GatewayConfig()
	require.NoError(t, err)
	assert.Equal(t, GatewayConfig{
		LoginID:        "login5678",
		TransactionKey: "abcdefghijklmnop",
		TestMode:       true,
		DevMode:        true,
		API:            APICIM,
		ValidationMode: ValidationModeTest,
	}, cfg)
}

func TestValidateGatewaySettings_Defaults(t *testing.T) {
	settings, errs := ValidateGatewaySettings(map[string]string{
		KeyLoginID:        "login",
		KeyTransactionKey: "abcdefghijklmnop",
	})
	require.Empty(t, errs)

	cfg, err := settings.GatewayConfig()
	require.NoError(t, err)
	assert.False(t, cfg.TestMode)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, APIAIM, cfg.API)
	assert.Equal(t, ValidationModeNone, cfg.ValidationMode)
}

func TestValidateGatewaySettings_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		key         string
		value       string
		wantMessage string
	}{
		{name: "empty login", key: KeyLoginID, value: "", wantMessage: "must be between 1 and 20 characters"},
		{name: "long login", key: KeyLoginID, value: strings.Repeat("a", 21), wantMessage: "must be between 1 and 20 characters"},
		{name: "short key", key: KeyTransactionKey, value: "abc", wantMessage: "must be exactly 16 characters"},
		{name: "long key", key: KeyTransactionKey, value: strings.Repeat("k", 17), wantMessage: "must be exactly 16 characters"},
		{name: "bad api", key: KeyAPI, value: "arb", wantMessage: "must be one of: aim, cim"},
		{name: "bad test mode", key: KeyTestMode, value: "yes", wantMessage: "must be one of: true, false"},
		{name: "bad validation mode", key: KeyValidationMode, value: "strict", wantMessage: "must be one of: none, testMode, liveMode"},
		{name: "empty test mode", key: KeyTestMode, value: "", wantMessage: "must be one of: true, false"},
		{name: "empty dev mode", key: KeyDevMode, value: "", wantMessage: "must be one of: true, false"},
		{name: "empty api", key: KeyAPI, value: "", wantMessage: "must be one of: aim, cim"},
		{name: "empty validation mode", key: KeyValidationMode, value: "", wantMessage: "must be one of: none, testMode, liveMode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			input[tt.key] = tt.value

			settings, errs := ValidateGatewaySettings(input)

			require.Len(t, errs, 1)
			fe := errs.Field(tt.key)
			require.NotNil(t, fe, "expected an error for %s", tt.key)
			assert.Equal(t, tt.wantMessage, fe.Message)
			// submitted values round-trip so the form can be redisplayed
			assert.Equal(t, tt.value, settings.Map()[tt.key])

			_, err := settings.GatewayConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidateGatewaySettings_ReportsEveryField(t *testing.T) {
	_, errs := ValidateGatewaySettings(map[string]string{KeyAPI: "x"})

	assert.NotNil(t, errs.Field(KeyLoginID))
	assert.NotNil(t, errs.Field(KeyTransactionKey))
	assert.NotNil(t, errs.Field(KeyAPI))
	assert.Len(t, errs, 3)
}

func TestGatewayConfig_NeverLogsSecrets(t *testing.T) {
	cfg := GatewayConfig{LoginID: "login5678", TransactionKey: "abcdefghijklmnop", API: APIAIM, ValidationMode: ValidationModeNone}

	for _, s := range []string{cfg.String(), fmt.Sprint(cfg), fmt.Sprintf("%v", cfg)} {
		assert.NotContains(t, s, "abcdefghijklmnop")
		assert.NotContains(t, s, "login5678")
		assert.Contains(t, s, "****5678")
	}

	core, logs := observer.New(zapcore.InfoLevel)
	zap.New(core).Info("configured", zap.Object("gateway", cfg))

	encoded, err := json.Marshal(logs.All()[0].ContextMap())
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "abcdefghijklmnop")
	assert.Contains(t, string(encoded), "****5678")
}
