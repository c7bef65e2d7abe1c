package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SettingRecord is one persisted gateway setting. Credential values are
// stored sealed and flagged Encrypted.
type SettingRecord struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}

// ValueSealer encrypts and decrypts single setting values
type ValueSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// encryptedKeys are never persisted in cleartext
var encryptedKeys = map[string]bool{
	KeyLoginID:        true,
	KeyTransactionKey: true,
}

// SealGatewaySettings converts settings into records, sealing credentials
func SealGatewaySettings(settings GatewaySettings, sealer ValueSealer) ([]SettingRecord, error) {
	values := settings.Map()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]SettingRecord, 0, len(keys))
	for _, key := range keys {
		record := SettingRecord{Key: key, Value: values[key]}
		if encryptedKeys[key] {
			sealed, err := sealer.Seal(values[key])
			if err != nil {
				return nil, fmt.Errorf("failed to seal %s: %w", key, err)
			}
			record.Value = sealed
			record.Encrypted = true
		}
		records = append(records, record)
	}
	return records, nil
}

// OpenGatewaySettings reverses SealGatewaySettings
func OpenGatewaySettings(records []SettingRecord, sealer ValueSealer) (GatewaySettings, error) {
	values := make(map[string]string, len(records))
	for _, record := range records {
		value := record.Value
		if record.Encrypted {
			opened, err := sealer.Open(record.Value)
			if err != nil {
				return GatewaySettings{}, fmt.Errorf("failed to open %s: %w", record.Key, err)
			}
			value = opened
		} else if encryptedKeys[record.Key] {
			return GatewaySettings{}, fmt.Errorf("setting %s must be stored encrypted", record.Key)
		}
		values[record.Key] = value
	}
	return NewGatewaySettings(values), nil
}

// LoadGatewayConfig reads, opens and validates a sealed settings file
func LoadGatewayConfig(path string, sealer ValueSealer) (GatewayConfig, error) {
	records, err := ReadSettingRecords(path)
	if err != nil {
		return GatewayConfig{}, err
	}
	settings, err := OpenGatewaySettings(records, sealer)
	if err != nil {
		return GatewayConfig{}, err
	}
	return settings.GatewayConfig()
}

// ReadSettingRecords loads setting records from a JSON file
func ReadSettingRecords(path string) ([]SettingRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}
	var records []SettingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return records, nil
}

// WriteSettingRecords writes setting records to a JSON file readable only by
// the owner.
func WriteSettingRecords(path string, records []SettingRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}
