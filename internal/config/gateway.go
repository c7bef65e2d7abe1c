package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zapcore"

	pkgerrors "github.com/kevin07696/merchant-gateway/pkg/errors"
	"github.com/kevin07696/merchant-gateway/pkg/security"
)

// API selects the processor interface a gateway talks to
type API string

const (
	APIAIM API = "aim" // direct, form-encoded
	APICIM API = "cim" // stored profiles, XML
)

// ValidationMode controls how the profile API verifies a payment profile
// when it is created or updated.
type ValidationMode string

const (
	ValidationModeNone ValidationMode = "none"
	ValidationModeTest ValidationMode = "testMode"
	ValidationModeLive ValidationMode = "liveMode"
)

// Setting keys as submitted by the settings form and persisted as meta records
const (
	KeyLoginID        = "login_id"
	KeyTransactionKey = "transaction_key"
	KeyTestMode       = "test_mode"
	KeyDevMode        = "dev_mode"
	KeyAPI            = "api"
	KeyValidationMode = "validation_mode"
)

// GatewayConfig is the validated credential and mode bundle of one merchant
// gateway. It is immutable once handed to a gateway.
type GatewayConfig struct {
	LoginID        string
	TransactionKey string
	TestMode       bool
	DevMode        bool
	API            API
	ValidationMode ValidationMode
}

// String never reveals the transaction key and shows only the last four
// characters of the login id.
func (c GatewayConfig) String() string {
	return fmt.Sprintf("GatewayConfig{LoginID:%s TransactionKey:%s TestMode:%t DevMode:%t API:%s ValidationMode:%s}",
		security.MaskString(c.LoginID, 4),
		security.MaskString(c.TransactionKey, 0),
		c.TestMode, c.DevMode, c.API, c.ValidationMode)
}

// MarshalLogObject implements zapcore.ObjectMarshaler with the same masking
// as String.
func (c GatewayConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("login_id", security.MaskString(c.LoginID, 4))
	enc.AddString("transaction_key", security.MaskString(c.TransactionKey, 0))
	enc.AddBool("test_mode", c.TestMode)
	enc.AddBool("dev_mode", c.DevMode)
	enc.AddString("api", string(c.API))
	enc.AddString("validation_mode", string(c.ValidationMode))
	return nil
}

// GatewaySettings is the submitted, string-valued form of a GatewayConfig.
// It always carries exactly what the caller sent, defaults aside, whether or
// not it validates.
type GatewaySettings struct {
	LoginID        string `json:"login_id" validate:"min=1,max=20"`
	TransactionKey string `json:"transaction_key" validate:"len=16"`
	TestMode       string `json:"test_mode" validate:"oneof=true false"`
	DevMode        string `json:"dev_mode" validate:"oneof=true false"`
	API            string `json:"api" validate:"oneof=aim cim"`
	ValidationMode string `json:"validation_mode" validate:"oneof=none testMode liveMode"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their setting key rather than the Go field name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewGatewaySettings reads settings from submitted key/value pairs, applying
// defaults for absent optional keys.
func NewGatewaySettings(input map[string]string) GatewaySettings {
	return GatewaySettings{
		LoginID:        input[KeyLoginID],
		TransactionKey: input[KeyTransactionKey],
		TestMode:       valueOr(input, KeyTestMode, "false"),
		DevMode:        valueOr(input, KeyDevMode, "false"),
		API:            valueOr(input, KeyAPI, string(APIAIM)),
		ValidationMode: valueOr(input, KeyValidationMode, string(ValidationModeNone)),
	}
}

// ValidateGatewaySettings validates submitted settings. The returned settings
// hold the submitted values even when validation fails; the error list is
// the only signal that they must not be used.
func ValidateGatewaySettings(input map[string]string) (GatewaySettings, pkgerrors.ValidationErrors) {
	settings := NewGatewaySettings(input)
	return settings, settings.Validate()
}

// Validate checks every field and returns one error per failing field
func (s GatewaySettings) Validate() pkgerrors.ValidationErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return pkgerrors.ValidationErrors{pkgerrors.NewValidationError("settings", err.Error())}
	}

	errs := make(pkgerrors.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, pkgerrors.NewValidationError(fe.Field(), validationMessage(fe)))
	}
	return errs
}

// GatewayConfig converts validated settings into a GatewayConfig
func (s GatewaySettings) GatewayConfig() (GatewayConfig, error) {
	if errs := s.Validate(); len(errs) > 0 {
		return GatewayConfig{}, errs
	}
	return GatewayConfig{
		LoginID:        s.LoginID,
		TransactionKey: s.TransactionKey,
		TestMode:       s.TestMode == "true",
		DevMode:        s.DevMode == "true",
		API:            API(s.API),
		ValidationMode: ValidationMode(s.ValidationMode),
	}, nil
}

// Map returns the settings as key/value pairs
func (s GatewaySettings) Map() map[string]string {
	return map[string]string{
		KeyLoginID:        s.LoginID,
		KeyTransactionKey: s.TransactionKey,
		KeyTestMode:       s.TestMode,
		KeyDevMode:        s.DevMode,
		KeyAPI:            s.API,
		KeyValidationMode: s.ValidationMode,
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case KeyLoginID:
		return "must be between 1 and 20 characters"
	case KeyTransactionKey:
		return "must be exactly 16 characters"
	}
	if fe.Tag() == "oneof" {
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// valueOr returns fallback only when key was not submitted. An explicit
// empty value is kept so validation reports it.
func valueOr(input map[string]string, key, fallback string) string {
	if v, ok := input[key]; ok {
		return v
	}
	return fallback
}
