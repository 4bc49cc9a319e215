// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/robfig/cron/v3"
)

// Validator checks one aspect of the configuration
type Validator interface {
	Validate(cfg *Config) error
}

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	if cfg.Database.MaxConnections < cfg.Database.MinConnections {
		return fmt.Errorf("database max_connections must be >= min_connections")
	}

	if cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("redis pool_size must be positive")
	}

	if cfg.Security.RateLimitRequests <= 0 {
		return fmt.Errorf("rate_limit_requests must be positive")
	}

	return nil
}

// LedgerValidator checks ledger tuning values
type LedgerValidator struct{}

// Validate performs ledger validation
func (v *LedgerValidator) Validate(cfg *Config) error {
	l := cfg.Ledger

	switch l.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("ledger store must be postgres or memory, got %q", l.Store)
	}

	switch l.SweepMode {
	case "worker", "inprocess", "off":
	default:
		return fmt.Errorf("ledger sweep mode must be worker, inprocess or off, got %q", l.SweepMode)
	}

	if l.RetryAttempts < 1 {
		return fmt.Errorf("ledger retry attempts must be at least 1")
	}
	if l.RetryInitialInterval <= 0 || l.RetryMaxInterval < l.RetryInitialInterval {
		return fmt.Errorf("ledger retry intervals must be positive and max >= initial")
	}
	if l.SweepInterval <= 0 {
		return fmt.Errorf("ledger sweep interval must be positive")
	}
	if l.SweepBatchSize <= 0 {
		return fmt.Errorf("ledger sweep batch size must be positive")
	}
	if l.DefaultReservationTTL < 0 {
		return fmt.Errorf("default reservation ttl must not be negative")
	}
	if l.SnapshotSchedule != "" {
		if _, err := cron.ParseStandard(l.SnapshotSchedule); err != nil {
			return fmt.Errorf("invalid snapshot schedule %q: %w", l.SnapshotSchedule, err)
		}
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if cfg.Secrets.Provider != "aws" && (cfg.Database.Password == "" || strings.HasPrefix(cfg.Database.Password, "MISSING_")) {
		return fmt.Errorf("%w: database password", ErrMissingRequiredConfig)
	}

	if cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("database SSL must be enabled in production")
	}

	if cfg.Ledger.Store != "postgres" {
		return fmt.Errorf("the memory ledger store cannot be used in production")
	}

	if !cfg.Security.SecureHeaders {
		return fmt.Errorf("secure headers must be enabled in production")
	}

	for _, origin := range cfg.Security.AllowedOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard origin (*) not allowed in production")
		}
	}

	if cfg.Server.TLSEnabled {
		if cfg.Server.TLSCertFile == "" || cfg.Server.TLSKeyFile == "" {
			return fmt.Errorf("TLS cert and key files must be provided when TLS is enabled")
		}
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
