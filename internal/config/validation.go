// Package config provides configuration management for the prediction engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// validateCrossField applies validations spanning multiple fields
func validateCrossField(cfg *Config) error {
	start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
	if err != nil {
		return fmt.Errorf("invalid backtest start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
	if err != nil {
		return fmt.Errorf("invalid backtest end date: %w", err)
	}
	if start.After(end) {
		return fmt.Errorf("backtest start date %s is after end date %s", cfg.Backtest.StartDate, cfg.Backtest.EndDate)
	}

	if cfg.Scheduler.Enabled {
		if cfg.Scheduler.PredictionSchedule == "" && cfg.Scheduler.BacktestSchedule == "" {
			return fmt.Errorf("scheduler enabled but no schedules configured")
		}
	}

	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		messages = append(messages, fmt.Sprintf("%s failed %s validation", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
