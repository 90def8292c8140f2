package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProcurement is the structured log field key for a procurement id.
	FieldProcurement = "procurement_id"
	// FieldView is the structured log field key for the active portal view.
	FieldView = "view"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Component returns a named child logger carrying the given fields.
// Empty field values are dropped.
func Component(logger *zap.Logger, name string, fields ...StringField) *zap.Logger {
	logger = OrNop(logger)
	if name = strings.TrimSpace(name); name != "" {
		logger = logger.Named(name)
	}

	extra := StringFields(fields...)
	if len(extra) == 0 {
		return logger
	}

	return logger.With(extra...)
}

// WithAI attaches the AI provider and model to the logger.
func WithAI(logger *zap.Logger, provider, model string) *zap.Logger {
	return Component(logger, "",
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
