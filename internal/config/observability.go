package config

// ObservabilityConfig holds observability configuration. The OTLP
// endpoint and resource attributes come from the standard OTEL_* env
// vars read by the SDK itself.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"CADENCE_OTEL_ENABLED"`
	ServiceName string `env:"OTEL_SERVICE_NAME"`
}
