package config

import "fmt"

// SinkConfig describes one metrics sink.
type SinkConfig struct {
	// Type is "nop", "prometheus" or "influx".
	Type string `json:"type"`

	// InfluxDB connection parameters, used when Type is "influx".
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// MetricsConfig lists the metrics sinks and the Prometheus exposition
// endpoint.
type MetricsConfig struct {
	Sinks []SinkConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the server.
	PrometheusAddr string `json:"prometheus_addr"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "prometheus"}}
	}
}

// Validate checks the sink types.
func (c MetricsConfig) Validate() error {
	for _, s := range c.Sinks {
		switch s.Type {
		case "nop", "prometheus":
		case "influx":
			if s.URL == "" {
				return fmt.Errorf("metrics: influx sink requires a url")
			}
		default:
			return fmt.Errorf("metrics: unknown sink type %s", s.Type)
		}
	}
	return nil
}
