package metrics

// Package metrics defines the iteration statistics recorded after every
// iteration of a run and the Sink interface that receives them. Sinks such as
// the Prometheus, InfluxDB and MQTT ones live in infra packages and register
// themselves by name; NewSink combines several configured sinks into a
// MultiSink.
