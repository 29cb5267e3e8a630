// Package metrics exposes the station's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/weather_station/internal/upload"
)

type Metrics struct {
	registry       *prometheus.Registry
	samplesTotal   prometheus.Counter
	temperature    prometheus.Gauge
	humidity       prometheus.Gauge
	pressure       prometheus.Gauge
	cpuTemperature prometheus.Gauge
	uploadsTotal   *prometheus.CounterVec
	uploadDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		samplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_samples_total",
			Help: "Total sensor samples taken.",
		}),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_temperature_celsius",
			Help: "Latest corrected ambient temperature.",
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_humidity_percent",
			Help: "Latest relative humidity.",
		}),
		pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_pressure_hpa",
			Help: "Latest barometric pressure.",
		}),
		cpuTemperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "weather_cpu_temperature_celsius",
			Help: "CPU temperature used for compensation.",
		}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_uploads_total",
			Help: "Upload attempts by sink and outcome.",
		}, []string{"sink", "status"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_upload_duration_seconds",
			Help:    "Duration of completed upload attempts by sink.",
			Buckets: prometheus.DefBuckets,
		}, []string{"sink"}),
	}

	m.registry.MustRegister(
		m.samplesTotal,
		m.temperature,
		m.humidity,
		m.pressure,
		m.cpuTemperature,
		m.uploadsTotal,
		m.uploadDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveSample records one completed sample.
func (m *Metrics) ObserveSample(tempC, humidity, pressure, cpuTemp float64) {
	m.samplesTotal.Inc()
	m.temperature.Set(tempC)
	m.humidity.Set(humidity)
	m.pressure.Set(pressure)
	m.cpuTemperature.Set(cpuTemp)
}

// ObserveUpload records an upload result. Dropped attempts never ran, so
// they are counted but not timed.
func (m *Metrics) ObserveUpload(r upload.Result) {
	m.uploadsTotal.WithLabelValues(r.Target, r.Status.String()).Inc()
	if r.Status != upload.StatusDropped {
		m.uploadDuration.WithLabelValues(r.Target).Observe(r.Duration.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
