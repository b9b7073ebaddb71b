package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter       metric.Int64Counter
	RequestDuration      metric.Float64Histogram
	QuestionsAnswered    metric.Int64Counter
	RetrievalDuration    metric.Float64Histogram
	CompressionFallbacks metric.Int64Counter
	IngestDuration       metric.Float64Histogram
	CircuitBreakerState  metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("university-faq-assistant")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	questionsAnswered, err := meter.Int64Counter(
		"faq.questions.total",
		metric.WithDescription("Questions answered, by outcome"),
	)
	if err != nil {
		return nil, err
	}

	retrievalDuration, err := meter.Float64Histogram(
		"faq.retrieval.duration",
		metric.WithDescription("Top-K retrieval duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	compressionFallbacks, err := meter.Int64Counter(
		"ingest.compression.fallbacks",
		metric.WithDescription("Chunks that fell back to identity compression"),
	)
	if err != nil {
		return nil, err
	}

	ingestDuration, err := meter.Float64Histogram(
		"ingest.run.duration",
		metric.WithDescription("Full ingestion run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:       requestCounter,
		RequestDuration:      requestDuration,
		QuestionsAnswered:    questionsAnswered,
		RetrievalDuration:    retrievalDuration,
		CompressionFallbacks: compressionFallbacks,
		IngestDuration:       ingestDuration,
		CircuitBreakerState:  circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordQuestion records the outcome of one answered question.
func (m *Metrics) RecordQuestion(outcome string) {
	m.QuestionsAnswered.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("faq.outcome", outcome)))
}

// RecordRetrieval records top-K retrieval latency.
func (m *Metrics) RecordRetrieval(duration float64, hits int) {
	m.RetrievalDuration.Record(context.Background(), duration,
		metric.WithAttributes(attribute.Int("faq.hits", hits)))
}

// RecordCompressionFallbacks counts identity fallbacks in one ingest run.
func (m *Metrics) RecordCompressionFallbacks(count int64) {
	m.CompressionFallbacks.Add(context.Background(), count)
}

// RecordIngestRun records the duration and outcome of an ingestion run.
func (m *Metrics) RecordIngestRun(duration float64, status string) {
	m.IngestDuration.Record(context.Background(), duration,
		metric.WithAttributes(attribute.String("ingest.status", status)))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
