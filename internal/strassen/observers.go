package strassen

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ChannelObserver forwards progress to a channel without ever blocking the
// engine: an update is dropped when the channel is full.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer writing to ch.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver.
func (o *ChannelObserver) Update(multiplierIndex int, progress float64) {
	if o.channel == nil {
		return
	}
	if progress > 1.0 {
		progress = 1.0
	}

	select {
	case o.channel <- ProgressUpdate{MultiplierIndex: multiplierIndex, Value: progress}:
	default:
	}
}

// LoggingObserver logs progress at debug level, throttled so that a message
// is emitted only when progress moved by at least threshold.
type LoggingObserver struct {
	logger    zerolog.Logger
	threshold float64
	lastLog   map[int]float64
	mu        sync.Mutex
}

// NewLoggingObserver creates a logging observer. A non-positive threshold
// selects ProgressReportThreshold.
func NewLoggingObserver(logger zerolog.Logger, threshold float64) *LoggingObserver {
	if threshold <= 0 {
		threshold = ProgressReportThreshold
	}
	return &LoggingObserver{
		logger:    logger,
		threshold: threshold,
		lastLog:   make(map[int]float64),
	}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(multiplierIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	last := o.lastLog[multiplierIndex]
	shouldLog := progress >= 1.0 ||
		last == 0 && progress > 0 ||
		progress-last >= o.threshold

	if shouldLog {
		o.logger.Debug().
			Int("multiplier", multiplierIndex).
			Float64("progress", progress).
			Str("percent", fmt.Sprintf("%.1f%%", progress*100)).
			Msg("multiplication progress")
		o.lastLog[multiplierIndex] = progress
	}
}

var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "strassen_multiplication_progress",
		Help: "Current progress of running multiplications (0.0 to 1.0)",
	},
	[]string{"multiplier_index"},
)

// MetricsObserver exports progress as a Prometheus gauge.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
}

// NewMetricsObserver creates an observer backed by the shared progress gauge.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge}
}

// Update implements ProgressObserver.
func (o *MetricsObserver) Update(multiplierIndex int, progress float64) {
	o.gauge.WithLabelValues(strconv.Itoa(multiplierIndex)).Set(progress)
}

// ResetMetrics clears all gauge values.
func (o *MetricsObserver) ResetMetrics() {
	o.gauge.Reset()
}

// NoOpObserver discards every update.
type NoOpObserver struct{}

// NewNoOpObserver creates a NoOpObserver.
func NewNoOpObserver() *NoOpObserver {
	return &NoOpObserver{}
}

// Update implements ProgressObserver.
func (o *NoOpObserver) Update(int, float64) {}
