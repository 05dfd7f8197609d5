package cli

import (
	"fmt"
	"time"
)

// maxETA caps the displayed estimate.
const maxETA = 24 * time.Hour

// ProgressWithETA extends ProgressState with a remaining-time estimate
// derived from an exponentially smoothed progress rate.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // progress per second
}

// NewProgressWithETA tracks numMultipliers progress values with ETA.
func NewProgressWithETA(numMultipliers int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numMultipliers),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records a progress value and returns the new average and
// the estimated remaining time, 0 while no estimate is available.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()

	now := time.Now()
	elapsed := now.Sub(p.startTime)
	if elapsed < 100*time.Millisecond || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate).Seconds(); since > 0.05 {
		if delta := progress - p.lastProgress; delta > 0 {
			if p.progressRate > 0 {
				p.progressRate = 0.7*p.progressRate + 0.3*(delta/since)
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}
	return progress, p.estimate(progress)
}

// GetETA returns the current estimate without recording progress.
func (p *ProgressWithETA) GetETA() time.Duration {
	return p.estimate(p.CalculateAverage())
}

func (p *ProgressWithETA) estimate(progress float64) time.Duration {
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	if eta > maxETA {
		eta = maxETA
	}
	return eta
}

// FormatETA renders an estimate as "< 1s", "42s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		m, s := int(eta.Minutes()), int(eta.Seconds())%60
		if s > 0 {
			return fmt.Sprintf("%dm%ds", m, s)
		}
		return fmt.Sprintf("%dm", m)
	}
	h, m := int(eta.Hours()), int(eta.Minutes())%60
	if m > 0 {
		return fmt.Sprintf("%dh%dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
