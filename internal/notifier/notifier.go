package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"

	"github.com/rs/zerolog/log"
)

// maxBodyLen caps the SMS body length for carrier safety
const maxBodyLen = 1500

// HalftimeAlert carries everything needed to format a halftime message
type HalftimeAlert struct {
	GameID     string
	HomeName   string
	AwayName   string
	HomeScore  int
	AwayScore  int
	HomeProb   float64
	Confidence float64
	Bucket     string

	Margin          int
	HQS             *float64
	ShootingExtreme *bool
}

// BuildMessage formats a concise halftime alert body
func BuildMessage(a HalftimeAlert) string {
	lines := []string{
		fmt.Sprintf("[HALFTIME] %s @ %s", a.AwayName, a.HomeName),
		fmt.Sprintf("Score: %d-%d", a.AwayScore, a.HomeScore),
		fmt.Sprintf("Home win prob: %.1f%%", a.HomeProb*100),
		fmt.Sprintf("Confidence: %s (%.3f)", a.Bucket, a.Confidence),
		fmt.Sprintf("Margin (home): %d", a.Margin),
	}

	if a.HQS != nil {
		lines = append(lines, fmt.Sprintf("HQS: %.3f", *a.HQS))
	}
	if a.ShootingExtreme != nil {
		lines = append(lines, fmt.Sprintf("Shooting fluke: %t", *a.ShootingExtreme))
	}

	msg := strings.Join(lines, "\n")
	if len(msg) > maxBodyLen {
		msg = msg[:maxBodyLen]
	}
	return msg
}

// Sender dispatches one SMS message
type Sender interface {
	Send(to, body string) error
}

// SubscriberSource lists active subscribers eligible at a confidence score
type SubscriberSource interface {
	ListActive(ctx context.Context, confidence float64) ([]*models.Subscriber, error)
}

// Notifier gates and dispatches halftime alerts. Dispatch is fire-and-forget
// from the pipeline's perspective: per-recipient failures are logged and
// never propagated.
type Notifier struct {
	threshold   float64
	subscribers SubscriberSource
	sender      Sender // nil means SMS unconfigured: log the message instead
}

// New creates a notifier. Pass a nil sender to run in log-only mode.
func New(threshold float64, subscribers SubscriberSource, sender Sender) *Notifier {
	return &Notifier{
		threshold:   threshold,
		subscribers: subscribers,
		sender:      sender,
	}
}

// Notify dispatches the alert when confidence clears the raw threshold.
// Returns true when a delivery attempt (or the log fallback) was made.
func (n *Notifier) Notify(ctx context.Context, alert HalftimeAlert) bool {
	if alert.Confidence < n.threshold {
		return false
	}

	msg := BuildMessage(alert)

	if n.sender == nil {
		log.Info().
			Str("game_id", alert.GameID).
			Str("message", msg).
			Msg("SMS disabled, alert logged only")
		return true
	}

	subs, err := n.subscribers.ListActive(ctx, alert.Confidence)
	if err != nil {
		log.Error().Err(err).Str("game_id", alert.GameID).Msg("Failed to load subscribers")
		return true
	}

	for _, sub := range subs {
		if err := n.sender.Send(sub.PhoneNumber, msg); err != nil {
			metrics.NotificationFailures.Inc()
			log.Error().
				Err(err).
				Str("game_id", alert.GameID).
				Str("to", sub.PhoneNumber).
				Msg("SMS dispatch failed")
			continue
		}
		metrics.NotificationsSent.Inc()
		log.Debug().
			Str("game_id", alert.GameID).
			Str("to", sub.PhoneNumber).
			Msg("SMS sent")
	}

	return true
}
