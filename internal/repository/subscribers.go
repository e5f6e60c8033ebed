package repository

import (
	"context"
	"fmt"

	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
)

// SubscriberRepository handles SMS subscriber database operations
type SubscriberRepository struct {
	db *Database
}

// ListActive returns active subscribers whose configured minimum confidence
// is at or below the given score (no minimum means always eligible)
func (r *SubscriberRepository) ListActive(ctx context.Context, confidence float64) ([]*models.Subscriber, error) {
	query := `
		SELECT id, phone_number, min_confidence, is_active, created_at
		FROM sms_subscribers
		WHERE is_active = TRUE
		  AND (min_confidence IS NULL OR min_confidence <= $1)
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query, confidence)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscriber
	for rows.Next() {
		var sub models.Subscriber
		err := rows.Scan(&sub.ID, &sub.PhoneNumber, &sub.MinConfidence, &sub.IsActive, &sub.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subs = append(subs, &sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}

	return subs, nil
}
