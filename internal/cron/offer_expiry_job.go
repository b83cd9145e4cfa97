package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/anadolubroker/sigorta-backend/pkg/logger"
)

// OfferExpiryJobParams configure the overdue offer sweep.
type OfferExpiryJobParams struct {
	Logger *logger.Logger
	Offers expiredOfferSweeper
}

type expiredOfferSweeper interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// NewOfferExpiryJob builds the cron job that expires offers whose
// validity window has passed. Reads already promote stale offers on the
// fly; this sweep catches the ones nobody looked at.
func NewOfferExpiryJob(params OfferExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Offers == nil {
		return nil, fmt.Errorf("offers repository required")
	}
	return &offerExpiryJob{
		logg:   params.Logger,
		offers: params.Offers,
		now:    time.Now,
	}, nil
}

type offerExpiryJob struct {
	logg   *logger.Logger
	offers expiredOfferSweeper
	now    func() time.Time
}

func (j *offerExpiryJob) Name() string { return "offer-expiry" }

func (j *offerExpiryJob) Run(ctx context.Context) error {
	count, err := j.offers.ExpireDue(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire overdue offers: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "offer expiry sweep complete")
	return nil
}
