package dashboard

import (
	"context"
	"sync/atomic"
	"time"

	"pos-analytics/analytics"
	"pos-analytics/models"
)

// PublishFunc receives the reports of one refresh. seq increases with every
// refresh started; a slow refresh may publish after a newer one.
type PublishFunc func(seq uint64, reports []*Report, err error)

// Refresher reloads every section on a fixed interval for one session.
// Overlapping refreshes are not cancelled and whichever publishes last wins.
type Refresher struct {
	dash     *Dashboard
	session  *models.Session
	interval time.Duration
	resolve  func(now time.Time) analytics.Range
	publish  PublishFunc
	seq      atomic.Uint64
}

// NewRefresher refreshes the range resolve returns for the current time.
func NewRefresher(d *Dashboard, session *models.Session, interval time.Duration, resolve func(time.Time) analytics.Range, publish PublishFunc) *Refresher {
	return &Refresher{
		dash:     d,
		session:  session,
		interval: interval,
		resolve:  resolve,
		publish:  publish,
	}
}

// Refresh loads every section once and publishes the result.
func (r *Refresher) Refresh(ctx context.Context) {
	seq := r.seq.Add(1)
	reports, err := r.dash.LoadAll(ctx, r.session, r.resolve(r.dash.opts.Now()))
	r.publish(seq, reports, err)
}

// Run refreshes immediately and then on every tick until ctx is done. A
// non-positive interval refreshes once.
func (r *Refresher) Run(ctx context.Context) {
	go r.Refresh(ctx)
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go r.Refresh(ctx)
		}
	}
}
