package ics

import (
	"context"
	"errors"
	"time"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Store is the appointment source for the rest of the application: it
// merges occurrences expanded from the subscribed feeds with the raw
// records declared inline in the config file. It holds no parsed state
// of its own; freshness comes from the fetcher's HTTP cache, which both
// the cron refresh loop and on-demand requests share.
type Store struct {
	fetcher *Fetcher
	sources []Source
	inline  []model.Appointment
}

// NewStore builds a Store over the given feeds and inline records.
func NewStore(fetcher *Fetcher, sources []Source, inline []model.Appointment) *Store {
	return &Store{
		fetcher: fetcher,
		sources: sources,
		inline:  inline,
	}
}

// Refresh warms the fetch cache for every feed. Used by the cron loop;
// individual feed failures are logged and aggregated, not fatal.
func (s *Store) Refresh(ctx context.Context) error {
	if len(s.sources) == 0 {
		return nil
	}
	_, errs := s.fetcher.FetchAll(ctx, s.sources)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Appointments returns the raw appointment records for the given
// window: feed occurrences expanded into [rangeStart, rangeEnd] plus all
// inline records (inline records are few and window filtering happens
// downstream anyway). The second return lists UIDs whose recurrence
// expansion was truncated.
func (s *Store) Appointments(ctx context.Context, rangeStart, rangeEnd time.Time) ([]model.Appointment, []string, error) {
	out := make([]model.Appointment, 0, len(s.inline))
	out = append(out, s.inline...)

	if len(s.sources) == 0 {
		return out, nil, nil
	}

	results, fetchErrs := s.fetcher.FetchAll(ctx, s.sources)
	if len(fetchErrs) > 0 {
		appLog.Error("store: some feeds failed to fetch", errors.Join(fetchErrs...), "failed", len(fetchErrs))
	}

	feedEvents := make([]FeedEvent, 0)
	for _, res := range results {
		events, err := ParseFeed(res.Source, res.Body)
		if err != nil {
			// Already logged by ParseFeed; keep the other feeds.
			continue
		}
		feedEvents = append(feedEvents, events...)
	}

	expanded, err := ExpandOccurrences(feedEvents, ExpandConfig{
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		return out, nil, err
	}

	out = append(out, expanded.Appointments...)
	return out, expanded.TruncatedUIDs, nil
}
