package calendar

import (
	"context"
	"log"
	"time"

	"github.com/sourcegraph/conc/iter"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
)

// DayResult is one civil day's merged events. Failed lists the services
// whose request failed and therefore contributed nothing.
type DayResult struct {
	Date   string
	Events []domain.Event
	Failed []domain.Service
}

type FetchDay struct {
	source domain.Source
	loc    *time.Location
}

func NewFetchDay(
	source domain.Source,
	loc *time.Location,
) *FetchDay {
	return &FetchDay{
		source: source,
		loc:    loc,
	}
}

type serviceResult struct {
	events []domain.Event
	failed bool
}

// Execute issues the three per-service requests at once and waits for all
// of them. A failing service degrades to zero events; it never fails the day.
func (uc *FetchDay) Execute(ctx context.Context, ymd string) DayResult {
	mapper := iter.Mapper[domain.Service, serviceResult]{MaxGoroutines: len(domain.Services)}
	results := mapper.Map(domain.Services, func(svc *domain.Service) serviceResult {
		return uc.fetchService(ctx, *svc, ymd)
	})

	out := DayResult{Date: ymd, Events: []domain.Event{}}
	for i, res := range results {
		if res.failed {
			out.Failed = append(out.Failed, domain.Services[i])
			continue
		}
		out.Events = append(out.Events, res.events...)
	}
	return out
}

func (uc *FetchDay) fetchService(ctx context.Context, svc domain.Service, ymd string) serviceResult {
	records, err := uc.source.ListByDate(ctx, svc, ymd)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[calendar] %s appointments for %s unavailable: %v", svc, ymd, err)
		}
		return serviceResult{failed: true}
	}

	events := make([]domain.Event, 0, len(records))
	for _, rec := range records {
		if !domain.Active(rec) {
			continue
		}
		ev, err := domain.NewEvent(rec, svc, ymd, uc.loc)
		if err != nil {
			log.Printf("[calendar] skipping record: %v", err)
			continue
		}
		events = append(events, ev)
	}
	return serviceResult{events: events}
}
