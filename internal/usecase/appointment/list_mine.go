package appointment

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/iter"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/domain/order"
	"github.com/BruksfildServices01/petcare-scheduler/internal/dto"
)

type ListMyAppointments struct {
	repo domain.Repository
}

func NewListMyAppointments(repo domain.Repository) *ListMyAppointments {
	return &ListMyAppointments{repo: repo}
}

type userList struct {
	records []domain.Record
	err     error
}

// Execute merges the caller's appointments across every service, ordered
// by date and then start minute. Any failing service fails the listing.
func (uc *ListMyAppointments) Execute(
	ctx context.Context,
	token string,
) ([]dto.MyAppointmentDTO, error) {

	mapper := iter.Mapper[domain.Service, userList]{MaxGoroutines: len(domain.Services)}
	lists := mapper.Map(domain.Services, func(svc *domain.Service) userList {
		recs, err := uc.repo.ListForUser(ctx, token, *svc)
		return userList{records: recs, err: err}
	})

	out := []dto.MyAppointmentDTO{}
	for i, l := range lists {
		svc := domain.Services[i]
		if l.err != nil {
			return nil, fmt.Errorf("list %s appointments: %w", svc, l.err)
		}
		for _, rec := range l.records {
			out = append(out, dto.MyAppointmentDTO{
				Record:        rec,
				Service:       svc,
				PaymentStatus: rec.PaymentLabel(),
				DisplayTitle:  rec.DisplayTitle(svc),
				TimeRange:     rec.TimeRange(svc),
				LineTotal:     order.LineTotal(svc, rec),
				Locked:        rec.NormalizedStatus().IsLocked(),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Day(""), out[j].Day("")
		if di != dj {
			return di < dj
		}
		return out[i].SortMinute() < out[j].SortMinute()
	})
	return out, nil
}
