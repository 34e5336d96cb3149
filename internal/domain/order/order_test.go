package order

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

func record(t *testing.T, raw string) domain.Record {
	t.Helper()
	var rec domain.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestKeyify(t *testing.T) {
	assert.Equal(t, "general-health-checkup", Keyify("General Health Checkup"))
	assert.Equal(t, "flea-tick", Keyify("flea-tick"))
	assert.Equal(t, "basic-bath--brush", Keyify("Basic Bath & Brush"))
	assert.Equal(t, "", Keyify(""))
}

func TestBasePrice_LookupOrder(t *testing.T) {
	assert.Equal(t, 6500.0, BasePrice(domain.ServiceGrooming, record(t, `{"packageId": "full-grooming", "title": "Nail Trim"}`)))
	assert.Equal(t, 7500.0, BasePrice(domain.ServiceVet, record(t, `{"selectedService": "General Health Checkup"}`)))
	assert.Equal(t, 3000.0, BasePrice(domain.ServiceDaycare, record(t, `{"packageName": "half-day"}`)))
	assert.Zero(t, BasePrice(domain.ServiceVet, record(t, `{"title": "Dental"}`)))
	assert.Zero(t, BasePrice(domain.ServiceVet, record(t, `{"packageId": "full-grooming"}`)))
}

func TestLineTotal_AddsExtras(t *testing.T) {
	rec := record(t, `{"packageId": "nail-trim", "extras": [{"name": "Bow", "price": 250}, {"name": "Perfume", "price": 400.5}]}`)
	assert.Equal(t, 2150.5, LineTotal(domain.ServiceGrooming, rec))
}

func TestBuild(t *testing.T) {
	o, err := Build([]Entry{
		{Service: domain.ServiceGrooming, Record: record(t, `{"_id": "g1", "packageId": "premium-spa", "dateISO": "2024-06-12", "timeSlotMinutes": 600}`)},
		{Service: domain.ServiceDaycare, Record: record(t, `{"id": "d1", "packageId": "full-day", "date": "2024-06-13",
			"dropOffMinutes": 480, "pickUpMinutes": 960, "extras": [{"name": "Bath", "price": 1000}]}`)},
	})
	require.NoError(t, err)

	assert.Equal(t, "LKR", o.Currency)
	assert.Equal(t, SlipNote, o.Note)
	assert.Equal(t, 9500.0+5500+1000, o.Subtotal)
	require.Len(t, o.Items, 2)

	assert.Equal(t, Line{
		ID: "g1", Service: domain.ServiceGrooming, Title: "premium-spa", Date: "2024-06-12",
		Time: "10:00–11:30", BasePrice: 9500, Extras: []domain.Extra{}, LineTotal: 9500,
	}, o.Items[0])
	assert.Equal(t, "08:00–16:00", o.Items[1].Time)
	assert.Equal(t, 6500.0, o.Items[1].LineTotal)
}

func TestBuild_Rejections(t *testing.T) {
	_, err := Build(nil)
	assert.True(t, httperr.IsBusiness(err, "order_empty"))

	_, err = Build([]Entry{{Service: domain.ServiceVet, Record: record(t, `{"_id": "v", "status": "cancelled"}`)}})
	assert.ErrorIs(t, err, ErrItemLocked)

	_, err = Build([]Entry{{Service: domain.ServiceVet, Record: record(t, `{"_id": "v", "payment": {"status": "Success"}}`)}})
	assert.ErrorIs(t, err, ErrItemPaid)
}
