package booking

import (
	"time"

	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/validators"
)

// ===============================
// Vet
// ===============================

type VetBooking struct {
	OwnerName       string `json:"ownerName" validate:"required,min=2,max=60,person_name"`
	OwnerEmail      string `json:"ownerEmail" validate:"required,email,max=254,not_disposable"`
	OwnerPhone      string `json:"ownerPhone" validate:"required,lk_phone"`
	PetType         string `json:"petType" validate:"required,oneof=Dog Cat Rabbit Bird Other"`
	PetSize         string `json:"petSize" validate:"required,oneof=small medium large"`
	Reason          string `json:"reason" validate:"required,min=5,max=300"`
	Date            string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot        int    `json:"timeSlot" validate:"min=480,max=1200"`
	Notes           string `json:"notes" validate:"max=500"`
	SelectedService string `json:"selectedService"`
	SelectedPrice   string `json:"selectedPrice"`
}

func (b *VetBooking) Service() domain.Service { return domain.ServiceVet }

func (b *VetBooking) Normalize() {
	b.OwnerName = trim(b.OwnerName)
	b.OwnerEmail = normalizeEmail(b.OwnerEmail)
	b.OwnerPhone = validators.NormalizeLKPhone(b.OwnerPhone)
	b.Reason = trim(b.Reason)
	b.Date = trim(b.Date)
	b.Notes = trim(b.Notes)
}

func (b *VetBooking) Validate(now time.Time) error {
	return check(b, b.Date, now)
}

func (b *VetBooking) Day() string { return b.Date }

func (b *VetBooking) Payload() map[string]any {
	p := map[string]any{
		"ownerName":       b.OwnerName,
		"ownerPhone":      validators.ToE164(b.OwnerPhone),
		"ownerEmail":      b.OwnerEmail,
		"petType":         b.PetType,
		"petSize":         b.PetSize,
		"reason":          b.Reason,
		"dateISO":         b.Date,
		"timeSlotMinutes": b.TimeSlot,
		"notes":           b.Notes,
	}
	if b.SelectedService != "" {
		p["selectedService"] = b.SelectedService
	}
	if b.SelectedPrice != "" {
		p["selectedPrice"] = b.SelectedPrice
	}
	return p
}

// ===============================
// Grooming
// ===============================

type GroomingBooking struct {
	OwnerName string `json:"ownerName" validate:"required,min=2,max=60,person_name"`
	Phone     string `json:"phone" validate:"required,lk_phone"`
	Email     string `json:"email" validate:"required,email,max=254,not_disposable"`
	PetType   string `json:"petType" validate:"required,oneof=Dog Cat Rabbit Bird Other"`
	PackageID string `json:"packageId" validate:"required,oneof=basic-bath-brush full-grooming nail-trim deshedding flea-tick premium-spa"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	TimeSlot  int    `json:"timeSlot" validate:"min=480,max=1200"`
	Notes     string `json:"notes" validate:"max=400"`
}

func (b *GroomingBooking) Service() domain.Service { return domain.ServiceGrooming }

func (b *GroomingBooking) Normalize() {
	b.OwnerName = trim(b.OwnerName)
	b.Phone = validators.NormalizeLKPhone(b.Phone)
	b.Email = normalizeEmail(b.Email)
	b.Date = trim(b.Date)
	b.Notes = trim(b.Notes)
}

func (b *GroomingBooking) Validate(now time.Time) error {
	return check(b, b.Date, now)
}

func (b *GroomingBooking) Day() string { return b.Date }

func (b *GroomingBooking) Payload() map[string]any {
	return map[string]any{
		"ownerName":       b.OwnerName,
		"phone":           validators.ToE164(b.Phone),
		"email":           b.Email,
		"petType":         b.PetType,
		"packageId":       b.PackageID,
		"dateISO":         b.Date,
		"timeSlotMinutes": b.TimeSlot,
		"notes":           b.Notes,
	}
}

// ===============================
// Daycare
// ===============================

type DaycareBooking struct {
	OwnerName      string `json:"ownerName" validate:"required,min=2,max=60,person_name"`
	OwnerEmail     string `json:"ownerEmail" validate:"required,email,max=254,not_disposable"`
	OwnerPhone     string `json:"ownerPhone" validate:"required,lk_phone"`
	EmergencyPhone string `json:"emergencyPhone" validate:"omitempty,lk_phone"`
	PetType        string `json:"petType" validate:"required,oneof=Dog Cat Rabbit Parrot Other"`
	PetName        string `json:"petName" validate:"required,min=2,max=40,person_name"`
	PackageID      string `json:"packageId" validate:"required,oneof=half-day full-day extended-day"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	DropOff        int    `json:"dropOff" validate:"min=480,max=1200"`
	PickUp         int    `json:"pickUp" validate:"min=480,max=1200,gtfield=DropOff"`
	Notes          string `json:"notes" validate:"max=300"`
}

func (b *DaycareBooking) Service() domain.Service { return domain.ServiceDaycare }

func (b *DaycareBooking) Normalize() {
	b.OwnerName = trim(b.OwnerName)
	b.OwnerEmail = normalizeEmail(b.OwnerEmail)
	b.OwnerPhone = validators.NormalizeLKPhone(b.OwnerPhone)
	b.EmergencyPhone = validators.NormalizeLKPhone(b.EmergencyPhone)
	b.PetName = trim(b.PetName)
	b.Date = trim(b.Date)
	b.Notes = trim(b.Notes)
}

func (b *DaycareBooking) Validate(now time.Time) error {
	return check(b, b.Date, now)
}

func (b *DaycareBooking) Day() string { return b.Date }

func (b *DaycareBooking) Payload() map[string]any {
	return map[string]any{
		"ownerName":      b.OwnerName,
		"ownerEmail":     b.OwnerEmail,
		"ownerPhone":     validators.ToE164(b.OwnerPhone),
		"emergencyPhone": optional(validators.ToE164(b.EmergencyPhone)),
		"petType":        b.PetType,
		"petName":        b.PetName,
		"packageId":      b.PackageID,
		"dateISO":        b.Date,
		"dropOffMinutes": b.DropOff,
		"pickUpMinutes":  b.PickUp,
		"notes":          b.Notes,
	}
}
