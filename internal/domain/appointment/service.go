package appointment

import (
	"strings"

	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
)

// ===============================
// Service
// ===============================

type Service string

const (
	ServiceVet      Service = "vet"
	ServiceGrooming Service = "grooming"
	ServiceDaycare  Service = "daycare"
)

// Services is the fetch order used everywhere results are concatenated.
var Services = []Service{ServiceVet, ServiceGrooming, ServiceDaycare}

const fallbackColor = "#e2e8f0"

var serviceInfo = map[Service]struct {
	label    string
	duration int
	color    string
}{
	ServiceVet:      {label: "Veterinary Care", duration: 30, color: "#dbeafe"},
	ServiceGrooming: {label: "Grooming", duration: 90, color: "#fde7ff"},
	ServiceDaycare:  {label: "Daycare", duration: 480, color: "#dcfce7"},
}

func ParseService(s string) (Service, error) {
	svc := Service(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := serviceInfo[svc]; !ok {
		return "", httperr.ErrBusiness("unknown_service")
	}
	return svc, nil
}

func (s Service) Valid() bool {
	_, ok := serviceInfo[s]
	return ok
}

func (s Service) Label() string {
	if info, ok := serviceInfo[s]; ok {
		return info.label
	}
	return string(s)
}

// DefaultDuration is the slot length in minutes assumed when a record only
// carries its start minute.
func (s Service) DefaultDuration() int {
	if info, ok := serviceInfo[s]; ok {
		return info.duration
	}
	return 30
}

// Color is the calendar background for events of this service.
func (s Service) Color() string {
	if info, ok := serviceInfo[s]; ok {
		return info.color
	}
	return fallbackColor
}
