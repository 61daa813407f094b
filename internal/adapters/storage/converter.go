package storage

import (
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
)

// regionToModel converts a domain region to its database model.
func regionToModel(r domain.Region) RegionModel {
	return RegionModel{
		ID:        r.ID,
		Label:     r.Label,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		RadiusM:   r.RadiusM,
		Message:   r.Message,
		UpdatedAt: time.Now(),
	}
}

// regionToDomain converts a database model back to a domain region.
func regionToDomain(m RegionModel) domain.Region {
	return domain.Region{
		ID:        m.ID,
		Label:     m.Label,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		RadiusM:   m.RadiusM,
		Message:   m.Message,
	}
}

// eventToModel flattens the embedded position for storage.
func eventToModel(e domain.Event) EventModel {
	return EventModel{
		ID:        e.ID,
		RegionID:  e.RegionID,
		Kind:      string(e.Kind),
		Latitude:  e.Position.Latitude,
		Longitude: e.Position.Longitude,
		Accuracy:  e.Position.Accuracy,
		Timestamp: e.Timestamp,
		Message:   e.Message,
	}
}

// eventToDomain rebuilds the domain event. Only the position fields
// the evaluator persists come back; altitude/speed/heading are not
// stored.
func eventToDomain(m EventModel) domain.Event {
	return domain.Event{
		ID:       m.ID,
		RegionID: m.RegionID,
		Kind:     domain.EventKind(m.Kind),
		Position: domain.Position{
			Latitude:  m.Latitude,
			Longitude: m.Longitude,
			Accuracy:  m.Accuracy,
			Timestamp: m.Timestamp,
		},
		Timestamp: m.Timestamp,
		Message:   m.Message,
	}
}
