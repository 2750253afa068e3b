package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	EventBufferSize int    `json:"event_buffer_size"`
	Subscribers     int    `json:"subscribers"`
	StorageType     string `json:"storage_type"`
	WatchActive     bool   `json:"watch_active"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.subMu.Lock()
	subscribers := len(s.subs)
	s.subMu.Unlock()

	s.mu.Lock()
	watchActive := s.watchCancel != nil
	s.mu.Unlock()

	storageType := "storage"
	if comp, ok := s.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	return ServiceState{
		EventBufferSize: s.eventBuffer,
		Subscribers:     subscribers,
		StorageType:     storageType,
		WatchActive:     watchActive,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
