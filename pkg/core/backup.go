package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the export/import file format: one JSON object carrying the
// Document plus the auxiliary stores, tagged with the schema version.
type Envelope struct {
	Version   string    `json:"version"`
	Data      *Document `json:"data"`
	Interests []string  `json:"interests"`
	Feeds     []Feed    `json:"feeds,omitempty"`
	AIConfig  *AIConfig `json:"aiConfig,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// envelopeProbe checks key presence without committing to field shapes.
type envelopeProbe struct {
	Data      json.RawMessage `json:"data"`
	Interests json.RawMessage `json:"interests"`
	Feeds     json.RawMessage `json:"feeds"`
	AIConfig  json.RawMessage `json:"aiConfig"`
}

// ExportBackup serializes the Document and the auxiliary stores into a
// single envelope.
func (s *Service) ExportBackup(ctx context.Context) (*Envelope, error) {
	s.mu.Lock()
	doc := s.load(ctx).Clone()
	s.mu.Unlock()

	interests, err := s.storage.LoadInterests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load interests: %w", err)
	}
	if interests == nil {
		interests = []string{}
	}
	feeds, err := s.storage.LoadFeeds(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feeds: %w", err)
	}
	cfg := s.AIConfig(ctx)

	return &Envelope{
		Version:   SchemaVersion,
		Data:      doc,
		Interests: interests,
		Feeds:     feeds,
		AIConfig:  &cfg,
		Timestamp: s.now(),
	}, nil
}

// ImportBackup replaces local state with the envelope's content. The
// payload must carry both mandatory top-level keys (data, interests);
// anything else is rejected with ErrInvalidBackup and existing state stays
// untouched.
func (s *Service) ImportBackup(ctx context.Context, payload []byte) error {
	var probe envelopeProbe
	if err := json.Unmarshal(payload, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if !keyPresent(probe.Data) || !keyPresent(probe.Interests) {
		return fmt.Errorf("%w: missing data or interests", ErrInvalidBackup)
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if env.Data == nil {
		return fmt.Errorf("%w: data is null", ErrInvalidBackup)
	}

	env.Data.Repair()
	if env.Data.SchemaVersion == "" {
		env.Data.SchemaVersion = SchemaVersion
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, env.Data, Event{Type: EventModify, Topic: "document"}); err != nil {
		return err
	}
	if err := s.storage.SaveInterests(ctx, env.Interests); err != nil {
		return fmt.Errorf("failed to save interests: %w", err)
	}
	if keyPresent(probe.Feeds) {
		if err := s.storage.SaveFeeds(ctx, env.Feeds); err != nil {
			return fmt.Errorf("failed to save feeds: %w", err)
		}
	}
	if keyPresent(probe.AIConfig) && env.AIConfig != nil {
		if err := s.storage.SaveAIConfig(ctx, *env.AIConfig); err != nil {
			return fmt.Errorf("failed to save ai config: %w", err)
		}
	}
	return nil
}

func keyPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
