// Package collector implements the per-tenant alert pipeline and the
// polling scheduler that drives it.
package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/good-yellow-bee/alertcef/internal/cef"
	"github.com/good-yellow-bee/alertcef/internal/logfile"
	"github.com/good-yellow-bee/alertcef/internal/metrics"
	"github.com/good-yellow-bee/alertcef/internal/models"
	"github.com/good-yellow-bee/alertcef/internal/storage"
)

// Source is the detection API surface the pipeline needs.
type Source interface {
	Token(ctx context.Context, cred *models.Credential) (string, error)
	Alerts(ctx context.Context, cred *models.Credential, token string) ([]*models.Alert, error)
}

// Pipeline processes one tenant's alerts: fetch, filter against the
// device inventory, dedupe against database and log file, assign the
// correlation id, encode to CEF, append and persist.
type Pipeline struct {
	store   storage.Storage
	source  Source
	encoder *cef.Encoder
	writer  *logfile.Writer
	archive storage.ArchiveRepository // nil when archiving is disabled
}

// NewPipeline wires a pipeline. archive may be nil.
func NewPipeline(store storage.Storage, src Source, encoder *cef.Encoder, writer *logfile.Writer, archive storage.ArchiveRepository) *Pipeline {
	return &Pipeline{
		store:   store,
		source:  src,
		encoder: encoder,
		writer:  writer,
		archive: archive,
	}
}

// ProcessTenant runs the full pipeline for one credential and returns
// the number of alerts persisted. Auth and fetch failures are returned
// to the caller (the scheduler logs them and moves on); per-alert
// problems are handled inside and never abort the tenant.
func (p *Pipeline) ProcessTenant(ctx context.Context, cred *models.Credential) (int, error) {
	token, err := p.source.Token(ctx, cred)
	if err != nil {
		return 0, err
	}

	alerts, err := p.source.Alerts(ctx, cred, token)
	if err != nil {
		return 0, err
	}
	metrics.AlertsFetchedTotal.Add(float64(len(alerts)))

	persisted := 0
	var batch []*storage.ArchiveRecord
	for _, alert := range alerts {
		rec, err := p.processAlert(ctx, cred, alert)
		if err != nil {
			// Storage lookup failures are not alert-specific; give up on
			// this tenant for the cycle rather than risk duplicates.
			return persisted, err
		}
		if rec != nil {
			persisted++
			batch = append(batch, rec)
		}
	}

	p.flushArchive(ctx, cred, batch)
	return persisted, nil
}

// processAlert pushes a single alert through filter, dedup guard,
// sequencer, encoder, and writer. It returns a non-nil archive record
// when the alert was persisted, and nil (with no error) for every kind
// of skip.
func (p *Pipeline) processAlert(ctx context.Context, cred *models.Credential, alert *models.Alert) (*storage.ArchiveRecord, error) {
	customer := cred.CustomerName
	if customer == "" {
		customer = alert.CustomerName
	}

	// Device existence filter
	host := alert.Details.ResourceName
	if host == "" {
		log.Printf("tenant %s: alert %s has no resource name, discarding", cred.CustomerTenantID, alert.ID)
		metrics.AlertsSkippedTotal.WithLabelValues(metrics.SkipNoResource).Inc()
		return nil, nil
	}
	known, err := p.store.Devices().ExistsByHostname(ctx, cred.PartnerTenantID, host)
	if err != nil {
		return nil, fmt.Errorf("device lookup for %s: %w", host, err)
	}
	if !known {
		log.Printf("tenant %s: alert %s is for unmanaged host %s, discarding", cred.CustomerTenantID, alert.ID, host)
		metrics.AlertsSkippedTotal.WithLabelValues(metrics.SkipUnknownDevice).Inc()
		return nil, nil
	}

	// Dedup guard: the database and the log file are written by two
	// distinct steps that can diverge after a crash, so both must agree
	// the alert is new before it is reprocessed.
	seenDB, err := p.store.Events().ExistsByAlertID(ctx, cred.CustomerTenantID, alert.ID)
	if err != nil {
		return nil, fmt.Errorf("dedup database check for %s: %w", alert.ID, err)
	}
	seenFile, err := p.writer.Contains(customer, alert.ID)
	if err != nil {
		return nil, fmt.Errorf("dedup file check for %s: %w", alert.ID, err)
	}
	if seenDB || seenFile {
		metrics.AlertsSkippedTotal.WithLabelValues(metrics.SkipDuplicate).Inc()
		return nil, nil
	}

	line := p.encoder.Encode(cef.Event{
		EventID:      alert.ID,
		Name:         alert.Category,
		Severity:     alert.Severity,
		CustomerName: customer,
		RawJSON:      string(alert.Raw),
		ResourceID:   alert.Details.ResourceID,
		DetectedAt:   alert.Details.DetectedAt,
	})

	// File first, database second; the file check above keeps a crash
	// between the two from producing a duplicate line.
	path, err := p.writer.Append(customer, line)
	if err != nil {
		return nil, fmt.Errorf("append cef line for %s: %w", alert.ID, err)
	}

	extraID, err := p.store.Settings().NextExtraID(ctx, customer)
	if err != nil {
		log.Printf("ERROR tenant %s: alert %s written to %s but no correlation id assigned: %v",
			cred.CustomerTenantID, alert.ID, path, err)
		metrics.PersistFailuresTotal.Inc()
		return nil, nil
	}

	now := time.Now().UTC()
	record := &models.AlertRecord{
		ID:               uuid.New().String(),
		AlertID:          alert.ID,
		ExtraID:          extraID,
		CustomerName:     customer,
		PartnerTenantID:  cred.PartnerTenantID,
		CustomerTenantID: cred.CustomerTenantID,
		ReceivedAt:       now,
		RawJSON:          string(alert.Raw),
	}
	if err := p.store.Events().Create(ctx, record); err != nil {
		log.Printf("ERROR tenant %s: alert %s written to %s but database insert failed: %v",
			cred.CustomerTenantID, alert.ID, path, err)
		metrics.PersistFailuresTotal.Inc()
		return nil, nil
	}

	metrics.AlertsPersistedTotal.Inc()

	return &storage.ArchiveRecord{
		AlertID:          alert.ID,
		ExtraID:          extraID,
		CustomerName:     customer,
		PartnerTenantID:  cred.PartnerTenantID,
		CustomerTenantID: cred.CustomerTenantID,
		Severity:         string(alert.Severity),
		ReceivedAt:       now,
		RawJSON:          string(alert.Raw),
	}, nil
}

// flushArchive pushes the cycle's persisted alerts to the long-term
// archive. Archive failures never block the pipeline.
func (p *Pipeline) flushArchive(ctx context.Context, cred *models.Credential, batch []*storage.ArchiveRecord) {
	if p.archive == nil || len(batch) == 0 {
		return
	}
	if err := p.archive.InsertBatch(ctx, batch); err != nil {
		log.Printf("tenant %s: archive insert failed for %d alerts: %v", cred.CustomerTenantID, len(batch), err)
		metrics.ArchiveFailuresTotal.Inc()
	}
}
