package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/srosato/doctran/internal/document"
	"github.com/srosato/doctran/internal/parser"
	"github.com/srosato/doctran/internal/schema"
	"github.com/srosato/doctran/internal/sdm"
	"github.com/srosato/doctran/internal/store"
	"github.com/srosato/doctran/internal/telemetry"
	"github.com/srosato/doctran/internal/transform"
)

// Worker processes a single document job.
type Worker struct {
	registry *schema.Registry
	store    *store.Client
	metrics  *telemetry.Metrics
	stats    *telemetry.TransformStats
	log      *slog.Logger

	maxConcurrentStore int
	pdfFallback        bool
}

func NewWorker(reg *schema.Registry, st *store.Client, metrics *telemetry.Metrics, stats *telemetry.TransformStats, log *slog.Logger, maxStore int, pdfFallback bool) *Worker {
	return &Worker{
		registry:           reg,
		store:              st,
		metrics:            metrics,
		stats:              stats,
		log:                log,
		maxConcurrentStore: maxStore,
		pdfFallback:        pdfFallback,
	}
}

// Process runs the full ingest pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "record_id", job.RecordID, "type", job.DocType)

	status := w.process(ctx, job, log)
	w.metrics.DocumentsTotal.WithLabelValues(job.DocType, string(status)).Inc()
}

func (w *Worker) process(ctx context.Context, job *Job, log *slog.Logger) JobStatus {
	// Phase 1: Parse
	job.SetStatus(StatusParsing, "parsing")
	p, err := parser.ForFile(job.Filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return StatusFailed
	}
	if pp, ok := p.(*parser.PDFParser); ok {
		pp.FallbackPdftotext = w.pdfFallback
	}

	mapping, err := p.Parse(bytes.NewReader(job.FileData()), job.Filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return StatusFailed
	}
	if mapping.Len() == 0 {
		log.Warn("no extractable content")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "parsing")
		return StatusFailed
	}

	// Compute content hash from the parsed mapping.
	job.SetContentHash(ContentHashHex([]byte(mapping.Text())))

	// Phase 1.5: Dedup check
	exists, existingDocID, err := w.checkDuplicate(ctx, job)
	if err != nil {
		log.Warn("dedup check failed, proceeding", "error", err)
	} else if exists {
		log.Info("duplicate document, skipping", "existing_doc_id", existingDocID)
		job.SetStatus(StatusDupSkipped, "dedup")
		return StatusDupSkipped
	}

	// Phase 2: Validate against the type's schema.
	job.SetStatus(StatusValidating, "validating")
	if err := w.registry.Validate(job.DocType, mapping); err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			for _, p := range verr.Problems {
				job.AddError(p)
			}
		} else {
			job.AddError(err.Error())
		}
		log.Error("validation failed", "error", err)
		job.SetStatus(StatusFailed, "validating")
		return StatusFailed
	}

	// Phase 3: Transform to facts.
	job.SetStatus(StatusTransforming, "transforming")
	entry, _ := w.registry.Get(job.DocType)
	if entry.Transform == nil {
		job.AddError(fmt.Sprintf("no transform for document type %s", job.DocType))
		job.SetStatus(StatusFailed, "transforming")
		return StatusFailed
	}

	doc := &document.Document{
		ID:       job.DocID,
		Type:     job.DocType,
		RecordID: job.RecordID,
		Filename: job.Filename,
		Data:     job.FileData(),
		Mapping:  mapping,
	}

	started := time.Now()
	facts, err := entry.Transform.Facts(ctx, doc)
	elapsed := time.Since(started)
	w.metrics.TransformDuration.WithLabelValues(job.DocType, "facts").Observe(elapsed.Seconds())
	w.stats.Record(elapsed.Milliseconds())

	if err != nil {
		if errors.Is(err, transform.ErrUnsupported) {
			job.AddError(fmt.Sprintf("transform for %s does not produce facts", job.DocType))
		} else {
			job.AddError(fmt.Sprintf("transform: %s", err))
		}
		log.Error("transform failed", "error", err)
		job.SetStatus(StatusFailed, "transforming")
		return StatusFailed
	}

	job.AddFacts(len(facts), 0)
	log.Info("transform complete", "facts", len(facts), "duration_ms", elapsed.Milliseconds())

	if len(facts) == 0 {
		job.AddError("transform produced no facts")
		job.SetStatus(StatusFailed, "transforming")
		return StatusFailed
	}

	// Phase 4: Store facts with bounded concurrency.
	job.SetStatus(StatusStoring, "storing")
	docPrefix := "documents/" + job.DocID
	storedCount := 0
	hadErrors := false

	storeSem := make(chan struct{}, w.maxConcurrentStore)
	type storeResult struct {
		ok     bool
		err    error
		factID string
	}
	storeResults := make(chan storeResult, len(facts))

	for _, fact := range facts {
		storeSem <- struct{}{}
		go func(f sdm.Fact) {
			defer func() { <-storeSem }()
			factID := uuid.NewString()
			if err := w.storeFact(ctx, job, factID, f); err != nil {
				storeResults <- storeResult{ok: false, err: err, factID: factID}
				return
			}
			// Write manifest entry.
			manifestKey := fmt.Sprintf("%s/facts/%s", docPrefix, factID)
			if err := w.store.PutNode(ctx, job.RecordID, manifestKey, map[string]any{
				"model": f.Model,
			}); err != nil {
				log.Warn("manifest write failed", "key", manifestKey, "error", err)
			}
			storeResults <- storeResult{ok: true, factID: factID}
		}(fact)
	}

	for range facts {
		r := <-storeResults
		if r.ok {
			storedCount++
			w.metrics.FactsStored.Inc()
		} else {
			log.Error("store failed", "fact_id", r.factID, "error", r.err)
			job.AddError(fmt.Sprintf("store %s: %s", r.factID, r.err))
			hadErrors = true
		}
	}

	job.AddFacts(0, storedCount)
	log.Info("storage complete", "stored", storedCount, "total", len(facts))

	// Write document metadata.
	if err := w.store.PutNode(ctx, job.RecordID, docPrefix+"/meta", map[string]any{
		"filename":     job.Filename,
		"doc_type":     job.DocType,
		"content_hash": job.ContentHash,
		"facts_stored": storedCount,
		"created_at":   job.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		log.Error("meta write failed", "error", err)
		job.AddError(fmt.Sprintf("meta: %s", err))
	}

	// Write hash index for dedup.
	hashKey := fmt.Sprintf("documents/by_hash/%s/%s", job.ContentHash, job.DocID)
	if err := w.store.PutNode(ctx, job.RecordID, hashKey, map[string]any{
		"filename":   job.Filename,
		"created_at": job.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		log.Error("hash index write failed", "error", err)
	}

	switch {
	case hadErrors && storedCount > 0:
		job.SetStatus(StatusPartial, "done")
		return StatusPartial
	case hadErrors:
		job.SetStatus(StatusFailed, "storing")
		return StatusFailed
	default:
		job.SetStatus(StatusCompleted, "done")
		return StatusCompleted
	}
}

// storeFact writes a single fact with retry on transient store errors.
func (w *Worker) storeFact(ctx context.Context, job *Job, factID string, f sdm.Fact) error {
	req := factRequest(f)
	req.Source = "doctran:" + job.DocID

	var lastErr error
	for attempt := range MaxRetries {
		lastErr = w.store.PutFact(ctx, job.RecordID, factID, req)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		w.log.Warn("retryable store error", "fact_id", factID, "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// factRequest converts a fact (and its related facts) to the storage wire form.
func factRequest(f sdm.Fact) store.FactRequest {
	req := store.FactRequest{
		Model:  f.Model,
		Fields: make(map[string]string, len(f.Fields)),
	}
	for _, fld := range f.Fields {
		req.Fields[fld.Name] = fld.Value
	}
	if len(f.Related) > 0 {
		req.Related = make(map[string][]store.FactRequest, len(f.Related))
		for name, related := range f.Related {
			for _, rf := range related {
				req.Related[name] = append(req.Related[name], factRequest(rf))
			}
		}
	}
	return req
}

// checkDuplicate checks if this content hash already exists for the record.
func (w *Worker) checkDuplicate(ctx context.Context, job *Job) (bool, string, error) {
	hashPrefix := "documents/by_hash/" + job.ContentHash
	nodes, err := w.store.ListNodes(ctx, job.RecordID, hashPrefix, 1)
	if err != nil {
		return false, "", err
	}
	if len(nodes) > 0 {
		return true, lastSegment(nodes[0].Key), nil
	}
	return false, "", nil
}

// lastSegment gets the last path segment (the doc ID) from a node key.
func lastSegment(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}
