package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maharani/glowbrief/internal/db"
	"github.com/maharani/glowbrief/internal/intake"
	"github.com/maharani/glowbrief/internal/types"
	"github.com/maharani/glowbrief/internal/validation"
)

// maxSubmitBody caps the intake payload size.
const maxSubmitBody = 1 << 20

// SyncResponse acknowledges a workflow callback
type SyncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleSubmit runs the intake pipeline on a submitted brief. The response
// always reports status "queued" when the payload is accepted, even if the
// webhook dispatch failed; delivery problems surface only as webhookStatus.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubmitBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body: "+err.Error())
		return
	}

	meta := intake.RequestMeta{
		IPAddress: s.extractClientIP(r),
		UserAgent: r.UserAgent(),
	}

	result, err := s.intake.Submit(r.Context(), raw, meta)
	if err != nil {
		var validationErr *validation.ValidationError
		if errors.As(err, &validationErr) {
			s.jsonResponse(w, http.StatusBadRequest, map[string]any{
				"error":   "Invalid payload",
				"details": validationErr.Errors,
			})
			return
		}
		log.Printf("[server] submission failed: %v", err)
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleResult serves both read modes: ?fields=status returns the
// lightweight polling view, otherwise the fully assembled result document.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	submissionID, ok := s.parseSubmissionID(w, r)
	if !ok {
		return
	}

	if s.store == nil {
		s.errorResponse(w, HTTPStatus(intake.ErrStoreUnavailable), intake.ErrStoreUnavailable.Error())
		return
	}

	submission, err := s.store.GetSubmission(r.Context(), submissionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if submission == nil {
		notFound := &ErrSubmissionNotFound{ID: submissionID}
		s.errorResponse(w, HTTPStatus(notFound), "Submission not found")
		return
	}

	if r.URL.Query().Get("fields") == "status" {
		s.writeStatus(w, r, submission)
		return
	}

	// Full document: serve from cache when possible. The view event fires
	// either way.
	if doc, hit := s.resultCache.GetResult(r.Context(), submissionID.String()); hit {
		s.analytics.LogReportView(submissionID.String())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc)
		return
	}

	document, err := s.assembleResult(r, submission)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.analytics.LogReportView(submissionID.String())

	if encoded, err := json.Marshal(document); err == nil {
		s.resultCache.SetResult(r.Context(), submissionID.String(), encoded)
	}

	s.jsonResponse(w, http.StatusOK, document)
}

// writeStatus renders the polling view: submission status plus the status of
// the most recent workflow run.
func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, submission *db.Submission) {
	snapshot, err := s.statusSnapshot(r, submission)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]*types.StatusSnapshot{"status": snapshot})
}

func (s *Server) statusSnapshot(r *http.Request, submission *db.Submission) (*types.StatusSnapshot, error) {
	run, err := s.store.GetLatestRun(r.Context(), submission.ID)
	if err != nil {
		return nil, err
	}

	snapshot := &types.StatusSnapshot{
		Status:      submission.Status,
		LastUpdated: submission.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if run != nil {
		snapshot.WorkflowStatus = run.Status
	}
	return snapshot, nil
}

// assembleResult builds the full result document. The payload, latest run
// and report sections are independent reads, so they are fetched
// concurrently. A missing payload row is tolerated: the submission may have
// been created right before a crash.
func (s *Server) assembleResult(r *http.Request, submission *db.Submission) (*types.ResultDocument, error) {
	var (
		payloadJSON []byte
		run         *db.WorkflowRun
		sections    []db.ReportSection
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		payloadJSON, err = s.store.GetPayload(ctx, submission.ID)
		return err
	})
	g.Go(func() error {
		var err error
		run, err = s.store.GetLatestRun(ctx, submission.ID)
		return err
	})
	g.Go(func() error {
		var err error
		sections, err = s.store.ListSections(ctx, submission.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	document := &types.ResultDocument{
		SubmissionID: submission.ID.String(),
		Status:       submission.Status,
		SubmittedAt:  submission.SubmittedAt.UTC().Format(time.RFC3339),
		Environment:  submission.TargetEnvironment,
		BrandName:    submission.BrandName,
		Sections:     make(map[string]any, len(sections)),
	}

	if payloadJSON != nil {
		var payload types.SubmissionPayload
		if err := json.Unmarshal(payloadJSON, &payload); err != nil {
			log.Printf("[server] stored payload for %s is unreadable: %v", submission.ID, err)
		} else {
			document.Payload = &payload
		}
	}

	if run != nil {
		document.Workflow = types.WorkflowSummary{
			Status:     run.Status,
			StartedAt:  run.StartedAt.UTC().Format(time.RFC3339),
			RetryCount: run.RetryCount,
		}
		if run.CompletedAt != nil {
			document.Workflow.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
		}
	}

	for _, section := range sections {
		document.Sections[section.SectionType] = section.SectionData
	}

	return document, nil
}

// handleSync is the callback receiver for the external workflow engine. It
// updates submission status, overwrites report sections by type, audits the
// callback and invalidates the cached result view.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	var req types.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.SubmissionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "submissionId is required")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid sync request: "+err.Error())
		return
	}

	if s.store == nil {
		s.errorResponse(w, HTTPStatus(intake.ErrStoreUnavailable), intake.ErrStoreUnavailable.Error())
		return
	}

	submissionID, err := uuid.Parse(req.SubmissionID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid submissionId format")
		return
	}

	submission, err := s.store.GetSubmission(r.Context(), submissionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if submission == nil {
		notFound := &ErrSubmissionNotFound{ID: submissionID}
		s.errorResponse(w, HTTPStatus(notFound), "Submission not found")
		return
	}

	if req.Status != "" {
		if err := s.store.UpdateSubmissionStatus(r.Context(), submissionID, req.Status); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
	}

	for _, section := range req.ReportSections {
		if _, err := s.store.UpsertSection(r.Context(), &db.NewReportSection{
			SubmissionID: submissionID,
			SectionType:  section.Type,
			SectionData:  section.Data,
			Order:        section.Order,
		}); err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
			return
		}
	}

	if err := s.store.CreateAuditLog(r.Context(), &db.NewAuditLog{
		SubmissionID: submissionID,
		Action:       "webhook_callback",
		ActorType:    "system",
		Metadata: map[string]any{
			"status":        req.Status,
			"sectionsCount": len(req.ReportSections),
		},
	}); err != nil {
		log.Printf("[server] audit log failed for %s: %v", submissionID, err)
	}

	s.analytics.LogWebhookCallback(req.SubmissionID, req.Status)
	s.resultCache.Invalidate(r.Context(), req.SubmissionID)

	s.jsonResponse(w, http.StatusOK, SyncResponse{
		Success: true,
		Message: "Submission updated successfully",
	})
}

// parseSubmissionID extracts and validates the {id} path value.
func (s *Server) parseSubmissionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		s.errorResponse(w, http.StatusBadRequest, "Submission ID is required")
		return uuid.Nil, false
	}

	submissionID, err := uuid.Parse(idStr)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid submission ID format")
		return uuid.Nil, false
	}
	return submissionID, true
}
