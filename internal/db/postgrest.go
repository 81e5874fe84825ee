package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"
)

// PostgrestStore keeps job records in the Supabase video_job_statuses table.
// postgrest-go has no context support; ctx is accepted for the Store
// interface only.
type PostgrestStore struct {
	client *postgrest.Client
	log    *logrus.Logger
}

// jobInsert is the insert body. It carries no timestamps, so created_at and
// updated_at come from the table defaults.
type jobInsert struct {
	JobID        string          `json:"job_id"`
	JobType      string          `json:"job_type"`
	Status       string          `json:"status"`
	InputPayload json.RawMessage `json:"input_payload,omitempty"`
}

// NewPostgrestStore initializes a PostgREST client for supabaseURL using the
// service key for both apikey and bearer auth.
func NewPostgrestStore(supabaseURL, serviceKey string, logger *logrus.Logger) (*PostgrestStore, error) {
	if supabaseURL == "" || serviceKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}

	client := postgrest.NewClient(strings.TrimSuffix(supabaseURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        serviceKey,
		"Authorization": fmt.Sprintf("Bearer %s", serviceKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", client.ClientError)
	}

	logger.Info("Supabase job store initialized")
	return &PostgrestStore{client: client, log: logger}, nil
}

// Close is a no-op; the client holds no persistent connection.
func (s *PostgrestStore) Close() error { return nil }

// CreateJobRecord inserts a PENDING record.
func (s *PostgrestStore) CreateJobRecord(_ context.Context, jobID, jobType string, inputPayload interface{}) error {
	payload, err := marshalOptional(inputPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal input payload: %w", err)
	}

	newRecord := jobInsert{
		JobID:        jobID,
		JobType:      jobType,
		Status:       StatusPending,
		InputPayload: payload,
	}

	// return=representation makes PostgREST echo the inserted row
	var results []VideoJobStatus
	if _, err := s.client.From(jobStatusTable).Insert(newRecord, false, "", "representation", "").ExecuteTo(&results); err != nil {
		return fmt.Errorf("failed to insert job record: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no record returned after insert, job_id: %s", jobID)
	}

	s.log.WithFields(logrus.Fields{"job_id": jobID, "job_type": jobType}).Debug("Created job record")
	return nil
}

// UpdateJobStatus sets status and, when given, output details and error.
func (s *PostgrestStore) UpdateJobStatus(_ context.Context, jobID, status string, outputDetails interface{}, errorMessage string) error {
	updateData := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	output, err := marshalOptional(outputDetails)
	if err != nil {
		return fmt.Errorf("failed to marshal output details: %w", err)
	}
	if output != nil {
		updateData["output_details"] = output
	}
	if errorMessage != "" {
		updateData["error_message"] = errorMessage
	}

	var results []VideoJobStatus
	if _, err := s.client.From(jobStatusTable).Update(updateData, "representation", "").Eq("job_id", jobID).ExecuteTo(&results); err != nil {
		return fmt.Errorf("failed to update job record %s: %w", jobID, err)
	}
	if len(results) == 0 {
		return fmt.Errorf("update job record %s: %w", jobID, ErrJobNotFound)
	}

	s.log.WithFields(logrus.Fields{"job_id": jobID, "status": status}).Debug("Updated job record")
	return nil
}

// GetJob returns the record for jobID or ErrJobNotFound.
func (s *PostgrestStore) GetJob(_ context.Context, jobID string) (*VideoJobStatus, error) {
	body, _, err := s.client.From(jobStatusTable).
		Select("*", "", false).
		Eq("job_id", jobID).
		Limit(1, "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("could not retrieve job %s: %w", jobID, err)
	}

	var jobs []VideoJobStatus
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("could not decode job %s: %w", jobID, err)
	}
	if len(jobs) == 0 {
		return nil, ErrJobNotFound
	}
	return &jobs[0], nil
}
