package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/ManuelReschke/BaanBox/internal/pkg/mail"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeActivationMail    JobType = "activation_mail"
	JobTypeOrderConfirmation JobType = "order_confirmation"
	JobTypeStatisticsRefresh JobType = "statistics_refresh"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ActivationMailPayload is the account activation mail of a new customer.
type ActivationMailPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
	Link string `json:"link"`
}

func (p ActivationMailPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"to":   p.To,
		"name": p.Name,
		"link": p.Link,
	}
}

func ActivationMailPayloadFromMap(data map[string]interface{}) (*ActivationMailPayload, error) {
	var payload ActivationMailPayload
	err := fromMap(data, &payload)
	return &payload, err
}

// OrderConfirmationPayload carries the rendered values of a confirmation mail,
// so the worker never has to reload the order.
type OrderConfirmationPayload struct {
	To   string                     `json:"to"`
	Data mail.OrderConfirmationData `json:"data"`
}

func (p OrderConfirmationPayload) ToMap() (map[string]interface{}, error) {
	return toMap(p)
}

func OrderConfirmationPayloadFromMap(data map[string]interface{}) (*OrderConfirmationPayload, error) {
	var payload OrderConfirmationPayload
	err := fromMap(data, &payload)
	return &payload, err
}

func toMap(v interface{}) (map[string]interface{}, error) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]interface{}
	err = json.Unmarshal(jsonData, &m)
	return m, err
}

func fromMap(data map[string]interface{}, v interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonData, v)
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
