// Package jobs holds the Asynq background work: the nightly ledger
// integrity scan and the overdue-invoice reminder sweep.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeLedgerScan re-derives every invoice's paid amount from its
	// payment rows and reports drift.
	TaskTypeLedgerScan = "ledger:integrity_scan"
	// TaskTypeInvoiceReminders queues reminder emails for overdue
	// unpaid invoices.
	TaskTypeInvoiceReminders = "invoice:reminders"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewLedgerScanTask constructs the integrity-scan task.
func NewLedgerScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeLedgerScan, nil)
}

// NewInvoiceRemindersTask constructs the reminder-sweep task.
func NewInvoiceRemindersTask() *asynq.Task {
	return asynq.NewTask(TaskTypeInvoiceReminders, nil)
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks. SMTP dispatch
// stays a stub collaborator behind this handler.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	fmt.Printf("[jobs] send email to %s subject=%s\n", payload.To, payload.Subject)
	return nil
}
