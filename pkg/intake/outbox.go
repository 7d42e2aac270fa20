package intake

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StatusOfflineBackup marks records written because the service was
// unreachable, mirroring the landing page's offline backup records.
const StatusOfflineBackup = "offline_backup"

// PendingSubmission is one submission the service has not yet accepted.
type PendingSubmission struct {
	Email     string `json:"email"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Status    string `json:"status"`
	QueuedAt  string `json:"queued_at"`
}

// Outbox is a file-backed queue of submissions that failed to reach the
// waitlist service. It belongs entirely to the intake side; the service
// itself never retries and knows nothing about it.
type Outbox struct {
	path string

	mu sync.Mutex
}

func NewOutbox(path string) (*Outbox, error) {
	if path == "" {
		return nil, fmt.Errorf("intake: outbox path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("intake: create outbox dir: %w", err)
	}

	return &Outbox{path: path}, nil
}

// Add appends a pending record. Errors here are reported but must never
// mask the original submission failure.
func (o *Outbox) Add(sub Submission) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load()
	if err != nil {
		return err
	}

	pending = append(pending, PendingSubmission{
		Email:     sub.Email,
		Timestamp: sub.Timestamp,
		Source:    sub.Source,
		Status:    StatusOfflineBackup,
		QueuedAt:  time.Now().Format(time.RFC3339),
	})

	return o.store(pending)
}

// Pending returns a copy of all queued records.
func (o *Outbox) Pending() ([]PendingSubmission, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.load()
}

// Remove drops every record for the given email.
func (o *Outbox) Remove(email string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	pending, err := o.load()
	if err != nil {
		return err
	}

	kept := pending[:0]
	for _, record := range pending {
		if record.Email != email {
			kept = append(kept, record)
		}
	}

	return o.store(kept)
}

func (o *Outbox) load() ([]PendingSubmission, error) {
	data, err := os.ReadFile(o.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("intake: read outbox: %w", err)
	}

	var pending []PendingSubmission
	if err := json.Unmarshal(data, &pending); err != nil {
		return nil, fmt.Errorf("intake: decode outbox: %w", err)
	}

	return pending, nil
}

func (o *Outbox) store(pending []PendingSubmission) error {
	data, err := json.MarshalIndent(pending, "", "  ")
	if err != nil {
		return fmt.Errorf("intake: encode outbox: %w", err)
	}

	tmp := o.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("intake: write outbox: %w", err)
	}

	if err := os.Rename(tmp, o.path); err != nil {
		return fmt.Errorf("intake: replace outbox: %w", err)
	}

	return nil
}
