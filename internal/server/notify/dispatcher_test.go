package notify

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dmitrijs2005/messagely/internal/dbx"
	"github.com/dmitrijs2005/messagely/internal/logging"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/messages"
	outboxrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/outbox"
	usersrepo "github.com/dmitrijs2005/messagely/internal/server/repositories/users"
)

// --- fakes ---

type fakeNotifier struct {
	failures int // errors to return before succeeding
	calls    int
	lastTo   string
	lastText string
}

func (f *fakeNotifier) Send(ctx context.Context, toPhone, text string) (string, error) {
	f.calls++
	f.lastTo = toPhone
	f.lastText = text
	if f.calls <= f.failures {
		return "", errors.New("provider unavailable")
	}
	return "SM123", nil
}

type fakeOutboxRepo struct {
	pending []models.OutboxEntry

	sentID         string
	sentDeliveryID string

	failedID    string
	failedError string
	failedFinal bool
}

func (f *fakeOutboxRepo) Enqueue(ctx context.Context, entry *models.OutboxEntry) error { return nil }

func (f *fakeOutboxRepo) ClaimPending(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id, deliveryID string) error {
	f.sentID = id
	f.sentDeliveryID = deliveryID
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id, lastError string, final bool) error {
	f.failedID = id
	f.failedError = lastError
	f.failedFinal = final
	return nil
}

type fakeRepoManager struct {
	o *fakeOutboxRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

// The dispatcher only uses Outbox; the rest exist to satisfy the interface.
func (m *fakeRepoManager) Outbox(db dbx.DBTX) outboxrepo.Repository     { return m.o }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository       { return nil }
func (m *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository { return nil }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func newDispatcher(rm *fakeRepoManager, n Notifier, maxAttempts int) *Dispatcher {
	return NewDispatcher(nil, rm, n, testLogger(), time.Second, time.Second, maxAttempts)
}

// --- tests ---

func TestProcessBatch_DeliversAndMarksSent(t *testing.T) {
	o := &fakeOutboxRepo{pending: []models.OutboxEntry{
		{ID: "o-1", MessageID: "m-1", ToPhone: "+15552222222", Body: "hello", Attempts: 1},
	}}
	n := &fakeNotifier{}
	d := newDispatcher(&fakeRepoManager{o: o}, n, 5)

	d.processBatch(context.Background())

	if n.calls != 1 {
		t.Fatalf("expected exactly one send, got %d", n.calls)
	}
	if n.lastTo != "+15552222222" || n.lastText != "hello" {
		t.Fatalf("unexpected send: to=%q text=%q", n.lastTo, n.lastText)
	}
	if o.sentID != "o-1" || o.sentDeliveryID != "SM123" {
		t.Fatalf("entry not marked sent: %+v", o)
	}
	if o.failedID != "" {
		t.Fatalf("entry unexpectedly marked failed: %+v", o)
	}
}

func TestProcessBatch_RetriesWithinClaim(t *testing.T) {
	o := &fakeOutboxRepo{pending: []models.OutboxEntry{
		{ID: "o-1", MessageID: "m-1", ToPhone: "+15552222222", Body: "hello", Attempts: 1},
	}}
	n := &fakeNotifier{failures: 2}
	d := newDispatcher(&fakeRepoManager{o: o}, n, 5)

	d.processBatch(context.Background())

	if n.calls != 3 {
		t.Fatalf("expected 3 send attempts, got %d", n.calls)
	}
	if o.sentID != "o-1" {
		t.Fatalf("entry not marked sent after retries: %+v", o)
	}
}

func TestProcessBatch_FailureStaysPending(t *testing.T) {
	o := &fakeOutboxRepo{pending: []models.OutboxEntry{
		{ID: "o-1", MessageID: "m-1", ToPhone: "+15552222222", Body: "hello", Attempts: 1},
	}}
	n := &fakeNotifier{failures: 100}
	d := newDispatcher(&fakeRepoManager{o: o}, n, 5)

	d.processBatch(context.Background())

	if o.sentID != "" {
		t.Fatalf("entry unexpectedly marked sent: %+v", o)
	}
	if o.failedID != "o-1" || o.failedFinal {
		t.Fatalf("expected retryable failure, got %+v", o)
	}
	if o.failedError == "" {
		t.Fatal("expected last_error to be recorded")
	}
}

func TestProcessBatch_ExhaustedAttemptsAreFinal(t *testing.T) {
	o := &fakeOutboxRepo{pending: []models.OutboxEntry{
		{ID: "o-1", MessageID: "m-1", ToPhone: "+15552222222", Body: "hello", Attempts: 5},
	}}
	n := &fakeNotifier{failures: 100}
	d := newDispatcher(&fakeRepoManager{o: o}, n, 5)

	d.processBatch(context.Background())

	if o.failedID != "o-1" || !o.failedFinal {
		t.Fatalf("expected final failure, got %+v", o)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	o := &fakeOutboxRepo{}
	d := NewDispatcher(nil, &fakeRepoManager{o: o}, &fakeNotifier{}, testLogger(),
		10*time.Millisecond, time.Second, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}
