package worker

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"hotelbook/internal/database"
	"hotelbook/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "worker.db"), &logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type fakeWriter struct {
	err          error
	upsertCalls  int
	deleteCalls  int
	replaceCalls int
	replacedWith []models.Booking
}

func (f *fakeWriter) UpsertBooking(_ context.Context, _ *models.Booking) error {
	f.upsertCalls++
	return f.err
}

func (f *fakeWriter) DeleteBooking(_ context.Context, _ int64) error {
	f.deleteCalls++
	return f.err
}

func (f *fakeWriter) ReplaceBookingsSheet(_ context.Context, bookings []models.Booking) error {
	f.replaceCalls++
	f.replacedWith = bookings
	return f.err
}

func loadTaskStatus(t *testing.T, db *database.DB, id int64) (string, int, sql.NullTime) {
	t.Helper()
	var status string
	var retryCount int
	var nextRetry sql.NullTime
	err := db.QueryRow(`SELECT status, retry_count, next_retry_at FROM sync_queue WHERE id = ?`, id).
		Scan(&status, &retryCount, &nextRetry)
	if err != nil {
		t.Fatalf("load task %d: %v", id, err)
	}
	return status, retryCount, nextRetry
}

func testBooking(id int64) *models.Booking {
	return &models.Booking{
		ID:         id,
		UserID:     42,
		RoomNumber: 3,
		StartDate:  time.Now().AddDate(0, 0, 1),
		EndDate:    time.Now().AddDate(0, 0, 2),
	}
}

func newWorkerLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func TestProcessTaskSuccess(t *testing.T) {
	db := newTestDB(t)
	writer := &fakeWriter{}
	w := NewExportWorker(db, writer, nil, RetryPolicy{}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskUpsert, 0, testBooking(1)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := w.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	w.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
	if retryCount != 0 {
		t.Fatalf("expected retry_count=0, got %d", retryCount)
	}
	if nextRetry.Valid {
		t.Fatalf("expected next_retry_at NULL on success")
	}
	if writer.upsertCalls != 1 {
		t.Fatalf("expected one upsert call, got %d", writer.upsertCalls)
	}
}

func TestProcessTaskRetry(t *testing.T) {
	db := newTestDB(t)
	writer := &fakeWriter{err: errors.New("boom")}
	w := NewExportWorker(db, writer, nil, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskUpsert, 0, testBooking(2)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	task, ok := w.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	w.processTask(ctx, &task)

	status, retryCount, nextRetry := loadTaskStatus(t, db, task.ID)
	if status != "retry" {
		t.Fatalf("expected status=retry, got %s", status)
	}
	if retryCount != 1 {
		t.Fatalf("expected retry_count=1, got %d", retryCount)
	}
	if !nextRetry.Valid || nextRetry.Time.Before(time.Now()) {
		t.Fatalf("expected next_retry_at in future, got %v", nextRetry)
	}
}

func TestProcessTaskFail(t *testing.T) {
	db := newTestDB(t)
	writer := &fakeWriter{err: errors.New("fatal")}
	w := NewExportWorker(db, writer, nil, RetryPolicy{MaxRetries: 1}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskUpsert, 0, testBooking(3)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, _ := w.tryLocalQueue()
	w.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestDeleteTask(t *testing.T) {
	db := newTestDB(t)
	writer := &fakeWriter{}
	w := NewExportWorker(db, writer, nil, RetryPolicy{}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskDelete, 7, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, _ := w.tryLocalQueue()
	w.processTask(ctx, &task)

	if writer.deleteCalls != 1 {
		t.Fatalf("expected one delete call, got %d", writer.deleteCalls)
	}
}

func TestReplaceTaskRewritesSheet(t *testing.T) {
	db := newTestDB(t)
	writer := &fakeWriter{}
	w := NewExportWorker(db, writer, nil, RetryPolicy{}, newWorkerLogger())

	ctx := context.Background()
	stored := testBooking(0)
	if err := db.CreateBooking(ctx, stored); err != nil {
		t.Fatalf("create booking: %v", err)
	}

	// A resync task needs no booking id of its own.
	if err := w.EnqueueTask(ctx, TaskReplace, 0, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, ok := w.tryLocalQueue()
	if !ok {
		t.Fatalf("expected task in local queue")
	}
	w.processTask(ctx, &task)

	if writer.replaceCalls != 1 {
		t.Fatalf("expected one replace call, got %d", writer.replaceCalls)
	}
	if len(writer.replacedWith) != 1 || writer.replacedWith[0].ID != stored.ID {
		t.Fatalf("expected sheet rewritten with stored bookings, got %+v", writer.replacedWith)
	}

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "completed" {
		t.Fatalf("expected status=completed, got %s", status)
	}
}

func TestEnqueueTaskValidation(t *testing.T) {
	db := newTestDB(t)
	w := NewExportWorker(db, &fakeWriter{}, nil, RetryPolicy{}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, "", 1, nil); err == nil {
		t.Fatalf("expected error for missing task type")
	}
	if err := w.EnqueueTask(ctx, TaskDelete, 0, nil); err == nil {
		t.Fatalf("expected error for missing booking id")
	}
}

func TestUnknownTaskTypeFails(t *testing.T) {
	db := newTestDB(t)
	w := NewExportWorker(db, &fakeWriter{}, nil, RetryPolicy{MaxRetries: 1}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, "reindex", 5, nil); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, _ := w.tryLocalQueue()
	w.processTask(ctx, &task)

	status, _, _ := loadTaskStatus(t, db, task.ID)
	if status != "failed" {
		t.Fatalf("expected status=failed, got %s", status)
	}
}

func TestRedisQueueRoundTrip(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	db := newTestDB(t)
	writer := &fakeWriter{}
	w := NewExportWorker(db, writer, client, RetryPolicy{}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskUpsert, 0, testBooking(4)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	// The task went to redis, not the local channel.
	if _, ok := w.tryLocalQueue(); ok {
		t.Fatalf("expected empty local queue when redis is up")
	}

	task, ok := w.tryRedis(ctx)
	if !ok {
		t.Fatalf("expected task from redis queue")
	}
	w.processTask(ctx, &task)

	if writer.upsertCalls != 1 {
		t.Fatalf("expected one upsert call, got %d", writer.upsertCalls)
	}
}

func TestDeadLetterPush(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	db := newTestDB(t)
	writer := &fakeWriter{err: errors.New("fatal")}
	w := NewExportWorker(db, writer, client, RetryPolicy{MaxRetries: 1}, newWorkerLogger())

	ctx := context.Background()
	if err := w.EnqueueTask(ctx, TaskUpsert, 0, testBooking(5)); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	task, ok := w.tryRedis(ctx)
	if !ok {
		t.Fatalf("expected task from redis queue")
	}
	w.processTask(ctx, &task)

	if n, err := client.LLen(ctx, w.deadLetterKey).Result(); err != nil || n != 1 {
		t.Fatalf("expected 1 deadletter entry, got %d (err=%v)", n, err)
	}
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 5 * time.Second}, // clamped
	}
	for _, c := range cases {
		if got := p.NextDelay(c.attempt); got != c.want {
			t.Errorf("NextDelay(%d) = %v, want %v", c.attempt, got, c.want)
		}
	}

	// Zero-valued policy still yields a sane delay.
	var zero RetryPolicy
	if got := zero.NextDelay(1); got != time.Second {
		t.Errorf("zero policy NextDelay(1) = %v, want 1s", got)
	}
}
