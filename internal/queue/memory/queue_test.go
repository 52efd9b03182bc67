package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func TestDequeueWaitsForSubmission(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	got := make(chan contact.QueueItem, 1)
	go func() {
		item, err := q.Dequeue(context.Background())
		if err == nil {
			got <- item
		}
	}()

	require.NoError(t, q.Enqueue(context.Background(), contact.QueueItem{JobID: "job-1", InputFilename: "a.xlsx"}))
	select {
	case item := <-got:
		require.Equal(t, "job-1", item.JobID)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not return the submitted job")
	}
}

func TestSubmissionsKeepArrivalOrder(t *testing.T) {
	t.Parallel()

	q := NewQueue(3)
	ctx := context.Background()
	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, q.Enqueue(ctx, contact.QueueItem{JobID: id}))
	}
	require.Equal(t, 3, q.Len())
	for _, want := range []string{"first", "second", "third"} {
		item, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.Equal(t, want, item.JobID)
	}
	require.Zero(t, q.Len())
}

func TestFullQueueHonorsContext(t *testing.T) {
	t.Parallel()

	q := NewQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), contact.QueueItem{JobID: "running-next"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, contact.QueueItem{JobID: "overflow"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	canceled, stop := context.WithCancel(context.Background())
	stop()
	_, err = NewQueue(1).Dequeue(canceled)
	require.ErrorIs(t, err, context.Canceled)
}

func TestCloseDrainsThenReportsClosed(t *testing.T) {
	t.Parallel()

	q := NewQueue(2)
	require.NoError(t, q.Enqueue(context.Background(), contact.QueueItem{JobID: "queued"}))
	q.Close()
	q.Close()

	err := q.Enqueue(context.Background(), contact.QueueItem{JobID: "late"})
	require.True(t, errors.Is(err, contact.ErrQueueClosed))

	item, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.Equal(t, "queued", item.JobID)

	_, err = q.Dequeue(context.Background())
	require.ErrorIs(t, err, contact.ErrQueueClosed)
}
