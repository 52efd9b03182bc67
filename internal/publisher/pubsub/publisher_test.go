package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func TestPublishCompletionEvent(t *testing.T) {
	ctx := context.Background()

	srv := pstest.NewServer()
	defer func() { _ = srv.Close() }()

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	client, err := pubsub.NewClient(ctx, "project-id", option.WithGRPCConn(conn))
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	topic, err := client.CreateTopic(ctx, "job-events")
	require.NoError(t, err)
	sub, err := client.CreateSubscription(ctx, "job-events-sub", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	pub := New(client)
	defer func() { require.NoError(t, pub.Close()) }()

	event := contact.CompletionEvent{
		JobID:      "job-1",
		Status:     contact.JobStatusSucceeded,
		ResultURI:  "gs://bucket/results/contact_results_1.xlsx",
		Summary:    &contact.Summary{Filename: "contact_results_1.xlsx", TotalCompanies: 3, FoundEmails: 1},
		Message:    "Done!",
		FinishedAt: time.Unix(1700000000, 0).UTC(),
	}
	id, err := pub.Publish(ctx, "job-events", event)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	recvCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	received := make(chan []byte, 1)
	go func() {
		_ = sub.Receive(recvCtx, func(_ context.Context, msg *pubsub.Message) {
			msg.Ack()
			select {
			case received <- msg.Data:
			default:
			}
			cancel()
		})
	}()

	select {
	case data := <-received:
		var got contact.CompletionEvent
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, event, got)
	case <-recvCtx.Done():
		t.Fatal("message was not delivered")
	}
}

func TestPublishRequiresClientAndTopic(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Publish(context.Background(), "topic", "payload")
	require.Error(t, err)

	_, err = (&Publisher{client: &pubsub.Client{}, topics: map[string]*pubsub.Topic{}}).Publish(context.Background(), "", "payload")
	require.ErrorContains(t, err, "topic is required")
}

func TestPubsubCarrier(t *testing.T) {
	t.Parallel()

	c := &pubsubCarrier{attrs: map[string]string{}}
	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, []string{"traceparent"}, c.Keys())
}
