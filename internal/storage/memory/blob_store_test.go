package memory

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contact-finder/internal/contact"
)

func TestBlobStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	ctx := context.Background()
	payload := []byte("content")
	uri, err := store.PutObject(ctx, "results/contact_results_1.xlsx", "application/octet-stream", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "memory://results/contact_results_1.xlsx", uri)

	payload[0] = 'C'
	rc, err := store.GetObject(ctx, "results/contact_results_1.xlsx")
	require.NoError(t, err)
	defer func() { require.NoError(t, rc.Close()) }()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "content", string(got))
}

func TestBlobStoreErrors(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	_, err := store.GetObject(context.Background(), "missing")
	require.ErrorIs(t, err, contact.ErrNotFound)
	_, err = store.PutObject(context.Background(), "", "", bytes.NewReader(nil))
	require.Error(t, err)
}
