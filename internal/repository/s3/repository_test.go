package s3

import (
	"context"
	"net/http/httptest"
	"testing"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient поднимает gofakes3 в памяти и создает бакет
func newTestClient(t *testing.T, bucket string) *s3.Client {
	t.Helper()

	faker := gofakes3.New(s3mem.New())
	ts := httptest.NewServer(faker.Server())
	t.Cleanup(ts.Close)

	ctx := context.Background()
	client, err := NewClient(ctx, Config{
		Endpoint:        ts.URL,
		Region:          "us-east-1",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	require.NoError(t, err)

	return client
}

func TestS3Repository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, "notes")
	repo := NewRepository(client, "notes", "")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "a missing object is an empty collection")

	note, err := repo.Create(ctx, model.NoteInput{Title: "En la nube", Body: "objeto"})
	require.NoError(t, err)

	reopened := NewRepository(client, "notes", DefaultKey)
	got, ok, err := reopened.GetByID(ctx, note.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "objeto", got.Body)

	body := "otro"
	updated, ok, err := reopened.Update(ctx, note.ID, model.NotePatch{Body: &body})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "En la nube", updated.Title)

	require.NoError(t, repo.DeleteMany(ctx, []string{note.ID, "ghost"}))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestS3Repository_MissingBucket(t *testing.T) {
	client := newTestClient(t, "notes")
	repo := NewRepository(client, "no-such-bucket", "")

	_, err := repo.Create(context.Background(), model.NoteInput{Title: "x"})
	assert.ErrorIs(t, err, repository.ErrStorage)
}
