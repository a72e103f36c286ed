package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"notes-store/internal/model"
	"notes-store/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// bufferMedium хранит документ в памяти, для тестов
type bufferMedium struct {
	data    []byte
	exists  bool
	loadErr error
	saveErr error
	saves   int
}

func (m *bufferMedium) Load(ctx context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if !m.exists {
		return nil, ErrNotExist
	}
	return append([]byte(nil), m.data...), nil
}

func (m *bufferMedium) Save(ctx context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]byte(nil), data...)
	m.exists = true
	m.saves++
	return nil
}

// stepClock возвращает время, каждый раз сдвигаясь на step
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestRepo(m *bufferMedium) repository.NoteRepository {
	clock := &stepClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), step: time.Second}
	return NewRepository(m, WithClock(clock.Now))
}

func strPtr(s string) *string {
	return &s
}

func TestRepository_EmptyStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, notes)
	assert.Empty(t, notes)

	_, ok, err := repo.GetByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_BlankDocumentIsEmpty(t *testing.T) {
	for _, doc := range []string{"", "  \n", "null", "[]"} {
		t.Run(fmt.Sprintf("%q", doc), func(t *testing.T) {
			repo := newTestRepo(&bufferMedium{data: []byte(doc), exists: true})

			notes, err := repo.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, notes)
		})
	}
}

func TestRepository_Create(t *testing.T) {
	ctx := context.Background()
	m := &bufferMedium{}
	repo := newTestRepo(m)

	note, err := repo.Create(ctx, model.NoteInput{Title: "Proyecto", Body: "Integrar Swagger"})
	require.NoError(t, err)

	assert.NotEmpty(t, note.ID)
	assert.Equal(t, "Proyecto", note.Title)
	assert.Equal(t, "Integrar Swagger", note.Body)
	assert.True(t, note.CreatedAt.Equal(note.UpdatedAt))
	assert.Equal(t, 1, m.saves)

	var stored []model.Note
	require.NoError(t, json.Unmarshal(m.data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, note.ID, stored[0].ID)
	assert.True(t, note.CreatedAt.Equal(stored[0].CreatedAt))
}

func TestRepository_CreateDefaults(t *testing.T) {
	repo := newTestRepo(&bufferMedium{})

	note, err := repo.Create(context.Background(), model.NoteInput{})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultTitle, note.Title)
	assert.Equal(t, "", note.Body)
}

func TestRepository_CreateRegeneratesDuplicateID(t *testing.T) {
	ids := []string{"dup", "dup", "fresh"}
	gen := func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	repo := NewRepository(&bufferMedium{}, WithIDGenerator(gen))
	ctx := context.Background()

	first, err := repo.Create(ctx, model.NoteInput{Title: "one"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, model.NoteInput{Title: "two"})
	require.NoError(t, err)

	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestRepository_ListRedactsBody(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	created, err := repo.Create(ctx, model.NoteInput{Title: "Nota", Body: "contenido secreto"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.Summary(), list[0])

	raw, err := json.Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "contenido secreto")
	assert.NotContains(t, string(raw), `"body"`)

	full, ok, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "contenido secreto", full.Body)
}

func TestRepository_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	orig, err := repo.Create(ctx, model.NoteInput{Title: "T", Body: "B"})
	require.NoError(t, err)

	afterTitle, ok, err := repo.Update(ctx, orig.ID, model.NotePatch{Title: strPtr("T2")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T2", afterTitle.Title)
	assert.Equal(t, "B", afterTitle.Body)
	assert.True(t, afterTitle.UpdatedAt.After(orig.UpdatedAt))
	assert.True(t, afterTitle.CreatedAt.Equal(orig.CreatedAt))

	afterBody, ok, err := repo.Update(ctx, orig.ID, model.NotePatch{Body: strPtr("B2")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "T2", afterBody.Title)
	assert.Equal(t, "B2", afterBody.Body)
	assert.True(t, afterBody.UpdatedAt.After(afterTitle.UpdatedAt))

	stored, ok, err := repo.GetByID(ctx, orig.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "B2", stored.Body)
}

func TestRepository_UpdateWithStoppedClockStillAdvances(t *testing.T) {
	fixed := time.Date(2024, 5, 5, 10, 0, 0, 0, time.UTC)
	repo := NewRepository(&bufferMedium{}, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	orig, err := repo.Create(ctx, model.NoteInput{Title: "T"})
	require.NoError(t, err)

	updated, ok, err := repo.Update(ctx, orig.ID, model.NotePatch{})
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))
}

func TestRepository_UpdateMissing(t *testing.T) {
	m := &bufferMedium{}
	repo := newTestRepo(m)

	note, ok, err := repo.Update(context.Background(), "missing", model.NotePatch{Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, note)
	assert.Equal(t, 0, m.saves, "nothing must be written for a missing note")
}

func TestRepository_DeleteManyPartialAndIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	a, err := repo.Create(ctx, model.NoteInput{Title: "a"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, model.NoteInput{Title: "b"})
	require.NoError(t, err)
	c, err := repo.Create(ctx, model.NoteInput{Title: "c"})
	require.NoError(t, err)

	ids := []string{a.ID, "does-not-exist", c.ID}
	require.NoError(t, repo.DeleteMany(ctx, ids))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	require.NoError(t, repo.DeleteMany(ctx, ids))
	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRepository_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	var want []string
	for i := 0; i < 5; i++ {
		n, err := repo.Create(ctx, model.NoteInput{Title: fmt.Sprintf("note %d", i)})
		require.NoError(t, err)
		want = append(want, n.ID)
	}
	require.NoError(t, repo.DeleteMany(ctx, []string{want[1]}))
	want = append(want[:1], want[2:]...)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	var got []string
	for _, s := range list {
		got = append(got, s.ID)
	}
	assert.Equal(t, want, got)
}

func TestRepository_StorageErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk on fire")

	t.Run("load failure", func(t *testing.T) {
		repo := newTestRepo(&bufferMedium{loadErr: boom})

		_, err := repo.List(ctx)
		assert.ErrorIs(t, err, repository.ErrStorage)
		assert.ErrorIs(t, err, boom)

		_, _, err = repo.GetByID(ctx, "x")
		assert.ErrorIs(t, err, repository.ErrStorage)
	})

	t.Run("corrupt document", func(t *testing.T) {
		repo := newTestRepo(&bufferMedium{data: []byte("{not json"), exists: true})

		_, err := repo.Create(ctx, model.NoteInput{Title: "x"})
		assert.ErrorIs(t, err, repository.ErrStorage)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := newTestRepo(&bufferMedium{saveErr: boom})

		_, err := repo.Create(ctx, model.NoteInput{Title: "x"})
		assert.ErrorIs(t, err, repository.ErrStorage)
		assert.ErrorIs(t, repo.DeleteMany(ctx, []string{"x"}), repository.ErrStorage)
	})
}

func TestRepository_RoundTripScenario(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(&bufferMedium{})

	created, err := repo.Create(ctx, model.NoteInput{Title: "Nota E2E de Prueba", Body: "Contenido inicial de la nota"})
	require.NoError(t, err)
	id := created.ID

	got, ok, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Contenido inicial de la nota", got.Body)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	updated, ok, err := repo.Update(ctx, id, model.NotePatch{Title: strPtr("Nota E2E Actualizada")})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Nota E2E Actualizada", updated.Title)
	assert.Equal(t, "Contenido inicial de la nota", updated.Body)

	require.NoError(t, repo.DeleteMany(ctx, []string{id}))
	_, ok, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_CreateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := NewRepository(&bufferMedium{})
		seen := map[string]bool{}

		inputs := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) model.NoteInput {
			return model.NoteInput{
				Title: rapid.String().Draw(t, "title"),
				Body:  rapid.String().Draw(t, "body"),
			}
		}), 1, 8).Draw(t, "inputs")

		for _, in := range inputs {
			note, err := repo.Create(ctx, in)
			require.NoError(t, err)

			require.NotEmpty(t, note.ID)
			require.False(t, seen[note.ID], "id %q reused", note.ID)
			seen[note.ID] = true
			require.True(t, note.CreatedAt.Equal(note.UpdatedAt))

			wantTitle := in.Title
			if wantTitle == "" {
				wantTitle = model.DefaultTitle
			}
			require.Equal(t, wantTitle, note.Title)
			require.Equal(t, in.Body, note.Body)

			stored, ok, err := repo.GetByID(ctx, note.ID)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, in.Body, stored.Body)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, len(inputs))
	})
}

func TestRepository_UpdateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := NewRepository(&bufferMedium{})

		orig, err := repo.Create(ctx, model.NoteInput{
			Title: rapid.StringN(1, 20, -1).Draw(t, "title"),
			Body:  rapid.String().Draw(t, "body"),
		})
		require.NoError(t, err)

		var patch model.NotePatch
		if rapid.Bool().Draw(t, "hasTitle") {
			patch.Title = strPtr(rapid.String().Draw(t, "newTitle"))
		}
		if rapid.Bool().Draw(t, "hasBody") {
			patch.Body = strPtr(rapid.String().Draw(t, "newBody"))
		}

		updated, ok, err := repo.Update(ctx, orig.ID, patch)
		require.NoError(t, err)
		require.True(t, ok)

		wantTitle, wantBody := orig.Title, orig.Body
		if patch.Title != nil {
			wantTitle = *patch.Title
		}
		if patch.Body != nil {
			wantBody = *patch.Body
		}
		require.Equal(t, wantTitle, updated.Title)
		require.Equal(t, wantBody, updated.Body)
		require.Equal(t, orig.ID, updated.ID)
		require.True(t, updated.UpdatedAt.After(orig.UpdatedAt))
		require.False(t, updated.CreatedAt.After(updated.UpdatedAt))
	})
}

func TestRepository_DeleteProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		repo := NewRepository(&bufferMedium{})

		n := rapid.IntRange(0, 6).Draw(t, "n")
		var ids []string
		for i := 0; i < n; i++ {
			note, err := repo.Create(ctx, model.NoteInput{Title: fmt.Sprintf("n%d", i)})
			require.NoError(t, err)
			ids = append(ids, note.ID)
		}

		var target []string
		removed := map[string]bool{}
		for _, id := range ids {
			if rapid.Bool().Draw(t, "delete") {
				target = append(target, id)
				removed[id] = true
			}
		}
		target = append(target, rapid.SliceOf(rapid.StringMatching(`ghost-[a-z]{3}`)).Draw(t, "ghosts")...)

		for round := 0; round < 2; round++ {
			require.NoError(t, repo.DeleteMany(ctx, target))

			list, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, len(ids)-len(removed))
			for _, s := range list {
				require.False(t, removed[s.ID])
			}
		}
	})
}
