package entry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"thedesk/internal/gateway/entity"
	entryrepo "thedesk/internal/gateway/repository/entry"
	mediarepo "thedesk/internal/gateway/repository/media"
	settingsrepo "thedesk/internal/gateway/repository/settings"
	"thedesk/internal/journal"
)

type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

const user entity.UserID = "reader-1"

func newService(t *testing.T) (*Service, *mediarepo.MemoryStore) {
	t.Helper()
	media := mediarepo.NewMemoryStore()
	now := time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)
	return New(Options{
		Entries:  entryrepo.NewMemoryStore(),
		Media:    media,
		Rand:     firstRand{},
		Now:      func() time.Time { return now },
		Location: time.UTC,
	}), media
}

func TestCreateWritingDefaults(t *testing.T) {
	svc, _ := newService(t)
	e, err := svc.Create(context.Background(), user, Input{
		Kind: journal.KindWriting,
		Body: "<p>The <b>quiet</b> hour</p><p>before dawn</p>",
		Mood: " calm ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, journal.UntitledEntry, e.Title)
	assert.Equal(t, 5, e.WordCount)
	assert.Equal(t, len("The quiet hour before dawn"), e.CharCount)
	assert.Equal(t, "calm", e.Mood)
	assert.Equal(t, "Mar 15, 2025", e.LoggedDate)
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user, Input{Kind: journal.KindReading})
	assert.ErrorIs(t, err, ErrInvalid, "reading needs a title")

	_, err = svc.Create(ctx, user, Input{Kind: "poetry", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, "", Input{Kind: journal.KindWriting})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Create(ctx, user, Input{Kind: journal.KindReading, Title: "Dune", Pages: -1})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestUpdateKeepsKindAndTime(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	at := time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC)

	e, err := svc.Create(ctx, user, Input{Kind: journal.KindReading, Title: "Dune", Author: "Herbert", Pages: 40, OccurredAt: at})
	require.NoError(t, err)

	up, err := svc.Update(ctx, user, e.ID, Input{Title: "Dune Messiah", Pages: 12})
	require.NoError(t, err)
	assert.Equal(t, journal.KindReading, up.Kind)
	assert.Equal(t, at, up.OccurredAt)
	assert.Equal(t, "Jan 2, 2025", up.LoggedDate)

	got, err := svc.Get(ctx, user, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, 12, got.Pages)

	_, err = svc.Update(ctx, user, e.ID, Input{Kind: journal.KindWriting})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = svc.Update(ctx, user, "missing", Input{Title: "x"})
	assert.ErrorIs(t, err, entryrepo.ErrNotFound)
}

func TestAttachImageAndClear(t *testing.T) {
	svc, media := newService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, user, Input{Kind: journal.KindWriting, Title: "Draft", Body: "words"})
	require.NoError(t, err)
	r, err := svc.Create(ctx, user, Input{Kind: journal.KindReading, Title: "Book"})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, user, r.ID, "a.png", []byte("png"))
	assert.ErrorIs(t, err, ErrInvalid)

	w, err = svc.AttachImage(ctx, user, w.ID, "../../etc/a.png", []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, w.ID+"/a.png", w.ImageKey)

	raw, url, err := svc.Image(ctx, user, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))
	assert.Empty(t, url)

	_, _, err = svc.Image(ctx, user, r.ID)
	assert.ErrorIs(t, err, mediarepo.ErrNotFound)

	n, err := svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	keys, err := media.List(ctx, user.String())
	require.NoError(t, err)
	assert.Empty(t, keys)

	list, err := svc.List(ctx, user, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteRemovesImage(t *testing.T) {
	svc, media := newService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, user, Input{Kind: journal.KindWriting, Body: "x"})
	require.NoError(t, err)
	_, err = svc.AttachImage(ctx, user, w.ID, "cover.jpg", []byte("jpg"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, user, w.ID))
	keys, _ := media.List(ctx, user.String())
	assert.Empty(t, keys)

	err = svc.Delete(ctx, user, w.ID)
	assert.True(t, errors.Is(err, entryrepo.ErrNotFound))
}

func TestAmbient(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, ok, err := svc.Ambient(ctx, user)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = svc.Create(ctx, user, Input{Kind: journal.KindReading, Title: "No notes"})
	require.NoError(t, err)
	long := "<p>" + strings.Repeat("lantern ", 100) + "</p>"
	w, err := svc.Create(ctx, user, Input{Kind: journal.KindWriting, Title: "Night", Body: long})
	require.NoError(t, err)

	a, ok, err := svc.Ambient(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, w.ID, a.EntryID)
	assert.Equal(t, "Night", a.Title)
	assert.LessOrEqual(t, len([]rune(a.Excerpt)), AmbientChars)
	assert.NotContains(t, a.Excerpt, "<p>")
}

func TestStats(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user, Input{Kind: journal.KindReading, Title: "A", Pages: 30})
	require.NoError(t, err)
	_, err = svc.Create(ctx, user, Input{Kind: journal.KindWriting, Body: "one two three"})
	require.NoError(t, err)

	sum, err := svc.Stats(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ReadingSessions)
	assert.Equal(t, 1, sum.WritingSessions)
	assert.Equal(t, 30, sum.TotalPages)
	assert.Equal(t, 3, sum.TotalWords)
	assert.Equal(t, 1, sum.Streak)
}

func TestClearRemovesSettings(t *testing.T) {
	ctx := context.Background()
	prefs := settingsrepo.NewMemoryStore()
	require.NoError(t, prefs.Put(ctx, user.String(), journal.DefaultPreferences()))
	require.NoError(t, prefs.Put(ctx, "someone-else", journal.DefaultPreferences()))

	svc := New(Options{Entries: entryrepo.NewMemoryStore(), Settings: prefs})
	_, err := svc.Create(ctx, user, Input{Kind: journal.KindWriting, Body: "x"})
	require.NoError(t, err)

	n, err := svc.Clear(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = prefs.Get(ctx, user.String())
	assert.ErrorIs(t, err, settingsrepo.ErrNotFound)
	_, err = prefs.Get(ctx, "someone-else")
	assert.NoError(t, err)
}

// stuckMedia refuses every delete.
type stuckMedia struct {
	*mediarepo.MemoryStore
}

func (stuckMedia) Delete(context.Context, string, string) error {
	return errors.New("bucket is read-only")
}

func TestAttachImageLogsFailedReplace(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.WarnLevel)
	svc := New(Options{
		Entries: entryrepo.NewMemoryStore(),
		Media:   stuckMedia{mediarepo.NewMemoryStore()},
		Logger:  zap.New(core),
	})

	w, err := svc.Create(ctx, user, Input{Kind: journal.KindWriting, Body: "x"})
	require.NoError(t, err)
	_, err = svc.AttachImage(ctx, user, w.ID, "first.png", []byte("1"))
	require.NoError(t, err)
	w, err = svc.AttachImage(ctx, user, w.ID, "second.png", []byte("2"))
	require.NoError(t, err, "a stale image does not fail the upload")
	assert.Equal(t, w.ID+"/second.png", w.ImageKey)

	warns := logs.FilterMessage("delete replaced image failed").All()
	require.Len(t, warns, 1)
	assert.Equal(t, w.ID+"/first.png", warns[0].ContextMap()["key"])
}
