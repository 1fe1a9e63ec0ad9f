package entry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"thedesk/internal/gateway/entity"
	entryrepo "thedesk/internal/gateway/repository/entry"
	mediarepo "thedesk/internal/gateway/repository/media"
	settingsrepo "thedesk/internal/gateway/repository/settings"
	"thedesk/internal/insight"
	"thedesk/internal/journal"
	"thedesk/internal/stats"
	"thedesk/internal/textnorm"
)

// AmbientChars bounds the decorative excerpt, ellipsis included.
const AmbientChars = 280

// ErrInvalid marks input the caller must fix.
var ErrInvalid = errors.New("invalid entry")

// Input carries the user-editable fields of an entry.
type Input struct {
	Kind         journal.Kind `json:"kind"`
	Title        string       `json:"title"`
	Author       string       `json:"author"`
	Body         string       `json:"body"`
	Mood         string       `json:"mood"`
	Pages        int          `json:"pages"`
	MinutesSpent int          `json:"minutesSpent"`
	OccurredAt   time.Time    `json:"occurredAt"`
}

// Ambient is a random excerpt shown next to the editor.
type Ambient struct {
	EntryID string       `json:"entryId"`
	Kind    journal.Kind `json:"kind"`
	Title   string       `json:"title"`
	Excerpt string       `json:"excerpt"`
}

type Options struct {
	Entries  entryrepo.Store
	Media    mediarepo.Store
	// Settings, when set, is wiped together with the history by Clear.
	Settings settingsrepo.Store
	Rand     insight.Rand
	Logger   *zap.Logger
	Now      func() time.Time
	Location *time.Location
}

// Service owns entry lifecycle: counters, logged dates, attachments and the
// read-side views built over a user's history.
type Service struct {
	entries  entryrepo.Store
	media    mediarepo.Store
	settings settingsrepo.Store
	rng      insight.Rand
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

func New(opts Options) *Service {
	s := &Service{
		entries:  opts.Entries,
		media:    opts.Media,
		settings: opts.Settings,
		rng:      opts.Rand,
		log:      opts.Logger,
		now:      opts.Now,
		loc:      opts.Location,
	}
	if s.rng == nil {
		s.rng = insight.DefaultRand()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	return s
}

func (s *Service) Create(ctx context.Context, user entity.UserID, in Input) (journal.Entry, error) {
	if user.IsZero() {
		return journal.Entry{}, fmt.Errorf("%w: user is required", ErrInvalid)
	}
	kind, err := journal.ParseKind(string(in.Kind))
	if err != nil {
		return journal.Entry{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	e := journal.Entry{UserID: user.String(), Kind: kind}
	if err := s.apply(&e, in); err != nil {
		return journal.Entry{}, err
	}
	out, err := s.entries.Create(ctx, e)
	if err != nil {
		return journal.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	return out, nil
}

// Update replaces the editable fields of an existing entry. The kind and the
// attached image are kept; a zero OccurredAt keeps the original time.
func (s *Service) Update(ctx context.Context, user entity.UserID, id string, in Input) (journal.Entry, error) {
	e, err := s.entries.Get(ctx, user.String(), id)
	if err != nil {
		return journal.Entry{}, err
	}
	if in.Kind != "" {
		kind, err := journal.ParseKind(string(in.Kind))
		if err != nil || kind != e.Kind {
			return journal.Entry{}, fmt.Errorf("%w: kind cannot change", ErrInvalid)
		}
	}
	if in.OccurredAt.IsZero() {
		in.OccurredAt = e.OccurredAt
	}
	if err := s.apply(&e, in); err != nil {
		return journal.Entry{}, err
	}
	if err := s.entries.Update(ctx, e); err != nil {
		return journal.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	return e, nil
}

func (s *Service) apply(e *journal.Entry, in Input) error {
	e.Title = strings.TrimSpace(in.Title)
	e.Body = in.Body
	e.Mood = strings.TrimSpace(in.Mood)
	e.Pages = in.Pages
	e.MinutesSpent = in.MinutesSpent
	e.OccurredAt = in.OccurredAt
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	e.LoggedDate = e.OccurredAt.In(s.loc).Format(journal.LoggedDateLayout)

	switch e.Kind {
	case journal.KindWriting:
		if e.Title == "" {
			e.Title = journal.UntitledEntry
		}
		e.Author = ""
		e.Pages = 0
		e.WordCount, e.CharCount = textnorm.Counts(e.Body)
	case journal.KindReading:
		e.Author = strings.TrimSpace(in.Author)
		e.WordCount, e.CharCount = 0, 0
	}
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, user entity.UserID, limit int) ([]journal.Entry, error) {
	return s.entries.ListRecent(ctx, user.String(), limit)
}

func (s *Service) Get(ctx context.Context, user entity.UserID, id string) (journal.Entry, error) {
	return s.entries.Get(ctx, user.String(), id)
}

func (s *Service) Delete(ctx context.Context, user entity.UserID, id string) error {
	e, err := s.entries.Get(ctx, user.String(), id)
	if err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, user.String(), id); err != nil {
		return err
	}
	if e.ImageKey != "" && s.media != nil {
		if err := s.media.Delete(ctx, user.String(), e.ImageKey); err != nil {
			s.log.Warn("delete entry image failed",
				zap.String("user_id", user.String()),
				zap.String("entry_id", id),
				zap.Error(err))
		}
	}
	return nil
}

// Clear removes the user's whole history, attachments and saved settings
// included.
func (s *Service) Clear(ctx context.Context, user entity.UserID) (int, error) {
	n, err := s.entries.Clear(ctx, user.String())
	if err != nil {
		return n, fmt.Errorf("clear entries: %w", err)
	}
	if s.settings != nil {
		if err := s.settings.Delete(ctx, user.String()); err != nil {
			s.log.Warn("delete settings failed", zap.String("user_id", user.String()), zap.Error(err))
		}
	}
	if s.media == nil {
		return n, nil
	}
	keys, err := s.media.List(ctx, user.String())
	if err != nil {
		s.log.Warn("list media for clear failed", zap.String("user_id", user.String()), zap.Error(err))
		return n, nil
	}
	for _, key := range keys {
		if err := s.media.Delete(ctx, user.String(), key); err != nil {
			s.log.Warn("delete media failed", zap.String("user_id", user.String()), zap.String("key", key), zap.Error(err))
		}
	}
	return n, nil
}

// AttachImage stores content as the inspiration image of a writing entry,
// replacing any previous one.
func (s *Service) AttachImage(ctx context.Context, user entity.UserID, id, name string, content []byte) (journal.Entry, error) {
	if s.media == nil {
		return journal.Entry{}, fmt.Errorf("media store is not configured")
	}
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return journal.Entry{}, fmt.Errorf("%w: image name is required", ErrInvalid)
	}
	if len(content) == 0 {
		return journal.Entry{}, fmt.Errorf("%w: image is empty", ErrInvalid)
	}
	e, err := s.entries.Get(ctx, user.String(), id)
	if err != nil {
		return journal.Entry{}, err
	}
	if !e.IsWriting() {
		return journal.Entry{}, fmt.Errorf("%w: images attach to writing entries only", ErrInvalid)
	}

	key := e.ID + "/" + name
	if err := s.media.Put(ctx, user.String(), key, content); err != nil {
		return journal.Entry{}, fmt.Errorf("store image: %w", err)
	}
	prev := e.ImageKey
	e.ImageKey = key
	if err := s.entries.Update(ctx, e); err != nil {
		return journal.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	if prev != "" && prev != key {
		if err := s.media.Delete(ctx, user.String(), prev); err != nil {
			s.log.Warn("delete replaced image failed",
				zap.String("user_id", user.String()),
				zap.String("entry_id", id),
				zap.String("key", prev),
				zap.Error(err))
		}
	}
	return e, nil
}

// Image returns the attached image bytes and, when the backend can presign,
// a download URL.
func (s *Service) Image(ctx context.Context, user entity.UserID, id string) ([]byte, string, error) {
	if s.media == nil {
		return nil, "", mediarepo.ErrNotFound
	}
	e, err := s.entries.Get(ctx, user.String(), id)
	if err != nil {
		return nil, "", err
	}
	if e.ImageKey == "" {
		return nil, "", mediarepo.ErrNotFound
	}
	raw, err := s.media.Get(ctx, user.String(), e.ImageKey)
	if err != nil {
		return nil, "", err
	}
	url, err := s.media.GetURL(ctx, user.String(), e.ImageKey)
	if err != nil {
		s.log.Debug("presign image failed", zap.String("entry_id", id), zap.Error(err))
		url = ""
	}
	return raw, url, nil
}

// Ambient picks a random entry with some text and returns its excerpt. It
// reports false when the user has nothing to show.
func (s *Service) Ambient(ctx context.Context, user entity.UserID) (Ambient, bool, error) {
	list, err := s.entries.ListRecent(ctx, user.String(), insight.MaxEntries)
	if err != nil {
		return Ambient{}, false, err
	}
	candidates := make([]Ambient, 0, len(list))
	for _, e := range list {
		excerpt := textnorm.Excerpt(e.Body, AmbientChars-1)
		if excerpt == "" {
			continue
		}
		candidates = append(candidates, Ambient{
			EntryID: e.ID,
			Kind:    e.Kind,
			Title:   e.DisplayTitle(),
			Excerpt: excerpt,
		})
	}
	if len(candidates) == 0 {
		return Ambient{}, false, nil
	}
	return candidates[s.rng.Intn(len(candidates))], true, nil
}

func (s *Service) Stats(ctx context.Context, user entity.UserID) (stats.Summary, error) {
	list, err := s.entries.ListRecent(ctx, user.String(), entryrepo.MaxListLimit)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Compute(list, s.now().In(s.loc)), nil
}
