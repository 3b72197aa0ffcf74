package recipient

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/sheet"
)

// DeletionList is a set of addresses that must never be emailed.
type DeletionList map[string]struct{}

func NewDeletionList(emails ...string) DeletionList {
	l := make(DeletionList, len(emails))
	for _, e := range emails {
		if e = normalize(e); e != "" {
			l[e] = struct{}{}
		}
	}
	return l
}

// Contains compares addresses trimmed and case-insensitively.
func (l DeletionList) Contains(email string) bool {
	_, ok := l[normalize(email)]
	return ok
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Suppressor answers whether an address is on the deletion list. The list
// is read on the first question and kept for the rest of the run. A failed
// read is retried on the next question.
type Suppressor struct {
	reader     sheet.Reader
	ref        sheet.Ref
	failClosed bool

	mx     sync.Mutex
	list   DeletionList
	loaded bool
}

type SuppressorOption func(*Suppressor)

// WithFailClosed makes an unreadable deletion list suppress every address.
func WithFailClosed(failClosed bool) SuppressorOption {
	return func(s *Suppressor) {
		s.failClosed = failClosed
	}
}

func NewSuppressor(reader sheet.Reader, ref sheet.Ref, opts ...SuppressorOption) *Suppressor {
	s := &Suppressor{reader: reader, ref: ref}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsSuppressed reports whether email must be skipped. While the list cannot
// be read the answer follows WithFailClosed.
func (s *Suppressor) IsSuppressed(ctx context.Context, email string) bool {
	s.mx.Lock()
	defer s.mx.Unlock()

	if !s.loaded {
		s.load(ctx)
	}
	if !s.loaded {
		return s.failClosed
	}
	return s.list.Contains(email)
}

func (s *Suppressor) load(ctx context.Context) {
	records, err := s.reader.Records(ctx, s.ref)
	if err != nil {
		logger.FromContextWithErr(ctx, err).Error("failed to read deletion list",
			slog.String("sheet", s.ref.String()),
			slog.Bool("fail_closed", s.failClosed),
		)
		return
	}

	emails := make([]string, 0, len(records))
	for _, rec := range records {
		emails = append(emails, rec.Get(ColumnEmail))
	}
	s.list = NewDeletionList(emails...)
	s.loaded = true

	logger.FromContext(ctx).Debug("deletion list loaded",
		slog.String("sheet", s.ref.String()),
		slog.Int("entries", len(s.list)),
	)
}
