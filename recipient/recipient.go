// Package recipient turns form responses into the people who get today's email.
package recipient

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pure-golang/encourager/logger"
	"github.com/pure-golang/encourager/sheet"
)

// Form column headers, trailing spaces included.
const (
	ColumnName        = "What would you like to be called in the email? "
	ColumnEmail       = "What's your email address? "
	ColumnContent     = "Would you like to tell me a little bit about yourself?  "
	ColumnUnsubscribe = "Unsubscribe"
)

type Config struct {
	Spreadsheet string `envconfig:"RECIPIENTS_SPREADSHEET" default:"daily_email (Responses)"`
	Worksheet   string `envconfig:"RECIPIENTS_WORKSHEET" default:"Form Responses 1"`

	DeletionSpreadsheet string `envconfig:"DELETION_LIST_SPREADSHEET" default:"daily_email (Deletion Requests)"`
	DeletionWorksheet   string `envconfig:"DELETION_LIST_WORKSHEET" default:"Form Responses 1"`

	// When set, a deletion list that cannot be read suppresses everyone.
	DeletionFailClosed bool `envconfig:"DELETION_LIST_FAIL_CLOSED" default:"false"`
}

func (c Config) Recipients() sheet.Ref {
	return sheet.Ref{Spreadsheet: c.Spreadsheet, Worksheet: c.Worksheet}
}

func (c Config) DeletionList() sheet.Ref {
	return sheet.Ref{Spreadsheet: c.DeletionSpreadsheet, Worksheet: c.DeletionWorksheet}
}

// Recipient is one person eligible for an email in this run.
type Recipient struct {
	Name    string
	Email   string
	Content string // what they told about themselves, may be empty
}

// FromRecord extracts a Recipient. ok is false for rows missing a name or
// an email and for rows that asked to unsubscribe.
func FromRecord(rec sheet.Record) (r Recipient, ok bool) {
	r = Recipient{
		Name:    strings.TrimSpace(rec.Get(ColumnName)),
		Email:   strings.TrimSpace(rec.Get(ColumnEmail)),
		Content: strings.TrimSpace(rec.Get(ColumnContent)),
	}
	if r.Name == "" || r.Email == "" {
		return r, false
	}
	if strings.EqualFold(strings.TrimSpace(rec.Get(ColumnUnsubscribe)), "yes") {
		return r, false
	}
	return r, true
}

// Source loads recipients from a worksheet.
type Source struct {
	reader sheet.Reader
	ref    sheet.Ref
}

func NewSource(reader sheet.Reader, ref sheet.Ref) *Source {
	return &Source{reader: reader, ref: ref}
}

// Load returns eligible recipients in sheet order. A read failure is logged
// and yields no recipients.
func (s *Source) Load(ctx context.Context) []Recipient {
	records, err := s.reader.Records(ctx, s.ref)
	if err != nil {
		logger.FromContextWithErr(ctx, err).Error("failed to read recipients", slog.String("sheet", s.ref.String()))
		return []Recipient{}
	}

	recipients := make([]Recipient, 0, len(records))
	excluded := 0
	for _, rec := range records {
		r, ok := FromRecord(rec)
		if !ok {
			excluded++
			continue
		}
		recipients = append(recipients, r)
	}

	logger.FromContext(ctx).Debug("recipients loaded",
		slog.String("sheet", s.ref.String()),
		slog.Int("eligible", len(recipients)),
		slog.Int("excluded", excluded),
	)
	return recipients
}
