package recipient

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/encourager/sheet"
)

var (
	responses = sheet.Ref{Spreadsheet: "daily_email (Responses)", Worksheet: "Form Responses 1"}
	deletions = sheet.Ref{Spreadsheet: "daily_email (Deletion Requests)", Worksheet: "Form Responses 1"}
)

// fakeReader serves records per ref and counts reads.
type fakeReader struct {
	records map[sheet.Ref][]sheet.Record
	err     error
	reads   int
}

func (f *fakeReader) Records(_ context.Context, ref sheet.Ref) ([]sheet.Record, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	recs, ok := f.records[ref]
	if !ok {
		return nil, errors.Wrapf(sheet.ErrNotFound, "spreadsheet %q", ref.Spreadsheet)
	}
	return recs, nil
}

func row(name, email, content, unsubscribe string) sheet.Record {
	return sheet.Record{
		"Timestamp":       "1/1/2025 9:00:00",
		ColumnName:        name,
		ColumnEmail:       email,
		ColumnContent:     content,
		ColumnUnsubscribe: unsubscribe,
	}
}

func TestFromRecord(t *testing.T) {
	tests := []struct {
		name string
		rec  sheet.Record
		want Recipient
		ok   bool
	}{
		{
			name: "complete row",
			rec:  row(" Ann ", " ann@example.com ", " rough week ", ""),
			want: Recipient{Name: "Ann", Email: "ann@example.com", Content: "rough week"},
			ok:   true,
		},
		{
			name: "no content",
			rec:  row("Bob", "bob@example.com", "", "No"),
			want: Recipient{Name: "Bob", Email: "bob@example.com"},
			ok:   true,
		},
		{name: "missing name", rec: row("", "x@example.com", "", ""), ok: false},
		{name: "blank name", rec: row("   ", "x@example.com", "", ""), ok: false},
		{name: "missing email", rec: row("Cy", "", "", ""), ok: false},
		{name: "unsubscribed Yes", rec: row("Di", "di@example.com", "", "Yes"), ok: false},
		{name: "unsubscribed yes", rec: row("Di", "di@example.com", "", "yes"), ok: false},
		{name: "unsubscribed YES padded", rec: row("Di", "di@example.com", "", " YES "), ok: false},
		{
			name: "unsubscribe other value",
			rec:  row("Ed", "ed@example.com", "", "yesterday"),
			want: Recipient{Name: "Ed", Email: "ed@example.com"},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FromRecord(tt.rec)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFromRecord_TrimmedHeaders(t *testing.T) {
	rec := sheet.Record{
		"What would you like to be called in the email?": "Ann",
		"What's your email address?":                     "ann@example.com",
	}

	got, ok := FromRecord(rec)

	require.True(t, ok)
	assert.Equal(t, Recipient{Name: "Ann", Email: "ann@example.com"}, got)
}

func TestSource_Load(t *testing.T) {
	reader := &fakeReader{records: map[sheet.Ref][]sheet.Record{
		responses: {
			row("Ann", "ann@example.com", "", ""),
			row("", "nobody@example.com", "", ""),
			row("Bob", "bob@example.com", "new job", "no"),
			row("Cy", "cy@example.com", "", "YES"),
		},
	}}

	got := NewSource(reader, responses).Load(context.Background())

	assert.Equal(t, []Recipient{
		{Name: "Ann", Email: "ann@example.com"},
		{Name: "Bob", Email: "bob@example.com", Content: "new job"},
	}, got)
}

func TestSource_Load_ReadError(t *testing.T) {
	reader := &fakeReader{err: errors.New("quota exceeded")}

	got := NewSource(reader, responses).Load(context.Background())

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSource_Load_MissingSpreadsheet(t *testing.T) {
	got := NewSource(&fakeReader{}, responses).Load(context.Background())

	assert.Empty(t, got)
}

func TestConfig_Refs(t *testing.T) {
	c := Config{
		Spreadsheet:         "daily_email (Responses)",
		Worksheet:           "Form Responses 1",
		DeletionSpreadsheet: "daily_email (Deletion Requests)",
		DeletionWorksheet:   "Form Responses 1",
	}

	assert.Equal(t, responses, c.Recipients())
	assert.Equal(t, deletions, c.DeletionList())
}
