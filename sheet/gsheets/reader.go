package gsheets

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/pure-golang/encourager/sheet"
)

var _ sheet.Reader = (*Reader)(nil)

var tracer = otel.Tracer("github.com/pure-golang/encourager/sheet/gsheets")

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Config points at a service account key that has read access to the spreadsheets.
type Config struct {
	CredentialsFile string `envconfig:"SHEETS_CREDENTIALS_FILE" default:"credentials.json"`
}

// Reader reads worksheets through the Sheets API, resolving spreadsheet
// titles to IDs through Drive. Services are created on first use, so a
// missing key file surfaces as a read error rather than a startup failure.
type Reader struct {
	cfg  Config
	opts []option.ClientOption

	sheets *sheets.Service
	drive  *drive.Service
	ids    map[string]string
}

// New creates a Reader. When opts are given they replace the key file,
// which is how tests point the Reader at a fake endpoint.
func New(cfg Config, opts ...option.ClientOption) *Reader {
	return &Reader{
		cfg:  cfg,
		opts: opts,
		ids:  make(map[string]string),
	}
}

// Records returns every non-blank row of ref keyed by its header row.
func (r *Reader) Records(ctx context.Context, ref sheet.Ref) ([]sheet.Record, error) {
	ctx, span := tracer.Start(ctx, "GSheets.Records", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("sheet.spreadsheet", ref.Spreadsheet),
		attribute.String("sheet.worksheet", ref.Worksheet),
	)

	records, err := r.records(ctx, ref)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("sheet.records", len(records)))
	span.SetStatus(codes.Ok, "")
	return records, nil
}

func (r *Reader) records(ctx context.Context, ref sheet.Ref) ([]sheet.Record, error) {
	if err := r.connect(ctx); err != nil {
		return nil, err
	}

	id, err := r.spreadsheetID(ctx, ref.Spreadsheet)
	if err != nil {
		return nil, err
	}

	resp, err := r.sheets.Spreadsheets.Values.Get(id, quoteRange(ref.Worksheet)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound) {
			return nil, errors.Wrapf(sheet.ErrNotFound, "worksheet %q: %s", ref.Worksheet, apiErr.Message)
		}
		return nil, errors.Wrapf(err, "failed to read worksheet %q", ref.Worksheet)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}

	return sheet.FromRows(rows), nil
}

func (r *Reader) connect(ctx context.Context) error {
	if r.sheets != nil {
		return nil
	}

	opts := r.opts
	if len(opts) == 0 {
		data, err := os.ReadFile(r.cfg.CredentialsFile)
		if err != nil {
			return errors.Wrapf(err, "failed to read credentials file %s", r.cfg.CredentialsFile)
		}
		jwtConfig, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsReadonlyScope, drive.DriveMetadataReadonlyScope)
		if err != nil {
			return errors.Wrap(err, "failed to parse credentials")
		}
		// The token source outlives this call; keep it off the caller's cancellation.
		opts = []option.ClientOption{option.WithHTTPClient(jwtConfig.Client(context.WithoutCancel(ctx)))}
	}

	sheetsSvc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create sheets service")
	}
	driveSvc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, "failed to create drive service")
	}

	r.sheets = sheetsSvc
	r.drive = driveSvc
	return nil
}

// spreadsheetID resolves a title to an ID; the first match wins.
func (r *Reader) spreadsheetID(ctx context.Context, title string) (string, error) {
	if id, ok := r.ids[title]; ok {
		return id, nil
	}

	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(title), spreadsheetMimeType)
	list, err := r.drive.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", errors.Wrapf(err, "failed to look up spreadsheet %q", title)
	}
	if len(list.Files) == 0 {
		return "", errors.Wrapf(sheet.ErrNotFound, "spreadsheet %q", title)
	}

	r.ids[title] = list.Files[0].Id
	return list.Files[0].Id, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// quoteRange makes a worksheet title usable as an A1 range covering the whole sheet.
func quoteRange(worksheet string) string {
	return "'" + strings.ReplaceAll(worksheet, "'", "''") + "'"
}
