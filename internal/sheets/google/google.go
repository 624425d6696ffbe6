// Package google mirrors ledger rows into a Google Sheets spreadsheet, one
// sheet per record kind, one row per record.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"oficina/internal/cache"
	"oficina/internal/core"
	"oficina/internal/log"
	ports "oficina/internal/sheets"
)

const (
	defaultCacheSize = 1024
	defaultCacheTTL  = 30 * time.Minute
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
	CacheSize       int
	CacheTTL        time.Duration
}

type Client struct {
	api           valuesAPI
	spreadsheetID string
	rows          *cache.LRUCache[int]
	logger        *log.Logger

	mu    sync.Mutex
	ready map[core.Kind]bool
}

var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&sheetsValues{svc: svc}, cfg, logger), nil
}

func newClient(api valuesAPI, cfg Config, logger *log.Logger) *Client {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
		rows:          cache.NewLRUCache[int](cfg.CacheSize, cfg.CacheTTL),
		logger:        logger,
		ready:         make(map[core.Kind]bool),
	}
}

// RowCache exposes the row-index cache so a cache.Manager can purge it.
func (c *Client) RowCache() cache.Cleaner {
	return c.rows
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
// Inline JSON wins over a file; GOOGLE_APPLICATION_CREDENTIALS is the last fallback.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.InfoContext(ctx, "Reading credentials from file", log.FieldPath, serviceAccountFile)
		var err error
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// UpsertRow writes row on the record's line of its kind's sheet, appending a
// new line the first time a record is seen.
func (c *Client) UpsertRow(ctx context.Context, kind core.Kind, recordID int64, row []string) (string, error) {
	sheet := ports.SheetName(kind)
	if sheet == "" {
		return "", fmt.Errorf("unknown record kind %q", kind)
	}
	if recordID <= 0 {
		return "", core.ErrIdentityRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureSheet(ctx, kind, sheet); err != nil {
		return "", err
	}

	key := rowKey(kind, recordID)
	line, cached := c.rows.Get(key)
	if !cached {
		values, err := c.api.column(ctx, c.spreadsheetID, a1(sheet, "A:A"))
		if err != nil {
			return "", fmt.Errorf("read ids of %s: %w", sheet, err)
		}
		var found bool
		if line, found = findRow(values, recordID); !found {
			line = nextRow(values)
		}
	}

	rng := a1(sheet, rowRange(line, len(row)))
	if err := c.api.update(ctx, c.spreadsheetID, rng, [][]any{cells(row)}); err != nil {
		c.rows.Delete(key)
		return "", fmt.Errorf("write %s: %w", rng, err)
	}
	c.rows.Set(key, line)

	c.logger.InfoContext(ctx, "Ledger row written",
		log.NewFields().
			WithOperation(log.OpSync).
			WithRecord(string(kind), recordID).
			ToSlice()...)
	return rng, nil
}

// ensureSheet creates the kind's sheet and header row once per client.
func (c *Client) ensureSheet(ctx context.Context, kind core.Kind, sheet string) error {
	if c.ready[kind] {
		return nil
	}
	titles, err := c.api.sheetTitles(ctx, c.spreadsheetID)
	if err != nil {
		return fmt.Errorf("list sheets: %w", err)
	}
	if !containsTitle(titles, sheet) {
		if err := c.api.addSheet(ctx, c.spreadsheetID, sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}
		c.logger.InfoContext(ctx, "Ledger sheet created", log.FieldSheet, sheet)
	}

	values, err := c.api.column(ctx, c.spreadsheetID, a1(sheet, "A1:A1"))
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sheet, err)
	}
	if len(values) == 0 || len(values[0]) == 0 {
		header := ports.Header(kind)
		if err := c.api.update(ctx, c.spreadsheetID, a1(sheet, rowRange(1, len(header))), [][]any{cells(header)}); err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}
	}
	c.ready[kind] = true
	return nil
}

// valuesAPI is the slice of the Sheets API the client uses.
type valuesAPI interface {
	sheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	addSheet(ctx context.Context, spreadsheetID, title string) error
	column(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (s *sheetsValues) sheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (s *sheetsValues) addSheet(ctx context.Context, spreadsheetID, title string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	_, err := s.svc.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (s *sheetsValues) column(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *sheetsValues) update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}
