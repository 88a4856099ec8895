package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"jard/internal/core"
	ports "jard/internal/sheets"
)

type Client struct {
	svc             *gsheet.Service
	spreadsheetID   string
	sheetBase       string
	categoriesSheet string
}

// Ensure interface conformance
var (
	_ ports.MatrixWriter   = (*Client)(nil)
	_ ports.CategoryReader = (*Client)(nil)
)

// Options configures the client. Credentials come either inline (JSON) or
// from files; the token is produced once by cmd/jard-oauth-init.
type Options struct {
	SpreadsheetID   string
	SheetName       string
	CategoriesSheet string
	ClientJSON      string
	ClientFile      string
	TokenJSON       string
	TokenFile       string
}

// New creates a Sheets client authorised with a stored OAuth token.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Inventory"
	}
	cats := strings.TrimSpace(opts.CategoriesSheet)
	if cats == "" {
		cats = "Categories"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetBase: base, categoriesSheet: cats}, nil
}

func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	clientJSON, err := readCredential(opts.ClientJSON, opts.ClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	if clientJSON == nil {
		return nil, errors.New("missing oauth client (set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE)")
	}
	tokenJSON, err := readCredential(opts.TokenJSON, opts.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE)")
	}

	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tok, err := parseToken(tokenJSON)
	if err != nil {
		return nil, err
	}

	// The oauth2 transport wraps whatever client is stored in the context.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "component", "sheets")
	return service, nil
}

// readCredential prefers inline JSON over a file. Both empty yields nil.
func readCredential(inline, file string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if f := strings.TrimSpace(file); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		return b, nil
	}
	return nil, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// SheetTitle names the sheet a monthly matrix is published to.
func (c *Client) SheetTitle(year, month int) string {
	return monthSheetName(c.sheetBase, year, month)
}

func monthSheetName(base string, year, month int) string {
	return fmt.Sprintf("%s %04d-%02d", base, year, month)
}

// WriteMatrix replaces the sheet content with rows. Cells are written as
// user-entered so amounts become numbers in the sheet.
func (c *Client) WriteMatrix(ctx context.Context, sheetTitle string, rows [][]string) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(sheetTitle) == "" {
		return "", errors.New("sheet title is required")
	}
	if err := c.ensureSheet(ctx, sheetTitle); err != nil {
		return "", err
	}

	quoted := quoteSheet(sheetTitle)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %q: %w", sheetTitle, err)
	}

	vr := &gsheet.ValueRange{Values: toValues(rows)}
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoted+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("write sheet %q: %w", sheetTitle, err)
	}
	slog.InfoContext(ctx, "Matrix written to Google Sheets", "component", "sheets",
		"sheet", sheetTitle, "rows", len(rows), "range", resp.UpdatedRange)
	return resp.UpdatedRange, nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	return nil
}

// FetchCategories reads the Categories sheet. The header row must contain
// Item and Main; Sub, Order, Active and Meals are optional.
func (c *Client) FetchCategories(ctx context.Context) ([]core.CategoryEntry, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(c.categoriesSheet)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read categories sheet: %w", err)
	}
	return parseCategories(resp.Values)
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toValues(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, row := range rows {
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		out[i] = vals
	}
	return out
}
