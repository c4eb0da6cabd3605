package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finsmart/internal/records"
	ports "finsmart/internal/sheets"
)

// Config selects the spreadsheet and the credentials used to reach it.
// Service account credentials take precedence over an OAuth client + token.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string

	// RetryDelay is the wait between attempts after a 429. Defaults to 2s.
	RetryDelay time.Duration
}

// Client stores every table in its own tab of one spreadsheet. Row 1 holds
// the header.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	retryDelay    time.Duration
	logger        *slog.Logger
}

var (
	_ ports.TableMedium = (*Client)(nil)
	_ ports.Pinger      = (*Client)(nil)
)

// New creates a Sheets client. opts are appended after the credential
// options and are mainly used by tests to point at a fake endpoint.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if len(opts) == 0 {
		auth, err := credentialOptions(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = auth
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, retryDelay: delay, logger: logger}, nil
}

// credentialOptions resolves service account credentials first, then an
// OAuth client with a stored token (see cmd/oauth-init).
func credentialOptions(ctx context.Context, cfg Config, logger *slog.Logger) ([]goption.ClientOption, error) {
	saJSON, err := readInlineOrFile(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	if len(saJSON) == 0 {
		if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
			if saJSON, err = os.ReadFile(path); err != nil {
				return nil, fmt.Errorf("read application credentials: %w", err)
			}
		}
	}
	if len(saJSON) > 0 {
		logger.InfoContext(ctx, "Using service account credentials", "credentials_size", len(saJSON))
		return []goption.ClientOption{
			goption.WithCredentialsJSON(saJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	}

	clientJSON, err := readInlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	tokenJSON, err := readInlineOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth token file: %w", err)
	}
	if len(clientJSON) == 0 || len(tokenJSON) == 0 {
		return nil, errors.New("missing sheets credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_OAUTH_CLIENT_* with GOOGLE_OAUTH_TOKEN_*)")
	}

	oc, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	tok, err := decodeToken(tokenJSON)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	logger.InfoContext(ctx, "Using OAuth client credentials")
	return []goption.ClientOption{goption.WithTokenSource(oc.TokenSource(ctx, tok))}, nil
}

func readInlineOrFile(inline, path string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if p := strings.TrimSpace(path); p != "" {
		return os.ReadFile(p)
	}
	return nil, nil
}

func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	titles, err := c.titles(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range titles {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

// Create adds a tab titled name and writes the header row.
func (c *Client) Create(ctx context.Context, name string, columns []string) error {
	ok, err := c.Exists(ctx, name)
	if err != nil || ok {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: name}},
		}},
	}
	err = c.withRetry(ctx, func() error {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	return c.Write(ctx, records.NewTable(name, columns))
}

// Read fetches the whole tab. Row 1 is the header; trailing blank cells
// omitted by the API are left for the normalizer to pad.
func (c *Client) Read(ctx context.Context, name string) (records.Table, error) {
	var resp *gsheet.ValueRange
	err := c.withRetry(ctx, func() error {
		var err error
		resp, err = c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quoteSheet(name)).Context(ctx).Do()
		return err
	})
	if err != nil {
		if isMissingRange(err) {
			return records.Table{}, fmt.Errorf("%w: %s", ports.ErrTableNotFound, name)
		}
		return records.Table{}, fmt.Errorf("read %s: %w", name, err)
	}
	if len(resp.Values) == 0 {
		return records.Table{}, fmt.Errorf("%w: sheet %s has no header row", ports.ErrCorrupt, name)
	}
	return parseValues(name, resp.Values), nil
}

// Write overwrites the tab from A1 and then clears whatever the previous
// content had below and to the right of the new block.
func (c *Client) Write(ctx context.Context, t records.Table) error {
	if t.Name == "" {
		return errors.New("write: table name is required")
	}
	vr := &gsheet.ValueRange{Values: toValues(t)}
	err := c.withRetry(ctx, func() error {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteSheet(t.Name)+"!A1", vr).
			ValueInputOption("RAW").Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", t.Name, err)
	}

	height := len(t.Rows) + 1
	width := len(t.Columns)
	trailing := []string{
		fmt.Sprintf("%s!A%d:ZZ", quoteSheet(t.Name), height+1),
		fmt.Sprintf("%s!%s1:ZZ%d", quoteSheet(t.Name), columnLetter(width+1), height),
	}
	for _, rng := range trailing {
		err := c.withRetry(ctx, func() error {
			_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
			return err
		})
		if err != nil {
			return fmt.Errorf("clear %s: %w", rng, err)
		}
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	return err
}

func (c *Client) titles(ctx context.Context) ([]string, error) {
	var ss *gsheet.Spreadsheet
	err := c.withRetry(ctx, func() error {
		var err error
		ss, err = c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	out := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			out = append(out, s.Properties.Title)
		}
	}
	return out, nil
}

// withRetry retries rate-limited calls.
func (c *Client) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				c.logger.WarnContext(ctx, "Sheets rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(3),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
}

func isMissingRange(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "Unable to parse range")
}

func decodeToken(b []byte) (*oauth2.Token, error) {
	tok := &oauth2.Token{}
	if err := json.Unmarshal(b, tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("token has neither access nor refresh token")
	}
	return tok, nil
}
