package google

import (
	"context"
	"encoding/json"
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

	"budget/internal/core"
	ports "budget/internal/sheets"
)

// Options selects the target sheet and credentials. A service account wins
// over an OAuth client when both are set.
type Options struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountJSON string
	ServiceAccountFile string
	OAuthClientJSON    string
	OAuthClientFile    string
	OAuthTokenJSON     string
	OAuthTokenFile     string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.TransactionExporter = (*Client)(nil)

func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Transactions"
	}

	clientOpt, err := clientOption(ctx, opts)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx, clientOpt...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter ready",
		"component", "sheets",
		"spreadsheet_id", opts.SpreadsheetID,
		"sheet", sheetName)

	return &Client{svc: svc, spreadsheetID: opts.SpreadsheetID, sheetName: sheetName}, nil
}

// credentialSource is the credential kind selected from Options.
type credentialSource int

const (
	sourceNone credentialSource = iota
	sourceServiceAccount
	sourceOAuth
)

func selectSource(opts Options) credentialSource {
	if opts.ServiceAccountJSON != "" || opts.ServiceAccountFile != "" {
		return sourceServiceAccount
	}
	hasClient := opts.OAuthClientJSON != "" || opts.OAuthClientFile != ""
	hasToken := opts.OAuthTokenJSON != "" || opts.OAuthTokenFile != ""
	if hasClient && hasToken {
		return sourceOAuth
	}
	return sourceNone
}

func clientOption(ctx context.Context, opts Options) ([]goption.ClientOption, error) {
	switch selectSource(opts) {
	case sourceServiceAccount:
		credentialsJSON, err := inlineOrFile(opts.ServiceAccountJSON, opts.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account: %w", err)
		}
		return []goption.ClientOption{
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil

	case sourceOAuth:
		clientJSON, err := inlineOrFile(opts.OAuthClientJSON, opts.OAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client: %w", err)
		}
		tokenJSON, err := inlineOrFile(opts.OAuthTokenJSON, opts.OAuthTokenFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth token: %w", err)
		}
		cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("oauth config: %w", err)
		}
		var tok oauth2.Token
		if err := json.Unmarshal(tokenJSON, &tok); err != nil {
			return nil, fmt.Errorf("decode oauth token: %w", err)
		}
		// The oauth2 transport wraps the pooled client passed via context.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
		return []goption.ClientOption{goption.WithHTTPClient(cfg.Client(ctx, &tok))}, nil
	}

	// Fall back to the standard Google Cloud variable.
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		return []goption.ClientOption{
			goption.WithCredentialsFile(path),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}, nil
	}
	return nil, errors.New("missing Google credentials (set a service account or an OAuth client and token)")
}

func inlineOrFile(inline, path string) ([]byte, error) {
	if strings.TrimSpace(inline) != "" {
		return []byte(inline), nil
	}
	return os.ReadFile(path)
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API.
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

// Upsert rewrites the row whose column A holds t.ID, or appends a new one.
func (c *Client) Upsert(ctx context.Context, t core.Transaction) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values, err := c.readIDs(ctx)
	if err != nil {
		return err
	}

	if len(values) == 0 {
		if err := c.writeRow(ctx, 1, headerRow()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		values = [][]any{headerRow()}
	}

	row := transactionRow(t)
	if n := findRowByID(values, t.ID); n > 0 {
		if err := c.writeRow(ctx, n, row); err != nil {
			return fmt.Errorf("update row %d: %w", n, err)
		}
		slog.DebugContext(ctx, "Updated sheet row", "component", "sheets", "transaction_id", t.ID, "row", n)
		return nil
	}

	rng := fmt.Sprintf("%s!A:G", c.sheetName)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append row to %s: %w", c.sheetName, err)
	}
	slog.DebugContext(ctx, "Appended sheet row", "component", "sheets", "transaction_id", t.ID)
	return nil
}

// Remove clears the row holding id.
func (c *Client) Remove(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	values, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	n := findRowByID(values, id)
	if n == 0 {
		return nil
	}

	rng := rowRange(c.sheetName, n)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	slog.DebugContext(ctx, "Cleared sheet row", "component", "sheets", "transaction_id", id, "row", n)
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func (c *Client) writeRow(ctx context.Context, n int, row []any) error {
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(c.sheetName, n), &gsheet.ValueRange{Values: [][]any{row}}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
