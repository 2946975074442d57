// Package sheets is the Google Sheets tabular store. Raw positional rows
// are wrapped into domain entities here and never leak past this package.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const scopeSpreadsheets = "https://www.googleapis.com/auth/spreadsheets"

// Client wraps one spreadsheet. All repos of this package share it.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewClient builds the service-account client. Credentials come from
// GOOGLE_CREDENTIALS (inline JSON, for PaaS deploys) or
// GOOGLE_CREDENTIALS_FILE (local development), the spreadsheet from
// SPREADSHEET_ID.
func NewClient(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("SPREADSHEET_ID is required")
	}

	raw := []byte(os.Getenv("GOOGLE_CREDENTIALS"))
	if len(raw) == 0 {
		path := os.Getenv("GOOGLE_CREDENTIALS_FILE")
		if path == "" {
			path = "credentials.json"
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		raw = b
	}

	creds, err := google.CredentialsFromJSON(ctx, raw, scopeSpreadsheets)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, creds.TokenSource)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *Client) get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) append(ctx context.Context, rng string, rows [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

func (c *Client) update(ctx context.Context, rng string, rows [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, rng, &sheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}

// cell returns the i-th cell of a row as a trimmed string, "" when absent.
func cell(row []interface{}, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}
