package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"

	"github.com/okanelab/ledgersheet/internal/domain"
)

// valueInputOption makes the store parse written values the same way the UI
// would, so numbers and dates land as numbers and dates.
const valueInputOption = "USER_ENTERED"

// ClientConfig carries the credentials for the spreadsheet store.
type ClientConfig struct {
	SpreadsheetID       string
	ServiceAccountEmail string
	PrivateKey          string
}

// Client is the Sheets v4 implementation of Store.
type Client struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewClient authenticates with a service-account JWT and builds the store
// client. Missing credentials surface as domain.ErrStoreUnavailable.
func NewClient(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.SpreadsheetID == "" || cfg.ServiceAccountEmail == "" || cfg.PrivateKey == "" {
		return nil, fmt.Errorf("NewClient: credentials not configured: %w", domain.ErrStoreUnavailable)
	}

	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("NewClient: sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// GetRange implements Store.
func (c *Client) GetRange(ctx context.Context, readRange string) ([][]interface{}, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("GetRange %s: %w", readRange, err)
	}
	return resp.Values, nil
}

// Append implements Store.
func (c *Client) Append(ctx context.Context, appendRange string, rows [][]interface{}) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, appendRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Append %s: %w", appendRange, err)
	}
	return nil
}

// Update implements Store.
func (c *Client) Update(ctx context.Context, updateRange string, rows [][]interface{}) error {
	_, err := c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, updateRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption(valueInputOption).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Update %s: %w", updateRange, err)
	}
	return nil
}

// BatchUpdate implements Store.
func (c *Client) BatchUpdate(ctx context.Context, updates []RangeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsapi.ValueRange{Range: u.Range, Values: u.Rows})
	}

	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             data,
	}
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("BatchUpdate: %w", err)
	}
	return nil
}

// Clear implements Store.
func (c *Client) Clear(ctx context.Context, clearRange string) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, clearRange, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("Clear %s: %w", clearRange, err)
	}
	return nil
}
