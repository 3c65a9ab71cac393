// Package google reads an owner's ledger from a Google Sheets spreadsheet
// with one tab per record type. The gateway is read-only.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"familybudget/internal/core"
	"familybudget/internal/gateway"
	applog "familybudget/internal/log"
)

// Config names the spreadsheet, the credentials and the tabs to read.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
	ExpensesTab        string
	IncomesTab         string
	GoalsTab           string
}

func (c Config) withDefaults() Config {
	if c.ExpensesTab == "" {
		c.ExpensesTab = "Expenses"
	}
	if c.IncomesTab == "" {
		c.IncomesTab = "Incomes"
	}
	if c.GoalsTab == "" {
		c.GoalsTab = "Goals"
	}
	return c
}

// valuesGetter fetches a range as a values matrix.
type valuesGetter func(ctx context.Context, rng string) ([][]any, error)

type Client struct {
	get           valuesGetter
	spreadsheetID string
	cfg           Config
	logger        *applog.Logger
}

var _ gateway.Reader = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	cfg = cfg.withDefaults()
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	get := func(ctx context.Context, rng string) ([][]any, error) {
		resp, err := svc.Spreadsheets.Values.Get(cfg.SpreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return nil, err
		}
		return resp.Values, nil
	}
	return newWithGetter(cfg, get, logger), nil
}

func newWithGetter(cfg Config, get valuesGetter, logger *applog.Logger) *Client {
	if logger == nil {
		logger = applog.Discard()
	}
	cfg = cfg.withDefaults()
	return &Client{
		get:           get,
		spreadsheetID: cfg.SpreadsheetID,
		cfg:           cfg,
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
}

// newSheetsService initializes a read-only Sheets service from inline JSON,
// a credentials file, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config, logger *applog.Logger) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	if logger != nil {
		logger.InfoContext(ctx, "Creating Google Sheets service", "credentials_size", len(credentialsJSON), "scope", gsheet.SpreadsheetsReadonlyScope)
	}
	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) read(ctx context.Context, tab string) ([][]any, error) {
	rng := fmt.Sprintf("%s!A:Z", tab)
	values, err := c.get(ctx, rng)
	if err != nil {
		c.logger.ErrorContext(ctx, "Sheets read failed", applog.FieldOperation, applog.OpRead, "range", rng, applog.FieldError, err)
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return values, nil
}

func (c *Client) ListExpenses(ctx context.Context, owner string) ([]core.Expense, error) {
	values, err := c.read(ctx, c.cfg.ExpensesTab)
	if err != nil {
		return nil, err
	}
	return parseExpenses(values, owner)
}

func (c *Client) ListIncomes(ctx context.Context, owner string) ([]core.Income, error) {
	values, err := c.read(ctx, c.cfg.IncomesTab)
	if err != nil {
		return nil, err
	}
	return parseIncomes(values, owner)
}

func (c *Client) ListGoals(ctx context.Context, owner string) ([]core.BudgetGoal, error) {
	values, err := c.read(ctx, c.cfg.GoalsTab)
	if err != nil {
		return nil, err
	}
	return parseGoals(values, owner)
}
