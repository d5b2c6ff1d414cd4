package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"salesdash/internal/core"
	"salesdash/internal/log"
	"salesdash/internal/source"

	"golang.org/x/oauth2"
	gauth "golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client reads and writes branch datasets kept in a Google spreadsheet.
// Each branch has one tab per record family, named "<BRANCH_ID> <Family>",
// e.g. "MRS_BRANCH Sales" or "RPK_BRANCH Renewal".
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

var (
	_ source.DatasetReader = (*Client)(nil)
	_ source.DatasetWriter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from the environment.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	creds, err := LoadCredentials(ctx, os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"), serviceAccountFile)
	if err != nil {
		return nil, err
	}
	return NewWithServiceAccount(ctx, spreadsheetID, creds)
}

// NewWithServiceAccount authenticates with a service account key.
func NewWithServiceAccount(ctx context.Context, spreadsheetID string, creds []byte) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	jwt, err := gauth.JWTConfigFromJSON(creds, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}
	// option.WithHTTPClient ignores credential options, so the token source
	// wraps the pooled client instead.
	base := context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	return New(ctx, spreadsheetID, goption.WithHTTPClient(jwt.Client(base)))
}

// New creates a client with explicit API options.
func New(ctx context.Context, spreadsheetID string, opts ...goption.ClientOption) (*Client, error) {
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        log.FromContext(ctx).WithComponent(log.ComponentSheets),
	}, nil
}

// WithLogger replaces the client's logger.
func (c *Client) WithLogger(l *log.Logger) *Client {
	c.logger = l.WithComponent(log.ComponentSheets)
	return c
}

// LoadCredentials returns the inline key if set, otherwise the key file.
func LoadCredentials(ctx context.Context, inlineJSON, file string) ([]byte, error) {
	inlineJSON = strings.TrimSpace(inlineJSON)
	file = strings.TrimSpace(file)
	logger := log.FromContext(ctx).WithComponent(log.ComponentSheets)

	switch {
	case inlineJSON != "":
		logger.DebugContext(ctx, "Using inline service account credentials", log.FieldOperation, log.OpLoad)
		return []byte(inlineJSON), nil
	case file != "":
		logger.DebugContext(ctx, "Reading service account credentials", log.FieldOperation, log.OpLoad, "path", file)
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// newHTTPClientWithPooling keeps connections to the Sheets API alive between reads.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// TabName returns the sheet tab holding one family of a branch.
func TabName(branch core.BranchID, fam source.Family) string {
	name := string(fam)
	return branch.String() + " " + strings.ToUpper(name[:1]) + name[1:]
}

// ReadDataset fetches the four family tabs of a branch in one batch request.
func (c *Client) ReadDataset(ctx context.Context, branch core.BranchID) (core.Dataset, error) {
	if !branch.Valid() {
		return core.Dataset{}, fmt.Errorf("%w: %d", core.ErrUnknownBranch, int(branch))
	}
	families := source.Families()
	ranges := make([]string, len(families))
	for i, fam := range families {
		ranges[i] = c.readRange(branch, fam)
	}

	resp, err := c.svc.Spreadsheets.Values.BatchGet(c.spreadsheetID).
		Ranges(ranges...).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		if isMissingTab(err) {
			return core.Dataset{}, fmt.Errorf("%w: %s has no tabs in the spreadsheet", core.ErrUnknownBranch, branch)
		}
		return core.Dataset{}, fmt.Errorf("read %s tabs: %w", branch, err)
	}
	if len(resp.ValueRanges) != len(families) {
		return core.Dataset{}, fmt.Errorf("read %s tabs: got %d ranges, want %d", branch, len(resp.ValueRanges), len(families))
	}

	values := make(map[source.Family][][]interface{}, len(families))
	for i, fam := range families {
		values[fam] = resp.ValueRanges[i].Values
	}
	d, err := parseDataset(branch, values)
	if err != nil {
		return core.Dataset{}, err
	}
	if err := d.Validate(); err != nil {
		return core.Dataset{}, fmt.Errorf("validate %s: %w", branch, err)
	}
	c.logger.DebugContext(ctx, "Dataset read from Google Sheets",
		log.FieldOperation, log.OpRead, log.FieldBranch, branch.String(), log.FieldRecords, len(d.Sales))
	return d, nil
}

// isMissingTab reports whether Sheets rejected a range because its tab does
// not exist.
func isMissingTab(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(gerr.Message, "Unable to parse range")
}

// WriteDataset overwrites the four family tabs of a branch. The tabs must
// already exist in the spreadsheet.
func (c *Client) WriteDataset(ctx context.Context, d core.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}
	tables := source.TablesFromDataset(d)

	var clear []string
	var data []*gsheet.ValueRange
	for _, fam := range source.Families() {
		rng := c.readRange(d.Branch, fam)
		clear = append(clear, rng)
		data = append(data, &gsheet.ValueRange{Range: rng, Values: tableValues(tables[fam])})
	}

	_, err := c.svc.Spreadsheets.Values.BatchClear(c.spreadsheetID, &gsheet.BatchClearValuesRequest{Ranges: clear}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s tabs: %w", d.Branch, err)
	}
	_, err = c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write %s tabs: %w", d.Branch, err)
	}
	c.logger.InfoContext(ctx, "Dataset written to Google Sheets",
		log.FieldOperation, log.OpWrite, log.FieldBranch, d.Branch.String(), log.FieldRecords, len(d.Sales))
	return nil
}

// readRange covers whole columns so tabs of any length are read in full.
func (c *Client) readRange(branch core.BranchID, fam source.Family) string {
	return fmt.Sprintf("'%s'!A:Z", TabName(branch, fam))
}
