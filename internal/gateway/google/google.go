// Package google implements the gateway against a Google Sheets
// spreadsheet. Each collection lives on its own tab; rows are scanned
// defensively because the sheet is hand-edited.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"budgetboard/internal/core"
	"budgetboard/internal/gateway"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultProjectsTab = "Projects"
	defaultExpensesTab = "Expenses"
	defaultLogsTab     = "AccessLogs"
	defaultUsersTab    = "Users"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	projectsTab   string
	expensesTab   string
	logsTab       string
	usersTab      string
}

var _ gateway.Gateway = (*Client)(nil)

// NewFromEnv creates a Sheets-backed gateway from environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS. Tab names default to Projects, Expenses,
// AccessLogs, and Users.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	tab := func(env, fallback string) string {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
		return fallback
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		projectsTab:   tab("PROJECTS_SHEET_NAME", defaultProjectsTab),
		expensesTab:   tab("EXPENSES_SHEET_NAME", defaultExpensesTab),
		logsTab:       tab("LOGS_SHEET_NAME", defaultLogsTab),
		usersTab:      tab("USERS_SHEET_NAME", defaultUsersTab),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
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

func (c *Client) readRows(ctx context.Context, tab, span string) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!%s", tab, span)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// --- projects ---

func (c *Client) ListProjects(ctx context.Context) ([]core.Project, error) {
	rows, err := c.readRows(ctx, c.projectsTab, "A2:H")
	if err != nil {
		return nil, err
	}
	return parseProjects(rows), nil
}

func (c *Client) AddProject(ctx context.Context, p core.Project) error {
	rng := fmt.Sprintf("%s!A:H", c.projectsTab)
	vr := &gsheet.ValueRange{Values: [][]interface{}{projectRow(p)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append project to %s: %w", c.projectsTab, err)
	}
	return nil
}

func (c *Client) UpdateProject(ctx context.Context, p core.Project) error {
	row, _, err := c.findProjectRow(ctx, p.ID)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.projectsTab, row, row)
	vr := &gsheet.ValueRange{Values: [][]interface{}{projectRow(p)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, err)
	}
	return nil
}

func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	row, _, err := c.findProjectRow(ctx, id)
	if err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.projectsTab, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear project %d: %w", id, err)
	}
	return nil
}

// findProjectRow returns the 1-based sheet row holding the project, and the
// parsed project. Blank rows (cleared deletions) are skipped.
func (c *Client) findProjectRow(ctx context.Context, id int64) (int, core.Project, error) {
	rows, err := c.readRows(ctx, c.projectsTab, "A2:H")
	if err != nil {
		return 0, core.Project{}, err
	}
	for i, row := range rows {
		p, ok := parseProjectRow(row)
		if !ok {
			continue
		}
		if p.ID == id {
			return i + 2, p, nil // +2: 1-based plus the header row
		}
	}
	return 0, core.Project{}, gateway.ErrProjectNotFound
}

// --- expenses ---

func (c *Client) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := c.readRows(ctx, c.expensesTab, "A2:F")
	if err != nil {
		return nil, err
	}
	return parseExpenses(rows), nil
}

// RecordExpense bumps the project's spent, derives Warning at write time,
// then appends the expense row. The spent update lands first so a partial
// failure can only lose the detail row, never the balance.
func (c *Client) RecordExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	row, p, err := c.findProjectRow(ctx, e.ProjectID)
	if err != nil {
		return err
	}
	if p.Status == core.StatusClosed {
		return gateway.ErrProjectClosed
	}

	p.Spent = p.Spent.Add(e.Amount)
	if p.Spent.Satang > p.Budget.Satang {
		p.Status = core.StatusWarning
	}
	rng := fmt.Sprintf("%s!F%d:H%d", c.projectsTab, row, row)
	vr := &gsheet.ValueRange{Values: [][]interface{}{{p.Spent.Baht(), p.Category, string(p.Status)}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update spent for project %d: %w", e.ProjectID, err)
	}

	expRng := fmt.Sprintf("%s!A:F", c.expensesTab)
	expVr := &gsheet.ValueRange{Values: [][]interface{}{expenseRow(e)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, expRng, expVr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append expense row: %w", err)
	}
	return nil
}

// --- access logs ---

func (c *Client) ListLogs(ctx context.Context) ([]core.LogEntry, error) {
	rows, err := c.readRows(ctx, c.logsTab, "A2:E")
	if err != nil {
		return nil, err
	}
	return parseLogs(rows), nil
}

func (c *Client) AppendLog(ctx context.Context, entry core.LogEntry) error {
	rng := fmt.Sprintf("%s!A:E", c.logsTab)
	vr := &gsheet.ValueRange{Values: [][]interface{}{logRow(entry)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append access log: %w", err)
	}
	return nil
}

// --- auth ---

func (c *Client) Login(ctx context.Context, username, password string) (gateway.Identity, error) {
	_, u, err := c.findUserRow(ctx, username)
	if err != nil {
		return gateway.Identity{}, err
	}
	if u.password != password {
		return gateway.Identity{}, gateway.ErrInvalidCredentials
	}
	return gateway.Identity{Role: u.role, Name: u.name}, nil
}

func (c *Client) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	row, u, err := c.findUserRow(ctx, username)
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			return gateway.ErrUnknownUser
		}
		return err
	}
	if u.password != oldPassword {
		return gateway.ErrPasswordMismatch
	}
	if len(newPassword) < 4 {
		return gateway.ErrWeakPassword
	}
	rng := fmt.Sprintf("%s!B%d", c.usersTab, row)
	vr := &gsheet.ValueRange{Values: [][]interface{}{{newPassword}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update password for %s: %w", username, err)
	}
	slog.InfoContext(ctx, "Password updated", "username", username)
	return nil
}

type userRow struct {
	username string
	password string
	role     core.Role
	name     string
}

func (c *Client) findUserRow(ctx context.Context, username string) (int, userRow, error) {
	rows, err := c.readRows(ctx, c.usersTab, "A2:D")
	if err != nil {
		return 0, userRow{}, err
	}
	for i, row := range rows {
		cols := toStrings(row)
		if len(cols) < 2 {
			continue
		}
		u := userRow{
			username: cols[0],
			password: safeGet(cols, 1),
			role:     parseRole(safeGet(cols, 2)),
			name:     safeGet(cols, 3),
		}
		if strings.EqualFold(u.username, strings.TrimSpace(username)) {
			if u.name == "" {
				u.name = u.username
			}
			return i + 2, u, nil
		}
	}
	return 0, userRow{}, gateway.ErrInvalidCredentials
}

func parseRole(s string) core.Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return core.RoleAdmin
	case "user":
		return core.RoleUser
	}
	return core.RoleUnknown
}

// projectRow renders a project as a sheet row, columns A:H.
func projectRow(p core.Project) []interface{} {
	return []interface{}{
		strconv.FormatInt(p.ID, 10), p.Name, p.Group, p.Owner,
		p.Budget.Baht(), p.Spent.Baht(), p.Category, string(p.Status),
	}
}

// expenseRow renders an expense as a sheet row, columns A:F.
func expenseRow(e core.Expense) []interface{} {
	return []interface{}{
		strconv.FormatInt(e.ID, 10), strconv.FormatInt(e.ProjectID, 10),
		e.Date, e.Amount.Baht(), e.Item, e.Note,
	}
}

// logRow renders a log entry as a sheet row, columns A:E.
func logRow(l core.LogEntry) []interface{} {
	return []interface{}{
		strconv.FormatInt(l.ID, 10), l.Timestamp, l.Username,
		string(l.Role), string(l.Status),
	}
}
