package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"hr_portal/internal/security"

	"github.com/xuri/excelize/v2"
)

// JoiningDateLayout is the day-first format of date_of_joining cells.
const JoiningDateLayout = "02-01-2006"

// RequiredColumns must all appear in the header row of an import sheet.
var RequiredColumns = []string{
	"emp_id", "first_name", "last_name", "work_email", "username",
	"department", "designation", "date_of_joining", "role",
}

var (
	ErrMissingColumns     = errors.New("sheet is missing required columns")
	ErrInvalidJoiningDate = errors.New("invalid date_of_joining")
)

// SheetRow is one parsed sheet line. Password is plain text and may be empty.
// DateErr is set when date_of_joining is empty or unreadable; Import aborts
// the whole run on such a row unless its email is already registered.
type SheetRow struct {
	Line     int
	Employee Employee
	Password string
	DateErr  error
}

// RowIssue explains why a sheet line was not imported.
type RowIssue struct {
	Line   int
	Reason string
}

func (ri RowIssue) String() string {
	return fmt.Sprintf("row %d: %s", ri.Line, ri.Reason)
}

// ParseEmployeeSheet reads the first worksheet of an .xlsx workbook. Fully
// empty lines are ignored; invalid lines are reported as issues.
func ParseEmployeeSheet(r io.Reader) ([]SheetRow, []RowIssue, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows of %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	cols := headerIndex(rows[0])
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := cols[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var (
		parsed []SheetRow
		issues []RowIssue
	)
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		sr, reason := parseRow(cols, row)
		if reason != "" {
			issues = append(issues, RowIssue{Line: line, Reason: reason})
			continue
		}
		sr.Line = line
		parsed = append(parsed, sr)
	}
	return parsed, issues, nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if h == "" {
			continue
		}
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	return cols
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRow(cols map[string]int, row []string) (SheetRow, string) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	e := Employee{
		EmpID:       get("emp_id"),
		FirstName:   get("first_name"),
		LastName:    get("last_name"),
		WorkEmail:   NormalizeEmail(get("work_email")),
		Username:    get("username"),
		Department:  get("department"),
		Designation: get("designation"),
		PhoneNumber: get("phone_number"),
		Active:      true,
	}

	switch {
	case e.EmpID == "":
		return SheetRow{}, "emp_id is empty"
	case e.WorkEmail == "":
		return SheetRow{}, "work_email is empty"
	case !security.IsValidEmail(e.WorkEmail):
		return SheetRow{}, fmt.Sprintf("invalid work_email %q", e.WorkEmail)
	}
	if e.Username == "" {
		e.Username = strings.SplitN(e.WorkEmail, "@", 2)[0]
	}
	if !security.IsValidUsername(e.Username) {
		return SheetRow{}, fmt.Sprintf("invalid username %q", e.Username)
	}

	role, err := ParseRole(get("role"))
	if err != nil {
		return SheetRow{}, err.Error()
	}
	e.Role = role

	sr := SheetRow{Employee: e, Password: get("password")}
	sr.Employee.DateOfJoining, sr.DateErr = parseJoiningDate(get("date_of_joining"))
	if sr.DateErr != nil {
		sr.DateErr = fmt.Errorf("emp_id %s: %w", e.EmpID, sr.DateErr)
	}
	return sr, ""
}

// parseJoiningDate accepts DD-MM-YYYY, ISO dates and Excel date serials.
func parseJoiningDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: empty, expected DD-MM-YYYY", ErrInvalidJoiningDate)
	}
	for _, layout := range []string{JoiningDateLayout, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w %q, expected DD-MM-YYYY", ErrInvalidJoiningDate, v)
}

// ImportReport summarizes an import run.
type ImportReport struct {
	Created int
	Skipped []RowIssue
}

// Import creates an account for each row. Rows whose email is already
// registered are skipped. A row without a password gets an account that
// cannot sign in until a password is set. When dir is a Transactor the run
// is atomic: any error, including a row with a bad date_of_joining, leaves
// nothing created.
func Import(ctx context.Context, dir Directory, rows []SheetRow, hasher *security.PasswordHasher, logger *slog.Logger) (ImportReport, error) {
	if hasher == nil {
		hasher = security.DefaultPasswordHasher()
	}
	if logger == nil {
		logger = slog.Default()
	}

	tx, ok := dir.(Transactor)
	if !ok {
		return importRows(ctx, dir, rows, hasher, logger)
	}

	var report ImportReport
	err := tx.InTx(ctx, func(d Directory) error {
		var err error
		report, err = importRows(ctx, d, rows, hasher, logger)
		return err
	})
	if err != nil {
		logger.Error("employee import rolled back", "error", err, "rows_discarded", report.Created)
		return ImportReport{Skipped: report.Skipped}, err
	}
	return report, nil
}

func importRows(ctx context.Context, dir Directory, rows []SheetRow, hasher *security.PasswordHasher, logger *slog.Logger) (ImportReport, error) {
	var report ImportReport
	skip := func(line int, reason string) {
		logger.Warn("skipping employee row", "line", line, "reason", reason)
		report.Skipped = append(report.Skipped, RowIssue{Line: line, Reason: reason})
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		e := row.Employee
		exists, err := dir.ExistsByEmail(ctx, e.WorkEmail)
		if err != nil {
			return report, err
		}
		if exists {
			skip(row.Line, fmt.Sprintf("user with email %s already exists", e.WorkEmail))
			continue
		}
		if row.DateErr != nil {
			return report, fmt.Errorf("row %d: %w", row.Line, row.DateErr)
		}

		if row.Password != "" {
			hash, err := hasher.Hash(row.Password)
			if err != nil {
				return report, fmt.Errorf("row %d: %w", row.Line, err)
			}
			e.PasswordHash = hash
		}

		if err := dir.Create(ctx, e); err != nil {
			if errors.Is(err, ErrEmployeeExists) {
				skip(row.Line, err.Error())
				continue
			}
			return report, fmt.Errorf("row %d: %w", row.Line, err)
		}
		report.Created++
		logger.Info("employee imported", "emp_id", e.EmpID, "email", e.WorkEmail)
	}
	return report, nil
}
