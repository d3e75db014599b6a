// Package directory holds employee accounts, verifies portal credentials and
// supplies dashboard content.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmployeeExists     = errors.New("employee already exists")
	ErrInvalidRole        = errors.New("invalid role")
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleIntern     Role = "intern"
	RoleTeamLead   Role = "tl"
	RoleHR         Role = "hr"
	RoleManagement Role = "management"
)

var validRoles = map[Role]bool{
	RoleEmployee:   true,
	RoleIntern:     true,
	RoleTeamLead:   true,
	RoleHR:         true,
	RoleManagement: true,
}

// ParseRole accepts a role name in any case. An empty name is RoleEmployee.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleEmployee, nil
	}
	r := Role(s)
	if !validRoles[r] {
		return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
	}
	return r, nil
}

// Departments known to the portal. Free-form values are still stored.
var Departments = []string{
	"PYTHON", "QA", "JAVA", "UIUX", "REACT", "CYBER_SECURITY",
	"DIGITAL_MARKETING", "HR", "BDM", "NETWORKING", "CLOUD",
}

// Employee is one portal account. An empty PasswordHash means the account
// cannot sign in until a password is set.
type Employee struct {
	EmpID         string
	FirstName     string
	LastName      string
	WorkEmail     string
	Username      string
	Department    string
	Designation   string
	DateOfJoining time.Time
	Role          Role
	PhoneNumber   string
	PasswordHash  string
	Active        bool
}

func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Directory looks up and stores employee accounts.
type Directory interface {
	// Authenticate matches login against the username or the work email.
	// Unknown logins, wrong passwords, inactive accounts and accounts
	// without a password all return ErrInvalidCredentials.
	Authenticate(ctx context.Context, login, password string) (Employee, error)
	Create(ctx context.Context, e Employee) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Transactor is implemented by directories that can apply a group of writes
// atomically. fn receives a directory bound to the transaction; its writes
// are kept only if fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn func(Directory) error) error
}

// NormalizeEmail trims and lowercases a work email.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
