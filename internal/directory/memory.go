package directory

import (
	"context"
	"strings"
	"sync"

	"hr_portal/internal/security"
)

// MemoryDirectory keeps accounts in process memory. It backs the portal when
// no database is configured.
type MemoryDirectory struct {
	txMu      sync.Mutex // serializes writers with InTx
	mu        sync.RWMutex
	byEmail   map[string]Employee
	usernames map[string]string // lowercased username -> email
	hasher    *security.PasswordHasher
}

func NewMemoryDirectory(hasher *security.PasswordHasher) *MemoryDirectory {
	if hasher == nil {
		hasher = security.DefaultPasswordHasher()
	}
	return &MemoryDirectory{
		byEmail:   make(map[string]Employee),
		usernames: make(map[string]string),
		hasher:    hasher,
	}
}

func (d *MemoryDirectory) Create(ctx context.Context, e Employee) error {
	e.WorkEmail = NormalizeEmail(e.WorkEmail)
	uname := strings.ToLower(e.Username)

	d.txMu.Lock()
	defer d.txMu.Unlock()
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.byEmail[e.WorkEmail]; ok {
		return ErrEmployeeExists
	}
	if _, ok := d.usernames[uname]; ok && uname != "" {
		return ErrEmployeeExists
	}
	for _, other := range d.byEmail {
		if other.EmpID == e.EmpID {
			return ErrEmployeeExists
		}
	}

	d.byEmail[e.WorkEmail] = e
	if uname != "" {
		d.usernames[uname] = e.WorkEmail
	}
	return nil
}

// InTx stages fn's writes on a copy and publishes them only when fn
// returns nil.
func (d *MemoryDirectory) InTx(ctx context.Context, fn func(Directory) error) error {
	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.RLock()
	stage := NewMemoryDirectory(d.hasher)
	for k, v := range d.byEmail {
		stage.byEmail[k] = v
	}
	for k, v := range d.usernames {
		stage.usernames[k] = v
	}
	d.mu.RUnlock()

	if err := fn(stage); err != nil {
		return err
	}

	d.mu.Lock()
	d.byEmail, d.usernames = stage.byEmail, stage.usernames
	d.mu.Unlock()
	return nil
}

func (d *MemoryDirectory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byEmail[NormalizeEmail(email)]
	return ok, nil
}

func (d *MemoryDirectory) Authenticate(ctx context.Context, login, password string) (Employee, error) {
	d.mu.RLock()
	e, ok := d.lookup(login)
	d.mu.RUnlock()
	if !ok {
		return Employee{}, ErrInvalidCredentials
	}
	return verify(d.hasher, e, password)
}

func (d *MemoryDirectory) lookup(login string) (Employee, bool) {
	login = strings.TrimSpace(login)
	if e, ok := d.byEmail[NormalizeEmail(login)]; ok {
		return e, true
	}
	email, ok := d.usernames[strings.ToLower(login)]
	if !ok {
		return Employee{}, false
	}
	e, ok := d.byEmail[email]
	return e, ok
}

// verify checks a password against a found account.
func verify(hasher *security.PasswordHasher, e Employee, password string) (Employee, error) {
	if !e.Active || e.PasswordHash == "" {
		return Employee{}, ErrInvalidCredentials
	}
	ok, err := hasher.Verify(password, e.PasswordHash)
	if err != nil || !ok {
		return Employee{}, ErrInvalidCredentials
	}
	return e, nil
}
