package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"hr_portal/internal/config"
	"hr_portal/internal/directory"
	"hr_portal/internal/security"
)

func main() {
	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Load configuration
	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		fmt.Println("DB_URL is required to create an employee account")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := config.NewPool(ctx, cfg.Database.DBConfig(logger))
	if err != nil {
		fmt.Println("Failed to connect to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := directory.Migrate(ctx, db); err != nil {
		fmt.Println("Failed to prepare schema:", err)
		os.Exit(1)
	}

	hasher := security.DefaultPasswordHasher()
	dir := directory.NewPostgresDirectory(db, hasher, logger)

	// simple cli to create one portal account
	reader := bufio.NewScanner(os.Stdin)
	prompt := func(label string) string {
		fmt.Println(label)
		reader.Scan()
		return strings.TrimSpace(reader.Text())
	}

	fmt.Println("Creating portal employee")

	e := directory.Employee{Active: true}
	e.EmpID = prompt("Enter employee id:")
	e.FirstName = prompt("Enter first name:")
	e.LastName = prompt("Enter last name:")
	e.WorkEmail = directory.NormalizeEmail(prompt("Enter work email:"))
	if !security.IsValidEmail(e.WorkEmail) {
		fmt.Println("Invalid email address")
		os.Exit(1)
	}
	e.Username = strings.ToLower(prompt("Enter username (blank uses the email prefix):"))
	if e.Username == "" {
		e.Username = strings.SplitN(e.WorkEmail, "@", 2)[0]
	}
	if !security.IsValidUsername(e.Username) {
		fmt.Println("Invalid username")
		os.Exit(1)
	}
	e.Department = prompt(fmt.Sprintf("Enter department (%s):", strings.Join(directory.Departments, ", ")))
	e.Designation = prompt("Enter designation:")

	role, err := directory.ParseRole(prompt("Enter role (employee, intern, tl, hr, management):"))
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	e.Role = role
	e.DateOfJoining = time.Now().UTC().Truncate(24 * time.Hour)

	fmt.Println("Enter password:")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Failed to read password:", err)
		os.Exit(1)
	}
	fmt.Println() // Print newline after password input

	password := string(passwordBytes)
	if err := security.DefaultPasswordStrength().Check(password); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	e.PasswordHash, err = hasher.Hash(password)
	if err != nil {
		fmt.Println("Failed to hash password:", err)
		os.Exit(1)
	}

	if err := dir.Create(ctx, e); err != nil {
		if errors.Is(err, directory.ErrEmployeeExists) {
			fmt.Println("An employee with that id, email or username already exists")
		} else {
			fmt.Println("Failed to create employee:", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Employee %s (%s) created successfully\n", e.FullName(), e.Username)
}
