package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"leadcrm-backend/config"
	"leadcrm-backend/logger"
	"leadcrm-backend/models"
	"leadcrm-backend/repository"
	"leadcrm-backend/rowstore"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// create-test-user seeds a staff login into the Users sheet.
func main() {
	email := flag.String("email", "admin@example.com", "login email")
	username := flag.String("username", "admin", "login username")
	password := flag.String("password", "testpassword123", "login password")
	name := flag.String("name", "Test Admin", "display name")
	role := flag.String("role", string(models.RoleAdmin), "admin or sales")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Server.Env, "create-test-user")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	r := models.Role(strings.ToLower(*role))
	if r != models.RoleAdmin && r != models.RoleSales {
		log.Fatal("Role must be admin or sales", zap.String("role", *role))
	}

	ctx := context.Background()

	store, closeStore, err := rowstore.Open(ctx, rowstore.OpenConfig{
		Type:        cfg.Store.Type,
		DatabaseURL: cfg.Store.DatabaseURL,
		Sheets: rowstore.SheetsConfig{
			SpreadsheetID:   cfg.Sheets.SpreadsheetID,
			CredentialsJSON: cfg.Sheets.CredentialsJSON,
			CredentialsFile: cfg.Sheets.CredentialsFile,
		},
		MemorySheets: models.SheetNames(),
	})
	if err != nil {
		log.Fatal("Failed to open row store", zap.Error(err))
	}
	defer closeStore()

	users := repository.NewUserRepository(store)

	// Check if user already exists
	if existing, err := users.FindByLogin(ctx, *email); err == nil {
		log.Info("User already exists", zap.String("user_id", existing.User.UserID))
		return
	}
	taken, err := users.UsernameExists(ctx, *username)
	if err != nil {
		log.Fatal("Failed to check username", zap.Error(err))
	}
	if taken {
		log.Fatal("Username already taken", zap.String("username", *username))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password", zap.Error(err))
	}

	user := models.User{
		UserID:       "U-" + uuid.NewString(),
		Name:         *name,
		Email:        strings.ToLower(*email),
		Username:     strings.ToLower(*username),
		PasswordHash: string(hash),
		Role:         r,
		Status:       models.UserActive,
	}
	if err := users.Append(ctx, user); err != nil {
		log.Fatal("Failed to create user", zap.Error(err))
	}

	fmt.Printf("Test user created\n")
	fmt.Printf("   ID: %s\n", user.UserID)
	fmt.Printf("   Email: %s\n", user.Email)
	fmt.Printf("   Username: %s\n", user.Username)
	fmt.Printf("   Role: %s\n", user.Role)
}
