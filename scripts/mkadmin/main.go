// mkadmin/main.go
//
// Bootstraps the first admin account:
//
//	ADMIN_USERNAME=chief ADMIN_PASSWORD='Super-Long-Temp-Password' go run ./scripts/mkadmin
//
// Running it again for an existing username promotes that account to
// admin and resets its password.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/auth"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/config"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/repo"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	username := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_USERNAME")))
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || len(password) < 6 {
		fmt.Fprintln(os.Stderr, "set ADMIN_USERNAME and ADMIN_PASSWORD (min 6 chars)")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		fmt.Fprintln(os.Stderr, "db connect error:", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	store := repo.New(client.Database(cfg.Database.Name))

	phc, err := auth.HashPassword(password, auth.DefaultArgonParams())
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash error:", err)
		os.Exit(1)
	}

	u, err := store.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		u.Role = models.RoleAdmin
		u.Active = true
		u.PasswordHash = phc
		if err := store.UpdateUser(ctx, u); err != nil {
			fmt.Fprintln(os.Stderr, "update error:", err)
			os.Exit(1)
		}
		fmt.Println("promoted", username, "to admin")
	case apperr.KindOf(err) == apperr.KindNotFound:
		u = &models.User{
			FirstName:    "Admin",
			LastName:     "User",
			Username:     username,
			PasswordHash: phc,
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := store.CreateUser(ctx, u); err != nil {
			fmt.Fprintln(os.Stderr, "create error:", err)
			os.Exit(1)
		}
		fmt.Println("created admin", username)
	default:
		fmt.Fprintln(os.Stderr, "lookup error:", err)
		os.Exit(1)
	}
}
