package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	authservice "gearbook/internal/app/services/auth"
	"gearbook/internal/domain/items"
	"gearbook/internal/domain/pricing"
	"gearbook/internal/domain/user"
)

// loadFixtures seeds demo gear and users in memory mode so the API is
// usable right after startup. Mongo deployments manage their own data.
func (a application) loadFixtures(ctx context.Context, logger *slog.Logger) error {
	if a.memo == nil {
		return nil
	}
	if err := a.seedAdmin(ctx, logger); err != nil {
		return err
	}

	path := os.Getenv("GEAR_FIXTURES")
	if path == "" {
		path = defaultGearFixturesPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("gear fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}

	var fixtures []gearFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	for _, fx := range fixtures {
		ownerID, err := a.ensureFixtureOwner(ctx, fx.OwnerEmail)
		if err != nil {
			logger.Error("fixture owner setup failed", "item_id", fx.ID, "error", err)
			continue
		}
		item, err := items.NewItem(fx.ID, ownerID, fx.Title, pricing.RateCard{
			Currency:         fx.Currency,
			DailyRateCents:   fx.DailyRateCents,
			WeekendRateCents: fx.WeekendRateCents,
			HourlyRateCents:  fx.HourlyRateCents,
			MinHours:         fx.MinHours,
		})
		if err != nil {
			logger.Error("fixture invalid", "item_id", fx.ID, "error", err)
			continue
		}
		item.Description = fx.Description
		item.Category = fx.Category
		item.InstantBook = fx.InstantBook
		if err := a.memo.items.Save(ctx, item); err != nil {
			logger.Error("cannot store fixture item", "item_id", fx.ID, "error", err)
			continue
		}
		logger.Info("gear fixture imported", "item_id", item.ID, "owner_id", ownerID)
	}
	return nil
}

// seedAdmin creates the support account named by ADMIN_EMAIL/ADMIN_PASSWORD.
func (a application) seedAdmin(ctx context.Context, logger *slog.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}
	u, err := a.auth.Register(ctx, authservice.RegisterInput{Email: email, Password: password, DisplayName: "Support"})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil
		}
		return err
	}
	u.GrantRole(user.RoleAdmin)
	if err := a.memo.users.Save(ctx, u); err != nil {
		return err
	}
	logger.Info("admin account seeded", "email", email)
	return nil
}

// ensureFixtureOwner registers the fixture's owner account once and reuses
// it across items.
func (a application) ensureFixtureOwner(ctx context.Context, email string) (string, error) {
	if email == "" {
		email = "owner@gearbook.test"
	}
	if existing, err := a.memo.users.ByEmail(ctx, email); err == nil {
		return existing.ID, nil
	} else if !errors.Is(err, user.ErrNotFound) {
		return "", err
	}
	u, err := a.auth.Register(ctx, authservice.RegisterInput{Email: email, Password: uuid.NewString(), DisplayName: "Fixture Owner"})
	if err != nil {
		return "", err
	}
	u.GrantRole(user.RoleOwner)
	if err := a.memo.users.Save(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

type gearFixture struct {
	ID               string  `json:"id"`
	OwnerEmail       string  `json:"owner_email"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	InstantBook      bool    `json:"instant_book"`
	Currency         string  `json:"currency"`
	DailyRateCents   int64   `json:"daily_rate_cents"`
	WeekendRateCents int64   `json:"weekend_rate_cents"`
	HourlyRateCents  int64   `json:"hourly_rate_cents"`
	MinHours         float64 `json:"min_hours"`
}

func defaultGearFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "gear.json"),
		filepath.Join("..", "data", "gear.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}
