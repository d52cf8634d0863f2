// Command seed loads the default destination fee table and, optionally, the
// first admin account. It is safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/internal/core/ports"
	"github.com/courierpwa/courier-ops/internal/infrastructure/db/mongo"
	"github.com/courierpwa/courier-ops/internal/pkg/config"
	"github.com/courierpwa/courier-ops/pkg/logger"
	"github.com/courierpwa/courier-ops/pkg/phone"
)

type seedDestination struct {
	name    string
	region  string
	baseFee int64
}

var defaultDestinations = []seedDestination{
	{"Nairobi CBD", "Nairobi", 150},
	{"Westlands", "Nairobi", 120},
	{"Mombasa", "Coast", 250},
	{"Kisumu", "Nyanza", 200},
	{"Eldoret", "Rift Valley", 180},
	{"Nakuru", "Rift Valley", 160},
}

func main() {
	var adminPhone, adminName string
	flag.StringVar(&adminPhone, "admin-phone", "", "Phone number of the first admin account")
	flag.StringVar(&adminName, "admin-name", "Administrator", "Display name of the first admin account")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.Pretty(), Service: "courier-seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "courier-seed", Timeout: cfg.Mongo.Timeout})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer client.Disconnect(context.Background())

	repos := mongo.NewRepositories(db, cfg.Mongo.Timeout)
	if err := repos.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure mongodb indexes")
	}

	n, err := seedDestinations(ctx, repos.Destinations, time.Now().UTC())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed destinations")
	}
	log.Info().Int("inserted", n).Msg("destinations seeded")

	if adminPhone != "" {
		admin, err := seedAdmin(ctx, repos.Staff, adminName, adminPhone, time.Now().UTC(), log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin")
		}
		log.Info().Str("staff_id", admin.ID).Str("phone", admin.Phone).Msg("admin ready")
	}
}

// seedDestinations inserts the default table when the collection is empty and
// returns how many rows it wrote.
func seedDestinations(ctx context.Context, repo ports.DestinationRepository, now time.Time) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for i, d := range defaultDestinations {
		err := repo.Create(ctx, &domain.Destination{
			Name:      d.name,
			Region:    d.region,
			BaseFee:   decimal.NewFromInt(d.baseFee),
			CreatedAt: now,
		})
		if err != nil {
			return i, err
		}
	}
	return len(defaultDestinations), nil
}

// seedAdmin makes sure an admin account exists for number, promoting an
// existing staff record when needed.
func seedAdmin(ctx context.Context, repo ports.StaffRepository, name, number string, now time.Time, log zerolog.Logger) (*domain.Staff, error) {
	if !phone.Validate(number) {
		return nil, errors.New("admin-phone is not a valid phone number")
	}
	formatted := phone.Format(number)

	existing, err := repo.FindByPhone(ctx, formatted)
	switch {
	case err == nil:
		if existing.Role == domain.RoleAdmin {
			return existing, nil
		}
		existing.Role = domain.RoleAdmin
		existing.UpdatedAt = now
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		log.Warn().Str("staff_id", existing.ID).Msg("existing staff promoted to admin")
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		return repo.Create(ctx, &domain.Staff{
			Name:      name,
			Phone:     formatted,
			Role:      domain.RoleAdmin,
			CreatedAt: now,
			UpdatedAt: now,
		})
	default:
		return nil, err
	}
}
