package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/compliport/backend/internal/domain/catalog"
	"github.com/compliport/backend/internal/domain/shared"
	"github.com/compliport/backend/internal/infrastructure/config"
	"github.com/compliport/backend/internal/infrastructure/logger"
	"github.com/compliport/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	var (
		seed     bool
		logLevel string
	)
	flag.BoolVar(&seed, "seed", false, "Seed the default tier and feature catalog after migrating")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Running schema migration")
	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema migration complete")

	if seed {
		if err := seedCatalog(context.Background(), db, log); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
		log.Info("Catalog seeded")
	}
}

type tierSeed struct {
	code        string
	displayName string
	price       int64
	yearlyPrice int64
	rank        int
	caps        catalog.ResourceCaps
	grants      map[string]*int64 // feature key -> limit, nil = unlimited
}

type featureSeed struct {
	key         string
	description string
	module      string
	premium     bool
	kind        catalog.FeatureKind
}

func limit(n int64) *int64 { return &n }

var featureSeeds = []featureSeed{
	{"api_calls", "Monthly API request quota", "platform", false, catalog.FeatureKindMetered},
	{"document_exports", "Monthly document export quota", "documents", false, catalog.FeatureKindMetered},
	{"advanced_reports", "Scheduled and drill-down reporting", "reporting", true, catalog.FeatureKindBoolean},
	{"sso", "Single sign-on integration", "security", true, catalog.FeatureKindBoolean},
	{"concurrent_sessions", "Simultaneous user sessions", "platform", false, catalog.FeatureKindConcurrency},
}

var tierSeeds = []tierSeed{
	{
		code: "free", displayName: "Free", price: 0, yearlyPrice: 0, rank: 0,
		caps: catalog.ResourceCaps{MaxUsers: 2, MaxDocuments: 100, MaxStorageMB: 256, MaxConcurrentSessions: 1},
		grants: map[string]*int64{
			"api_calls":        limit(1000),
			"document_exports": limit(10),
		},
	},
	{
		code: "starter", displayName: "Starter", price: 29, yearlyPrice: 290, rank: 1,
		caps: catalog.ResourceCaps{MaxUsers: 10, MaxDocuments: 5000, MaxStorageMB: 2048, MaxConcurrentSessions: 3},
		grants: map[string]*int64{
			"api_calls":        limit(50000),
			"document_exports": limit(200),
		},
	},
	{
		code: "professional", displayName: "Professional", price: 99, yearlyPrice: 990, rank: 2,
		caps: catalog.ResourceCaps{MaxUsers: 50, MaxDocuments: 100000, MaxStorageMB: 20480, MaxConcurrentSessions: 10},
		grants: map[string]*int64{
			"api_calls":        limit(500000),
			"document_exports": limit(5000),
			"advanced_reports": nil,
		},
	},
	{
		code: "enterprise", displayName: "Enterprise", price: 299, yearlyPrice: 2990, rank: 3,
		caps: catalog.ResourceCaps{},
		grants: map[string]*int64{
			"api_calls":        nil,
			"document_exports": nil,
			"advanced_reports": nil,
			"sso":              nil,
		},
	},
}

// seedCatalog installs the default tiers, features, and capability
// matrix. Existing rows are left alone so re-running is safe.
func seedCatalog(ctx context.Context, db *persistence.Database, log *zap.Logger) error {
	tiers := persistence.NewGormTierRepository(db.DB)
	features := persistence.NewGormFeatureRepository(db.DB)
	tierFeatures := persistence.NewGormTierFeatureRepository(db.DB)

	for _, fs := range featureSeeds {
		if _, err := features.FindByKey(ctx, fs.key); err == nil {
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		feature, err := catalog.NewFeature(fs.key, fs.description, fs.module, fs.kind)
		if err != nil {
			return err
		}
		if fs.premium {
			feature.MarkPremium()
		}
		if err := features.Save(ctx, feature); err != nil {
			return err
		}
		log.Info("Seeded feature", zap.String("key", fs.key))
	}

	for _, ts := range tierSeeds {
		if _, err := tiers.FindByCode(ctx, ts.code); err == nil {
			continue
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		tier, err := catalog.NewTier(ts.code, ts.displayName, decimal.NewFromInt(ts.price), ts.rank, ts.caps)
		if err != nil {
			return err
		}
		if err := tier.UpdateYearlyPrice(decimal.NewFromInt(ts.yearlyPrice)); err != nil {
			return err
		}
		if err := tiers.Save(ctx, tier); err != nil {
			return err
		}
		for key, lim := range ts.grants {
			grant, err := catalog.NewTierFeature(tier.ID, key, true, lim)
			if err != nil {
				return err
			}
			if err := tierFeatures.Save(ctx, grant); err != nil {
				return err
			}
		}
		log.Info("Seeded tier", zap.String("code", ts.code), zap.Int("grants", len(ts.grants)))
	}

	return nil
}
