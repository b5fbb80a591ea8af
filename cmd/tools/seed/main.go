// cmd/tools/seed/main.go
//
// Loads facility, court, operating-hours, and discount fixtures from a YAML
// file into the database. Replaces the pile of one-off seeding scripts this
// service used to accumulate.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/courtsidehq/courtbook/internal/booking"
	"github.com/courtsidehq/courtbook/internal/db"
	"github.com/courtsidehq/courtbook/internal/discount"
	"github.com/courtsidehq/courtbook/internal/tenant"
)

type fixtureFile struct {
	Facilities []facilityFixture `yaml:"facilities"`
	Discounts  []discountFixture `yaml:"discounts"`
}

type facilityFixture struct {
	Slug     string         `yaml:"slug"`
	Name     string         `yaml:"name"`
	Timezone string         `yaml:"timezone"`
	Currency string         `yaml:"currency"`
	Active   *bool          `yaml:"active"`
	Courts   []courtFixture `yaml:"courts"`
	Hours    []hoursFixture `yaml:"hours"`
}

type courtFixture struct {
	Number int64  `yaml:"number"`
	Name   string `yaml:"name"`
	Sport  string `yaml:"sport"`
	Active *bool  `yaml:"active"`
}

type hoursFixture struct {
	Days     []int  `yaml:"days"`
	OpensAt  string `yaml:"opens_at"`
	ClosesAt string `yaml:"closes_at"`
}

type discountFixture struct {
	Code             string  `yaml:"code"`
	Type             string  `yaml:"type"`
	Value            float64 `yaml:"value"`
	MinAmountCents   int64   `yaml:"min_amount_cents"`
	MaxDiscountCents int64   `yaml:"max_discount_cents"`
	UsageLimit       int64   `yaml:"usage_limit"`
	ValidFrom        string  `yaml:"valid_from"`
	ValidUntil       string  `yaml:"valid_until"`
}

func main() {
	var (
		dbPath      = flag.String("db", "", "Path to SQLite database")
		fixturePath = flag.String("fixtures", "", "Path to YAML fixture file")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" || *fixturePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read fixture file")
	}
	var fixtures fixtureFile
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse fixture file")
	}

	database, err := db.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	ctx := context.Background()

	for _, f := range fixtures.Facilities {
		facility, err := buildFacility(f)
		if err != nil {
			log.Fatal().Err(err).Str("slug", f.Slug).Msg("Invalid facility fixture")
		}
		id, err := database.InsertFacility(ctx, facility)
		if err != nil {
			log.Fatal().Err(err).Str("slug", f.Slug).Msg("Failed to insert facility")
		}
		log.Info().Int64("id", id).Str("slug", facility.Slug).Int("courts", len(facility.Courts)).Msg("Seeded facility")
	}

	for _, d := range fixtures.Discounts {
		record, err := buildDiscount(d)
		if err != nil {
			log.Fatal().Err(err).Str("code", d.Code).Msg("Invalid discount fixture")
		}
		id, err := database.InsertDiscount(ctx, record)
		if err != nil {
			log.Fatal().Err(err).Str("code", d.Code).Msg("Failed to insert discount")
		}
		log.Info().Int64("id", id).Str("code", record.Code).Msg("Seeded discount")
	}
}

func buildFacility(f facilityFixture) (*tenant.Facility, error) {
	facility := &tenant.Facility{
		Slug:     strings.ToLower(strings.TrimSpace(f.Slug)),
		Name:     f.Name,
		Timezone: f.Timezone,
		Currency: f.Currency,
		Active:   f.Active == nil || *f.Active,
	}
	if facility.Timezone == "" {
		facility.Timezone = "UTC"
	}
	if facility.Currency == "" {
		facility.Currency = "USD"
	}

	for _, c := range f.Courts {
		facility.Courts = append(facility.Courts, tenant.Court{
			Number: c.Number,
			Name:   c.Name,
			Sport:  c.Sport,
			Active: c.Active == nil || *c.Active,
		})
	}

	for _, h := range f.Hours {
		open, err := booking.ParseTimeOfDay(h.OpensAt)
		if err != nil {
			return nil, err
		}
		closeMin, err := booking.ParseTimeOfDay(h.ClosesAt)
		if err != nil {
			return nil, err
		}
		for _, day := range h.Days {
			if day < 0 || day > 6 {
				continue
			}
			facility.Hours[day] = tenant.DayHours{OpenMinutes: open, CloseMinutes: closeMin}
		}
	}

	return facility, nil
}

func buildDiscount(d discountFixture) (*discount.Discount, error) {
	validFrom, err := time.Parse(time.RFC3339, d.ValidFrom)
	if err != nil {
		return nil, err
	}
	validUntil, err := time.Parse(time.RFC3339, d.ValidUntil)
	if err != nil {
		return nil, err
	}

	return &discount.Discount{
		Code:             strings.ToUpper(strings.TrimSpace(d.Code)),
		Type:             discount.Type(d.Type),
		Value:            d.Value,
		MinAmountCents:   d.MinAmountCents,
		MaxDiscountCents: d.MaxDiscountCents,
		UsageLimit:       d.UsageLimit,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		Active:           true,
	}, nil
}
