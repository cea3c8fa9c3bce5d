package database

import (
	"errors"
	"fmt"
	"os"

	"reward-admin/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// EnsureSuperAdmin creates the first SUPER_ADMIN if none exists. Further
// accounts are managed through the API.
func EnsureSuperAdmin(db *gorm.DB, username, password string, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.Account{}).
		Where("role = ?", models.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return fmt.Errorf("check super admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash super admin password: %w", err)
	}

	admin := models.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create super admin: %w", err)
	}

	log.Info("created default super admin", zap.String("username", username))
	return nil
}

// Seed is the layout of the optional taxonomy seed file.
type Seed struct {
	ContributionGroups []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Weight      int    `yaml:"weight"`
	} `yaml:"contribution_groups"`
	Positions []struct {
		Name              string `yaml:"name"`
		ContributionGroup string `yaml:"contribution_group"`
	} `yaml:"positions"`
	Units []struct {
		Name        string `yaml:"name"`
		Code        string `yaml:"code"`
		Description string `yaml:"description"`
	} `yaml:"units"`
}

func LoadSeedFile(path string) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &s, nil
}

// ApplySeed inserts taxonomy rows that are missing by name; existing rows are
// left untouched so the seed can run on every start.
func ApplySeed(db *gorm.DB, s *Seed, log *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		groups := map[string]uint{}
		for _, g := range s.ContributionGroups {
			row := models.ContributionGroup{Name: g.Name, Description: g.Description, Weight: g.Weight}
			if err := firstOrCreate(tx, &row, "name = ?", g.Name); err != nil {
				return fmt.Errorf("seed contribution group %q: %w", g.Name, err)
			}
			groups[g.Name] = row.ID
		}

		for _, p := range s.Positions {
			row := models.Position{Name: p.Name}
			if p.ContributionGroup != "" {
				id, ok := groups[p.ContributionGroup]
				if !ok {
					return fmt.Errorf("seed position %q: unknown contribution group %q", p.Name, p.ContributionGroup)
				}
				row.ContributionGroupID = &id
			}
			if err := firstOrCreate(tx, &row, "name = ?", p.Name); err != nil {
				return fmt.Errorf("seed position %q: %w", p.Name, err)
			}
		}

		for _, u := range s.Units {
			row := models.Unit{Name: u.Name, Code: u.Code, Description: u.Description}
			if err := firstOrCreate(tx, &row, "name = ?", u.Name); err != nil {
				return fmt.Errorf("seed unit %q: %w", u.Name, err)
			}
		}

		log.Info("taxonomy seed applied",
			zap.Int("contribution_groups", len(s.ContributionGroups)),
			zap.Int("positions", len(s.Positions)),
			zap.Int("units", len(s.Units)))
		return nil
	})
}

func firstOrCreate(tx *gorm.DB, dst interface{}, query string, args ...interface{}) error {
	err := tx.Where(query, args...).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(dst).Error
	}
	return err
}
