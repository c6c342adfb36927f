package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/pitlane-hq/pitlane/internal/auth/domain"
	"github.com/pitlane-hq/pitlane/internal/auth/password"
	departmentdomain "github.com/pitlane-hq/pitlane/internal/department/domain"
	profiledomain "github.com/pitlane-hq/pitlane/internal/profile/domain"
	storedomain "github.com/pitlane-hq/pitlane/internal/store/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminPassword = "admin"
	defaultAdminDisplay  = "Pitlane Admin"
)

// EnsureAdminUser seeds a global admin for first-run bootstrap. Existing
// users are left untouched, so the seed is safe to run on every start.
func EnsureAdminUser(db *gorm.DB, email string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := ensureUserTx(ctx, tx, node, email, defaultAdminDisplay, profiledomain.RoleGlobalAdmin, nil, nil)
		return err
	})
}

// SeedDemoData creates a store group with two stores, the usual
// dealership departments, and a manager per store so a fresh install
// has something to click through.
func SeedDemoData(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		group, err := ensureStoreGroupTx(ctx, tx, node, "Apex Auto Group", "apex-auto-group")
		if err != nil {
			return err
		}

		stores := []struct {
			name string
			slug string
			city string
		}{
			{"Apex Motors Downtown", "apex-motors-downtown", "Columbus"},
			{"Apex Motors Westside", "apex-motors-westside", "Dublin"},
		}

		for _, s := range stores {
			store, err := ensureStoreTx(ctx, tx, node, group.ID, s.name, s.slug, s.city)
			if err != nil {
				return err
			}

			departments := []struct {
				name string
				typ  string
			}{
				{"Service", departmentdomain.TypeService},
				{"Sales", departmentdomain.TypeSales},
				{"Parts", departmentdomain.TypeParts},
			}
			for _, d := range departments {
				if _, err := ensureDepartmentTx(ctx, tx, node, store.ID, d.name, store.Slug+"-"+strings.ToLower(d.name), d.typ); err != nil {
					return err
				}
			}

			gmEmail := "gm@" + s.slug + ".example.com"
			if _, err := ensureUserTx(ctx, tx, node, gmEmail, s.name+" GM", profiledomain.RoleStoreGM, &store.ID, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func ensureUserTx(
	ctx context.Context,
	tx *gorm.DB,
	node *snowflake.Node,
	email, displayName, role string,
	storeID, storeGroupID *snowflake.ID,
) (*authdomain.User, error) {
	var user authdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		hashed, err := password.Hash(defaultAdminPassword)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			ExternalID:   email,
			Email:        email,
			DisplayName:  displayName,
			PasswordHash: &hashed,
			IsDefault:    true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, err
		}
	}

	var profile profiledomain.Profile
	err = tx.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		now := time.Now().UTC()
		profile = profiledomain.Profile{
			UserID:       user.ID,
			Role:         role,
			StoreID:      storeID,
			StoreGroupID: storeGroupID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.WithContext(ctx).Create(&profile).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

func ensureStoreGroupTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, name, slug string) (*storedomain.StoreGroup, error) {
	var group storedomain.StoreGroup
	err := tx.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err == nil {
		return &group, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	group = storedomain.StoreGroup{
		ID:        node.Generate(),
		Name:      name,
		Slug:      slug,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func ensureStoreTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, groupID snowflake.ID, name, slug, city string) (*storedomain.Store, error) {
	var store storedomain.Store
	err := tx.WithContext(ctx).Where("slug = ?", slug).First(&store).Error
	if err == nil {
		return &store, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	store = storedomain.Store{
		ID:        node.Generate(),
		Name:      name,
		Slug:      slug,
		GroupID:   &groupID,
		City:      city,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func ensureDepartmentTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, storeID snowflake.ID, name, slug, typ string) (*departmentdomain.Department, error) {
	var department departmentdomain.Department
	err := tx.WithContext(ctx).Where("slug = ?", slug).First(&department).Error
	if err == nil {
		return &department, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	department = departmentdomain.Department{
		ID:        node.Generate(),
		StoreID:   storeID,
		Name:      name,
		Slug:      slug,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&department).Error; err != nil {
		return nil, err
	}
	return &department, nil
}
