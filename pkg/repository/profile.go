package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/profile"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository implements profile.Repository on MySQL via gorm.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get profile for %s: %w", userID, err)
	}

	p = models.UserProfile{ID: uuid.NewString(), UserID: userID}
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile for %s: %w", userID, err)
	}
	return &p, nil
}

func (r *ProfileRepository) Addresses(ctx context.Context, profileID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_profile_id = ?", profileID).
		Order("is_default DESC, created_at ASC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

func (r *ProfileRepository) AddressByID(ctx context.Context, profileID string, addressID uint) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("user_profile_id = ? AND id = ?", profileID, addressID).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, profile.ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get address %d: %w", addressID, err)
	}
	return &address, nil
}

func (r *ProfileRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *ProfileRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *ProfileRepository) DeleteAddresses(ctx context.Context, profileID string, addressIDs []uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_profile_id = ? AND id IN ?", profileID, addressIDs).
		Delete(&models.Address{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SetDefaultAddress makes one address the default and clears the flag on
// every other address of the profile, atomically.
func (r *ProfileRepository) SetDefaultAddress(ctx context.Context, profileID string, addressID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Address{}).
			Where("user_profile_id = ? AND id <> ?", profileID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		result := tx.Model(&models.Address{}).
			Where("user_profile_id = ? AND id = ?", profileID, addressID).
			Update("is_default", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return profile.ErrAddressNotFound
		}
		return nil
	})
}

func (r *ProfileRepository) SavedProducts(ctx context.Context, profileID string) ([]models.SavedProduct, error) {
	var saved []models.SavedProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&saved).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list saved products: %w", err)
	}
	return saved, nil
}

func (r *ProfileRepository) SaveProduct(ctx context.Context, profileID, productID string) error {
	var existing models.SavedProduct
	err := r.db.WithContext(ctx).
		Where("user_profile_id = ? AND product_id = ?", profileID, productID).
		First(&existing).Error
	if err == nil {
		return profile.ErrAlreadySaved
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check saved product: %w", err)
	}

	return r.db.WithContext(ctx).Create(&models.SavedProduct{
		UserProfileID: profileID,
		ProductID:     productID,
	}).Error
}

func (r *ProfileRepository) RemoveSavedProduct(ctx context.Context, profileID, productID string) error {
	result := r.db.WithContext(ctx).
		Where("user_profile_id = ? AND product_id = ?", profileID, productID).
		Delete(&models.SavedProduct{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return profile.ErrNotSaved
	}
	return nil
}
