package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/example/storefront/pkg/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrAddressNotFound = errors.New("address not found")
	ErrAlreadySaved    = errors.New("product already saved")
	ErrNotSaved        = errors.New("product is not saved")
)

// Repository is the profile persistence surface.
type Repository interface {
	GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error)
	Addresses(ctx context.Context, profileID string) ([]models.Address, error)
	AddressByID(ctx context.Context, profileID string, addressID uint) (*models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) error
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddresses(ctx context.Context, profileID string, addressIDs []uint) (int64, error)
	SetDefaultAddress(ctx context.Context, profileID string, addressID uint) error
	SavedProducts(ctx context.Context, profileID string) ([]models.SavedProduct, error)
	SaveProduct(ctx context.Context, profileID, productID string) error
	RemoveSavedProduct(ctx context.Context, profileID, productID string) error
}

// OrderHistory lists a profile's completed orders, newest first.
type OrderHistory interface {
	OrdersForProfile(ctx context.Context, profileID string) ([]models.Order, error)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type AddressForm struct {
	StreetAddress1 string `json:"street_address1" validate:"required,max=80"`
	StreetAddress2 string `json:"street_address2" validate:"max=80"`
	TownOrCity     string `json:"town_or_city" validate:"required,max=40"`
	County         string `json:"county" validate:"max=80"`
	Postcode       string `json:"postcode" validate:"required,max=20"`
	Country        string `json:"country" validate:"required,max=40"`
	Default        bool   `json:"default"`
}

// Validate returns the offending fields keyed by wire name, nil when valid.
func (f *AddressForm) Validate() map[string]string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"form": err.Error()}
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
	}
	return fields
}

func (f *AddressForm) apply(a *models.Address) {
	a.StreetAddress1 = f.StreetAddress1
	a.StreetAddress2 = f.StreetAddress2
	a.TownOrCity = f.TownOrCity
	a.County = f.County
	a.Postcode = f.Postcode
	a.Country = f.Country
	a.Default = f.Default
}

// AddressBook is the address list split the way the profile page wants it:
// the default address first, then the rest.
type AddressBook struct {
	Default *models.Address  `json:"default,omitempty"`
	Others  []models.Address `json:"others"`
	Total   int              `json:"total"`
}

type Service struct {
	repo   Repository
	orders OrderHistory
	logger *zap.Logger
}

func NewService(repo Repository, orders OrderHistory, logger *zap.Logger) *Service {
	return &Service{repo: repo, orders: orders, logger: logger}
}

func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

func (s *Service) OrderHistory(ctx context.Context, profileID string) ([]models.Order, error) {
	return s.orders.OrdersForProfile(ctx, profileID)
}

func (s *Service) AddressBook(ctx context.Context, profileID string) (*AddressBook, error) {
	addresses, err := s.repo.Addresses(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	book := &AddressBook{Others: make([]models.Address, 0, len(addresses)), Total: len(addresses)}
	for i := range addresses {
		if addresses[i].Default && book.Default == nil {
			book.Default = &addresses[i]
			continue
		}
		book.Others = append(book.Others, addresses[i])
	}
	return book, nil
}

func (s *Service) AddAddress(ctx context.Context, profileID string, form *AddressForm) (*models.Address, error) {
	address := &models.Address{UserProfileID: profileID}
	form.apply(address)
	if err := s.repo.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to add address: %w", err)
	}
	if address.Default {
		if err := s.repo.SetDefaultAddress(ctx, profileID, address.ID); err != nil {
			return nil, fmt.Errorf("failed to set default address: %w", err)
		}
	}
	return address, nil
}

func (s *Service) EditAddress(ctx context.Context, profileID string, addressID uint, form *AddressForm) (*models.Address, error) {
	address, err := s.repo.AddressByID(ctx, profileID, addressID)
	if err != nil {
		return nil, err
	}
	form.apply(address)
	if err := s.repo.UpdateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return address, nil
}

// DeleteAddresses removes the given addresses, skipping ids that do not
// belong to the profile, and reports how many rows went away.
func (s *Service) DeleteAddresses(ctx context.Context, profileID string, addressIDs []uint) (int64, error) {
	deleted, err := s.repo.DeleteAddresses(ctx, profileID, addressIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete addresses: %w", err)
	}
	if deleted != int64(len(addressIDs)) {
		s.logger.Warn("Some addresses could not be deleted",
			zap.String("profile_id", profileID),
			zap.Int("requested", len(addressIDs)),
			zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (s *Service) SetDefaultAddress(ctx context.Context, profileID string, addressID uint) error {
	return s.repo.SetDefaultAddress(ctx, profileID, addressID)
}

func (s *Service) SavedProducts(ctx context.Context, profileID string) ([]models.SavedProduct, error) {
	return s.repo.SavedProducts(ctx, profileID)
}

func (s *Service) SaveProduct(ctx context.Context, profileID, productID string) error {
	return s.repo.SaveProduct(ctx, profileID, productID)
}

func (s *Service) RemoveSavedProduct(ctx context.Context, profileID, productID string) error {
	return s.repo.RemoveSavedProduct(ctx, profileID, productID)
}
