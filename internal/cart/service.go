package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/clothing-store-backend/internal/identity"
	"github.com/angelmondragon/clothing-store-backend/pkg/db"
	"github.com/angelmondragon/clothing-store-backend/pkg/db/models"
	"github.com/angelmondragon/clothing-store-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clothing-store-backend/pkg/errors"
)

// Service exposes the cart operations available to shoppers.
type Service interface {
	Get(ctx context.Context, owner identity.Identity) (*CartDTO, error)
	AddLine(ctx context.Context, owner identity.Identity, input AddLineInput) (*CartDTO, error)
	UpdateLine(ctx context.Context, owner identity.Identity, lineID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveLine(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, owner identity.Identity) error
}

// AddLineInput is the add-to-cart payload. Quantity defaults to 1 when nil.
type AddLineInput struct {
	ProductID uuid.UUID
	Size      string
	Quantity  *int
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
	}, nil
}

func (s *service) Get(ctx context.Context, owner identity.Identity) (*CartDTO, error) {
	cart, err := s.resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, cart)
}

func (s *service) AddLine(ctx context.Context, owner identity.Identity, input AddLineInput) (*CartDTO, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	size, err := availableSize(*product, input.Size)
	if err != nil {
		return nil, err
	}

	cart, err := s.resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	if err := s.addOrIncrement(ctx, cart, product.ID, size, quantity); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, err
		}
		// A concurrent add created the line first; the retry increments it.
		if err := s.addOrIncrement(ctx, cart, product.ID, size, quantity); err != nil {
			return nil, err
		}
	}
	return s.reload(ctx, owner)
}

func (s *service) addOrIncrement(ctx context.Context, cart *models.Cart, productID uuid.UUID, size string, quantity int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := repo.IncrementLine(ctx, cart.ID, productID, size, quantity)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
		}
		if !found {
			line := &models.CartLine{
				CartID:    cart.ID,
				ProductID: productID,
				Size:      size,
				Quantity:  quantity,
				Position:  cart.NextPosition(),
			}
			if err := repo.CreateLine(ctx, line); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
			}
		}
		if err := repo.Touch(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart")
		}
		return nil
	})
}

func (s *service) UpdateLine(ctx context.Context, owner identity.Identity, lineID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	cart, err := s.existing(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.FindLine(lineID); !ok {
		return nil, errLineNotFound()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.SetLineQuantity(ctx, cart.ID, lineID, quantity); err != nil {
			return err
		}
		return repo.Touch(ctx, cart.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLineNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return s.reload(ctx, owner)
}

func (s *service) RemoveLine(ctx context.Context, owner identity.Identity, lineID uuid.UUID) (*CartDTO, error) {
	cart, err := s.existing(ctx, owner)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.FindLine(lineID); !ok {
		return nil, errLineNotFound()
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteLine(ctx, cart.ID, lineID); err != nil {
			return err
		}
		return repo.Touch(ctx, cart.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLineNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.reload(ctx, owner)
}

func (s *service) Clear(ctx context.Context, owner identity.Identity) error {
	cart, err := s.existing(ctx, owner)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, cart.ID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errCartNotFound()
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// resolve returns the identity's cart, creating it on first use. A create that
// loses the race on the unique identity index re-reads the winner's row.
func (s *service) resolve(ctx context.Context, owner identity.Identity) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindByIdentity(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	cart = newCartFor(owner)
	if err := s.repo.Create(ctx, cart); err != nil {
		if !db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
		cart, err = s.repo.FindByIdentity(ctx, owner)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart after conflict")
		}
	}
	return cart, nil
}

// existing returns the identity's cart without creating one.
func (s *service) existing(ctx context.Context, owner identity.Identity) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	cart, err := s.repo.FindByIdentity(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errCartNotFound()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) reload(ctx context.Context, owner identity.Identity) (*CartDTO, error) {
	cart, err := s.existing(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.render(ctx, cart)
}

func (s *service) render(ctx context.Context, cart *models.Cart) (*CartDTO, error) {
	products, err := s.products.FindByIDs(ctx, ProductIDs(cart.Lines))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	dto := NewCartDTO(*cart, products)
	return &dto, nil
}

func newCartFor(owner identity.Identity) *models.Cart {
	cart := &models.Cart{}
	if userID, ok := owner.UserID(); ok {
		cart.UserID = &userID
		return cart
	}
	sessionID, _ := owner.SessionID()
	cart.SessionID = &sessionID
	return cart
}

func availableSize(product models.Product, raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "size is required")
	}
	size, err := enums.ParseProductSize(trimmed)
	if err != nil || !product.OffersSize(size) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size %s is not available", trimmed))
	}
	return size.String(), nil
}

func errCartNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
}

func errLineNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not found in cart")
}
