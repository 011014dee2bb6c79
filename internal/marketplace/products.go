package marketplace

import (
	"context"
	"slices"
	"strings"

	"github.com/sudo-init-do/lotengo/internal/apperr"
	"github.com/sudo-init-do/lotengo/internal/db"
)

func validateProduct(in ProductInput) error {
	if in.PriceBase != nil && *in.PriceBase <= 0 {
		return apperr.InvalidInput("priceBase must be greater than zero")
	}
	if in.EtaValue != nil && *in.EtaValue <= 0 {
		return apperr.InvalidInput("etaValue must be greater than zero")
	}
	if in.EtaUnit != "" && !in.EtaUnit.Valid() {
		return apperr.InvalidInput("etaUnit must be one of min, hours, days")
	}
	return nil
}

// CreateProduct adds an entry to the seller's catalog.
func (s *Service) CreateProduct(ctx context.Context, sellerID string, in ProductInput) (db.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return db.Product{}, apperr.InvalidInput("name is required")
	}
	if err := validateProduct(in); err != nil {
		return db.Product{}, err
	}

	var product db.Product
	err := s.store.Update(ctx, func(d *db.Database) error {
		seller := d.FindUser(sellerID)
		if seller == nil {
			return apperr.NotFound("user", sellerID)
		}
		if seller.Role != db.RoleSeller {
			return apperr.Forbidden("only sellers have a catalog")
		}
		images := in.Images
		if images == nil {
			images = []string{}
		}
		product = db.Product{
			ID:         d.NextID(db.TableProducts),
			SellerID:   sellerID,
			Name:       name,
			Category:   strings.TrimSpace(in.Category),
			PriceBase:  in.PriceBase,
			EtaValue:   in.EtaValue,
			EtaUnit:    in.EtaUnit,
			Notes:      in.Notes,
			Conditions: in.Conditions,
			Images:     images,
			CreatedAt:  s.store.Now(),
		}
		d.Products = append(d.Products, product)
		return nil
	})
	if err != nil {
		return db.Product{}, err
	}
	return product, nil
}

// GetProductsBySeller returns the seller's catalog, newest first.
func (s *Service) GetProductsBySeller(sellerID string) []db.Product {
	out := []db.Product{}
	s.store.View(func(d *db.Database) {
		for _, p := range d.Products {
			if p.SellerID == sellerID {
				out = append(out, p)
			}
		}
	})
	slices.SortStableFunc(out, func(a, b db.Product) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *Service) GetProductByID(id string) (db.Product, error) {
	var (
		product db.Product
		found   bool
	)
	s.store.View(func(d *db.Database) {
		if p := d.FindProduct(id); p != nil {
			product, found = *p, true
		}
	})
	if !found {
		return db.Product{}, apperr.NotFound("product", id)
	}
	return product, nil
}

// UpdateProduct patches the owner's product. Empty fields keep their value.
func (s *Service) UpdateProduct(ctx context.Context, id, sellerID string, in ProductInput) (db.Product, error) {
	if err := validateProduct(in); err != nil {
		return db.Product{}, err
	}
	var product db.Product
	err := s.store.Update(ctx, func(d *db.Database) error {
		p := d.FindProduct(id)
		if p == nil || p.SellerID != sellerID {
			return apperr.NotFoundf("product", id, "product not found or not yours")
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			p.Name = name
		}
		if cat := strings.TrimSpace(in.Category); cat != "" {
			p.Category = cat
		}
		if in.PriceBase != nil {
			p.PriceBase = in.PriceBase
		}
		if in.EtaValue != nil {
			p.EtaValue = in.EtaValue
		}
		if in.EtaUnit != "" {
			p.EtaUnit = in.EtaUnit
		}
		if in.Notes != "" {
			p.Notes = in.Notes
		}
		if in.Conditions != "" {
			p.Conditions = in.Conditions
		}
		if in.Images != nil {
			p.Images = slices.Clone(in.Images)
		}
		product = *p
		return nil
	})
	if err != nil {
		return db.Product{}, err
	}
	return product, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id, sellerID string) error {
	return s.store.Update(ctx, func(d *db.Database) error {
		idx := slices.IndexFunc(d.Products, func(p db.Product) bool { return p.ID == id })
		if idx < 0 || d.Products[idx].SellerID != sellerID {
			return apperr.NotFoundf("product", id, "product not found or not yours")
		}
		d.Products = slices.Delete(d.Products, idx, idx+1)
		return nil
	})
}
