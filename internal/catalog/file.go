package catalog

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout shared by FileRepository and the seeder.
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
}

// SeedProduct is one product entry; prices are quoted strings.
type SeedProduct struct {
	Slug  string `yaml:"slug"`
	Title string `yaml:"title"`
	Price string `yaml:"price"`
}

// DecodeSeed parses a YAML seed document into products.
func DecodeSeed(r io.Reader) ([]Product, error) {
	var seed SeedFile
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	out := make([]Product, 0, len(seed.Products))
	for i, sp := range seed.Products {
		slug := NormalizeSlug(sp.Slug)
		if slug == "" {
			return nil, fmt.Errorf("product %d: slug is required", i)
		}
		price, err := decimal.NewFromString(sp.Price)
		if err != nil {
			return nil, fmt.Errorf("product %s: price %q: %w", slug, sp.Price, err)
		}
		out = append(out, Product{Slug: slug, Title: sp.Title, Price: price})
	}
	return out, nil
}

// FileRepository serves products loaded once from a YAML seed.
type FileRepository struct {
	products map[string]Product
}

// NewFileRepository builds a repository from already decoded products.
func NewFileRepository(products []Product) *FileRepository {
	repo := &FileRepository{products: make(map[string]Product, len(products))}
	for _, p := range products {
		repo.products[NormalizeSlug(p.Slug)] = p
	}
	return repo
}

// LoadFile reads a YAML seed file from disk.
func LoadFile(path string) (*FileRepository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()
	products, err := DecodeSeed(f)
	if err != nil {
		return nil, err
	}
	return NewFileRepository(products), nil
}

// FindBySlug implements Repository.
func (r *FileRepository) FindBySlug(_ context.Context, slug string) (Product, error) {
	if r == nil {
		return Product{}, ErrProductNotFound
	}
	p, ok := r.products[NormalizeSlug(slug)]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}
