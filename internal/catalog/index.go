// Package catalog holds the read-only product index the cart takes
// its product snapshots from.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nikolayk812/cartengine/internal/domain"
	"github.com/shopspring/decimal"
)

// AllCategories selects every category in Search.
const AllCategories = "all"

type record struct {
	ID    string          `json:"id"`
	Name  string          `json:"nome"`
	Price decimal.Decimal `json:"preco"`
	Image string          `json:"imagem"`
}

type Index struct {
	categories []string
	byCategory map[string][]domain.Product
	byID       map[string]domain.Product
}

func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open: %w", err)
	}
	defer f.Close()

	index, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("catalog[%s]: %w", path, err)
	}

	return index, nil
}

// Parse reads a document of the form {"<category>": [{id, nome, preco, imagem}]}.
// Category order follows the document.
func Parse(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("io.ReadAll: %w", err)
	}

	categories, err := categoryOrder(data)
	if err != nil {
		return nil, err
	}

	var doc map[string][]record
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	index := &Index{
		categories: categories,
		byCategory: make(map[string][]domain.Product, len(doc)),
		byID:       make(map[string]domain.Product),
	}

	for _, category := range categories {
		for _, rec := range doc[category] {
			p, err := mapRecordToProduct(category, rec)
			if err != nil {
				return nil, err
			}
			if _, dup := index.byID[p.ID]; dup {
				return nil, fmt.Errorf("product id[%s] is duplicated", p.ID)
			}

			index.byID[p.ID] = p
			index.byCategory[category] = append(index.byCategory[category], p)
		}
	}

	return index, nil
}

func (i *Index) FindProduct(id string) (domain.Product, bool) {
	p, ok := i.byID[id]
	return p, ok
}

func (i *Index) Categories() []string {
	return append([]string(nil), i.categories...)
}

func (i *Index) Products(category string) []domain.Product {
	return append([]domain.Product(nil), i.byCategory[category]...)
}

// Search matches term case-insensitively against product names. An empty
// category or AllCategories searches the whole catalog.
func (i *Index) Search(term, category string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))

	categories := []string{category}
	if category == "" || category == AllCategories {
		categories = i.categories
	}

	var found []domain.Product
	for _, c := range categories {
		for _, p := range i.byCategory[c] {
			if strings.Contains(strings.ToLower(p.Name), term) {
				found = append(found, p)
			}
		}
	}
	return found
}

func mapRecordToProduct(category string, rec record) (domain.Product, error) {
	if rec.ID == "" {
		return domain.Product{}, fmt.Errorf("category[%s]: product id is empty", category)
	}
	if rec.Price.IsNegative() {
		return domain.Product{}, fmt.Errorf("product[%s]: price is negative", rec.ID)
	}

	return domain.Product{
		ID:        rec.ID,
		Name:      rec.Name,
		UnitPrice: rec.Price,
		Category:  category,
		ImageRef:  rec.Image,
	}, nil
}

// categoryOrder returns the top-level keys of the document in order.
func categoryOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("dec.Token: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("catalog must be a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("dec.Token: %w", err)
		}
		keys = append(keys, tok.(string))

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("dec.Decode: %w", err)
		}
	}

	return keys, nil
}
