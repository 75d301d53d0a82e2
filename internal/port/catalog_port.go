package port

import "github.com/nikolayk812/cartengine/internal/domain"

type ProductCatalog interface {
	FindProduct(id string) (domain.Product, bool)
}

type UserDirectory interface {
	Lookup(code string) (domain.UserSession, bool)
}
