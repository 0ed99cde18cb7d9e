package domain

import "time"

// Token is an OAuth2 access token issued by the catalog.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the token is unusable at now.
func (t *Token) Expired(now time.Time) bool {
	return t == nil || t.AccessToken == "" || !now.Before(t.ExpiresAt)
}

// Location is a store returned by the locations endpoint.
type Location struct {
	LocationID string          `json:"locationId"`
	Name       string          `json:"name"`
	Address    LocationAddress `json:"address"`
}

// LocationAddress is the postal address of a store.
type LocationAddress struct {
	AddressLine1 string `json:"addressLine1"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode"`
}

// Product is a catalog product as returned by the products endpoints.
type Product struct {
	ProductID            string                 `json:"productId"`
	UPC                  string                 `json:"upc,omitempty"`
	Brand                string                 `json:"brand,omitempty"`
	Description          string                 `json:"description"`
	Categories           []string               `json:"categories,omitempty"`
	Items                []ProductItem          `json:"items,omitempty"`
	NutritionInformation []NutritionInformation `json:"nutritionInformation,omitempty"`
}

// ProductItem is a purchasable variant of a product.
type ProductItem struct {
	ItemID string        `json:"itemId"`
	UPC    string        `json:"upc,omitempty"`
	Size   string        `json:"size,omitempty"`
	Price  *ProductPrice `json:"price,omitempty"`
}

// ProductPrice holds regular and promotional prices. Promo is 0 when there is no sale.
type ProductPrice struct {
	Regular float64 `json:"regular"`
	Promo   float64 `json:"promo"`
}

// NutritionInformation is the nutrition panel of a product.
type NutritionInformation struct {
	ServingSize        ServingSize        `json:"servingSize"`
	ServingsPerPackage ServingsPerPackage `json:"servingsPerPackage"`
	Nutrients          []Nutrient         `json:"nutrients"`
}

// ServingSize is a quantity with its unit of measure.
type ServingSize struct {
	Quantity      float64       `json:"quantity"`
	UnitOfMeasure UnitOfMeasure `json:"unitOfMeasure"`
}

// ServingsPerPackage carries the numeric value and its label ("about 8").
type ServingsPerPackage struct {
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// UnitOfMeasure names a unit.
type UnitOfMeasure struct {
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name,omitempty"`
}

// Nutrient is a single line of the nutrition panel.
type Nutrient struct {
	Code          string        `json:"code,omitempty"`
	DisplayName   string        `json:"displayName"`
	Quantity      float64       `json:"quantity"`
	UnitOfMeasure UnitOfMeasure `json:"unitOfMeasure"`
}

// Pagination is the meta.pagination block of list responses.
type Pagination struct {
	Start int `json:"start"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ProductsResponse is the body of the product search endpoint.
type ProductsResponse struct {
	Data []Product `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}
