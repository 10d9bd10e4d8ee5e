package domain

// ProductRow is the set of label image references read from one line of the
// input file. Images keeps the original column order.
type ProductRow struct {
	Line   int      `json:"line"`
	Images []string `json:"images"`
}

// ProductRecord is the structured information extracted from a product's
// package labels. Field names match the label_reader schema exactly.
type ProductRecord struct {
	ProductName            string       `json:"productName" bson:"productName"`
	BrandName              string       `json:"brandName" bson:"brandName"`
	Ingredients            []Ingredient `json:"ingredients" bson:"ingredients"`
	ServingSize            Quantity     `json:"servingSize" bson:"servingSize"`
	PackagingSize          Quantity     `json:"packagingSize" bson:"packagingSize"`
	ServingsPerPack        float64      `json:"servingsPerPack" bson:"servingsPerPack"`
	NutritionalInformation []Nutrient   `json:"nutritionalInformation" bson:"nutritionalInformation"`
	FSSAILicenseNumbers    []float64    `json:"fssaiLicenseNumbers" bson:"fssaiLicenseNumbers"`
	Claims                 []string     `json:"claims" bson:"claims"`
	ShelfLife              string       `json:"shelfLife" bson:"shelfLife"`
}

// Ingredient is one entry of the ingredient list. Metadata holds
// classifications such as "INS 211" and is empty when absent.
type Ingredient struct {
	Name     string `json:"name" bson:"name"`
	Percent  string `json:"percent" bson:"percent"`
	Metadata string `json:"metadata" bson:"metadata"`
}

// Quantity is an amount with its unit, e.g. 200 ml.
type Quantity struct {
	Quantity float64 `json:"quantity" bson:"quantity"`
	Unit     string  `json:"unit" bson:"unit"`
}

// Nutrient is one row of the nutrition table
type Nutrient struct {
	Name   string          `json:"name" bson:"name"`
	Unit   string          `json:"unit" bson:"unit"`
	Values []NutrientValue `json:"values" bson:"values"`
}

// NutrientValue is a nutrient amount for a reference base such as "per 100ml"
// or "per serving".
type NutrientValue struct {
	Base  string  `json:"base" bson:"base"`
	Value float64 `json:"value" bson:"value"`
}

// StoredProduct is a persisted ProductRecord together with the id the
// document store assigned to it.
type StoredProduct struct {
	ID string `json:"_id"`
	ProductRecord
}
