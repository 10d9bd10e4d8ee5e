package store

import "github.com/laxmi8801/data-extractor/internal/domain"

func juiceRecord() *domain.ProductRecord {
	return &domain.ProductRecord{
		ProductName: "Mango Fruit Drink",
		BrandName:   "Sunfresh Beverages Pvt Ltd",
		Ingredients: []domain.Ingredient{
			{Name: "Water"},
			{Name: "Mango Pulp", Percent: "19.5%"},
			{Name: "Preservative", Metadata: "INS 211"},
		},
		ServingSize:     domain.Quantity{Quantity: 200, Unit: "ml"},
		PackagingSize:   domain.Quantity{Quantity: 1, Unit: "l"},
		ServingsPerPack: 5,
		NutritionalInformation: []domain.Nutrient{{
			Name: "Energy",
			Unit: "kcal",
			Values: []domain.NutrientValue{
				{Base: "per 100ml", Value: 58},
				{Base: "per serving", Value: 116},
			},
		}},
		FSSAILicenseNumbers: []float64{10012345000123, 10012345000123},
		Claims:              []string{"contains fruit"},
		ShelfLife:           "9 months",
	}
}
