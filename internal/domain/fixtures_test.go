package domain

func cardHolder() Product {
	return Product{
		Name:          "Card Holder",
		Category:      "Badges & Accessories",
		OtherNames:    "badge holder, id holder",
		WebsiteColors: []string{"Black", "Clear"},
		Sourcing: Sourcing{
			Local: LocalSourcing{Supplier: "ABC Supplies", MOQ: IntPtr(100), LeadTime: "5-7 days"},
			China: ChinaSourcing{Available: true, MOQ: IntPtr(1000), Sea: true},
		},
	}
}

func testCatalog() []Product {
	return []Product{
		cardHolder(),
		{
			Name:          "Cotton T-Shirt",
			Category:      "Apparel",
			OtherNames:    "tee, t-shirt",
			WebsiteColors: []string{"White", "Navy Blue"},
		},
		{
			Name:       "Hoodie",
			Category:   "Apparel",
			OtherNames: "hooded sweatshirt, ,",
		},
		{
			Name:     "Lanyard",
			Category: "Badges & Accessories",
		},
	}
}

func names(products []Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}
