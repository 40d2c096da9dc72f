package availability

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
	"github.com/MrSnakeDoc/promoavail/internal/index"
	"github.com/MrSnakeDoc/promoavail/internal/logger"
)

func testProducts() []domain.Product {
	return []domain.Product{
		{
			Name:          "Card Holder",
			Category:      "Badges & Accessories",
			OtherNames:    "badge holder, id holder",
			WebsiteColors: []string{"Black", "Clear"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "ABC Supplies", MOQ: domain.IntPtr(100), LeadTime: "5-7 days"},
				China: domain.ChinaSourcing{Available: true, MOQ: domain.IntPtr(1000), Air: true, Sea: true},
			},
		},
		{
			Name:          "Cotton T-Shirt",
			Category:      "Apparel",
			OtherNames:    "tee, t-shirt",
			WebsiteColors: []string{"White", "Navy"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "Shirt Co", MOQ: domain.IntPtr(50), LeadTime: "10 days", Colors: []string{"Red"}},
				China: domain.ChinaSourcing{Available: true, MOQ: domain.IntPtr(1000), Sea: true, Colors: "any pantone color"},
			},
		},
		{
			Name:          "Hoodie",
			Category:      "Apparel",
			OtherNames:    "hoodies, hooded sweatshirt",
			WebsiteColors: []string{"Black"},
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "Warm Wear", MOQ: domain.IntPtr(25)},
				China: domain.ChinaSourcing{Available: true, MOQ: domain.IntPtr(500), Sea: true, Colors: "green, orange"},
			},
		},
		{
			Name:     "Lanyard",
			Category: "Badges & Accessories",
			Sourcing: domain.Sourcing{
				Local: domain.LocalSourcing{Supplier: "ABC Supplies"},
			},
		},
	}
}

func testSynonyms() []domain.Synonym {
	return []domain.Synonym{
		{CustomerSays: "badge case", WeCallIt: "Card Holder"},
		{CustomerSays: "jumper", WeCallIt: "Hoodie"},
	}
}

func populatedCatalog() *index.Catalog {
	cat := index.NewCatalog()
	cat.Swap(index.NewSnapshot(testProducts(), testSynonyms(), time.Now(), index.OriginStore))
	return cat
}

func newTestService(opts ...Option) *Service {
	return NewService(populatedCatalog(), nil, logger.Nop(), opts...)
}

var ctx = context.Background()

func boolPtr(b bool) *bool { return &b }
