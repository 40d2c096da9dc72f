package domain

import "fmt"

const (
	ReasonOverseasUnavailable = "overseas sourcing not available for this product"
	ReasonUrgent              = "urgent delivery requested — local supplier fastest"
	ReasonDefaultLocal        = "default to local supplier for standard orders"
)

// Recommend picks a fulfilment tier for a product. The first matching rule wins:
//
//	overseas tier unavailable      -> local
//	urgent                         -> local
//	quantity below overseas MOQ    -> local
//	quantity at or above it        -> overseas
//	otherwise                      -> local
//
// It is deterministic and does not look at color.
func Recommend(p Product, quantity *int, urgent bool) SourcingRecommendation {
	china := p.Sourcing.China

	if !china.Available {
		return localRecommendation(p, ReasonOverseasUnavailable)
	}
	if urgent {
		return localRecommendation(p, ReasonUrgent)
	}
	if quantity != nil && china.MOQ != nil {
		if *quantity < *china.MOQ {
			return localRecommendation(p, fmt.Sprintf(
				"quantity %d is below the overseas minimum order of %d", *quantity, *china.MOQ))
		}
		return SourcingRecommendation{
			Source:   SourceChina,
			MOQ:      china.MOQ,
			LeadTime: FreightLeadTime(china),
			Reason: fmt.Sprintf(
				"quantity %d meets the overseas minimum order of %d, better unit cost at scale", *quantity, *china.MOQ),
		}
	}
	return localRecommendation(p, ReasonDefaultLocal)
}

func localRecommendation(p Product, reason string) SourcingRecommendation {
	local := p.Sourcing.Local
	return SourcingRecommendation{
		Source:   SourceLocal,
		Supplier: local.Supplier,
		MOQ:      local.MOQ,
		LeadTime: local.LeadTime,
		Reason:   reason,
	}
}

// FreightLeadTime describes the overseas shipping options.
func FreightLeadTime(china ChinaSourcing) string {
	switch {
	case china.Air && china.Sea:
		return "air or sea freight"
	case china.Air:
		return "air freight"
	case china.Sea:
		return "sea freight"
	default:
		return ""
	}
}
