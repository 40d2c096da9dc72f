package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/promoavail/internal/domain"
)

const singleSystemPrompt = `You extract product availability questions for a promotional merchandise retailer.
Read the customer message and answer with ONLY a JSON object of this exact shape:
{"productType": string, "color": string|null, "quantity": integer|null, "urgent": boolean}
- productType: the product the customer asks about, in their own words, without color or quantity.
- color: the requested color, or null.
- quantity: the number of pieces requested, or null when not stated.
- urgent: true when the customer signals a rush or deadline.`

const multiSystemPrompt = `You extract product availability questions for a promotional merchandise retailer.
The customer message may ask about several products. Answer with ONLY a JSON object of this exact shape:
{"items": [{"productType": string, "color": string|null, "quantity": integer|null, "urgent": boolean|null}], "globalUrgent": boolean}
- one item per product, in the order they appear in the message.
- urgent: true or false when the customer says so for that item, otherwise null.
- globalUrgent: true when the message as a whole signals a rush or deadline.`

// remoteItem mirrors the JSON a model returns. Urgent is optional in the batch form.
type remoteItem struct {
	ProductType string  `json:"productType"`
	Color       *string `json:"color"`
	Quantity    *int    `json:"quantity"`
	Urgent      *bool   `json:"urgent"`
}

type remoteBatch struct {
	Items        []remoteItem `json:"items"`
	GlobalUrgent bool         `json:"globalUrgent"`
}

func parseSingle(answer string) (domain.ParsedQueryItem, error) {
	raw, err := ExtractJSON(answer)
	if err != nil {
		return domain.ParsedQueryItem{}, err
	}

	var it remoteItem
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return domain.ParsedQueryItem{}, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	return it.toDomain(false)
}

func parseBatch(answer string) (domain.ParsedBatch, error) {
	raw, err := ExtractJSON(answer)
	if err != nil {
		return domain.ParsedBatch{}, err
	}

	var b remoteBatch
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return domain.ParsedBatch{}, fmt.Errorf("%w: %w", ErrInvalidOutput, err)
	}
	if len(b.Items) == 0 {
		return domain.ParsedBatch{}, fmt.Errorf("%w: no items", ErrInvalidOutput)
	}

	out := domain.ParsedBatch{Items: make([]domain.ParsedQueryItem, 0, len(b.Items)), GlobalUrgent: b.GlobalUrgent}
	for i, it := range b.Items {
		item, err := it.toDomain(b.GlobalUrgent)
		if err != nil {
			return domain.ParsedBatch{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// toDomain validates the shape; a missing urgency takes defaultUrgent.
func (it remoteItem) toDomain(defaultUrgent bool) (domain.ParsedQueryItem, error) {
	pt := strings.TrimSpace(it.ProductType)
	if pt == "" {
		return domain.ParsedQueryItem{}, fmt.Errorf("%w: empty productType", ErrInvalidOutput)
	}
	if it.Quantity != nil && *it.Quantity < 0 {
		return domain.ParsedQueryItem{}, fmt.Errorf("%w: negative quantity", ErrInvalidOutput)
	}

	var color *string
	if it.Color != nil {
		if c := strings.TrimSpace(*it.Color); c != "" && !strings.EqualFold(c, "null") {
			color = &c
		}
	}

	urgent := defaultUrgent
	if it.Urgent != nil {
		urgent = *it.Urgent
	}

	return domain.ParsedQueryItem{
		ProductType: pt,
		Color:       color,
		Quantity:    it.Quantity,
		Urgent:      urgent,
	}, nil
}
