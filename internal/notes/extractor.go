// Package notes scrapes structured delivery metadata out of free-text
// order notes. Everything here is best-effort: the notes are written by
// customers and store staff in a mix of Chinese and English, so each
// field is extracted independently and a miss on one field never
// affects the others.
package notes

import (
	"regexp"
	"strings"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/internal/domain"
)

var (
	// Labeled amounts, e.g. "配送费:¥8", "Delivery fee: $3.50", "小费: 15.00".
	feeRe = regexp.MustCompile(`(?i)(外卖费|配送费|运费|送餐费|shipping fee|delivery fee|delivery charge)[:：]?\s*([¥￥$]?\s*\d+(\.\d+)?)`)
	tipRe = regexp.MustCompile(`(?i)(小费|感谢费|tip|gratuity|show your appreciation)[:：]?\s*([¥￥$]?\s*\d+(\.\d+)?)`)

	currencyRe = regexp.MustCompile(`[¥￥$\s]`)

	// 24h or 12h clock, e.g. "18:30", "6:30 PM".
	clockRe = regexp.MustCompile(`\d{1,2}:\d{2}(\s*[AaPp][Mm])?`)
	// Chinese spoken time, e.g. "下午3点30分".
	spokenTimeRe = regexp.MustCompile(`[上下]午\s*\d{1,2}\s*[点时]\s*(\d{1,2}\s*分钟?)?`)
)

var deliveryKeywords = []string{"外卖", "配送", "送货", "送餐", "deliver"}

var pickupKeywords = []string{"自取", "取餐", "pickup", "pick up", "pick-up"}

// ExtractDeliveryInfo scans an order note for delivery-fee and tip
// amounts and a human time-of-day. It returns nil when there is no
// shipping address and the note carries no delivery/pickup hint at all.
// The Address field is left for the caller to fill in.
func ExtractDeliveryInfo(note string, hasShippingAddress bool) *domain.DeliveryInfo {
	lower := strings.ToLower(note)
	hasPickupKw := containsAny(lower, pickupKeywords)
	hasDeliveryKw := containsAny(lower, deliveryKeywords)

	if !hasShippingAddress && !hasPickupKw && !hasDeliveryKw {
		return nil
	}

	var method string
	switch {
	case hasShippingAddress:
		method = domain.OrderMethodDelivery
	case hasPickupKw:
		method = domain.OrderMethodPickup
	case hasDeliveryKw:
		method = domain.OrderMethodDelivery
	default:
		method = domain.OrderMethodPickup
	}
	isDelivery := method == domain.OrderMethodDelivery

	fee := extractAmount(feeRe, note)
	if fee == nil && isDelivery {
		// A delivery order always has a fee even when the note does not
		// spell out the amount.
		zero := "0.00"
		fee = &zero
	}

	return &domain.DeliveryInfo{
		Method:     method,
		Time:       extractTime(note),
		Fee:        fee,
		Tip:        extractAmount(tipRe, note),
		IsDelivery: isDelivery,
	}
}

// extractAmount returns the first labeled amount matched by re, with
// currency symbols and whitespace stripped, or nil.
func extractAmount(re *regexp.Regexp, note string) *string {
	m := re.FindStringSubmatch(note)
	if len(m) < 3 {
		return nil
	}
	amount := currencyRe.ReplaceAllString(m[2], "")
	if amount == "" {
		return nil
	}
	return &amount
}

// extractTime returns the first clock or spoken time found in the note.
func extractTime(note string) *string {
	if m := clockRe.FindString(note); m != "" {
		return &m
	}
	if m := spokenTimeRe.FindString(note); m != "" {
		return &m
	}
	return nil
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
