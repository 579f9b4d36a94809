package domain

import (
	"strings"

	"github.com/YES-Tech-Computer-Service-Ltd/WooAutoPrinter-sub017/pkg/logger"
)

// Order Statuses (canonical wire vocabulary)
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusOnHold     = "on-hold"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
	OrderStatusFailed     = "failed"

	// OrderStatusAny is the sentinel for "could not resolve the input
	// to a canonical status". Callers must not send it as a server-side
	// filter value; they filter locally instead.
	OrderStatusAny = "any"
)

// OrderStatuses lists the canonical set, for API export and iteration.
var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusOnHold,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefunded,
	OrderStatusFailed,
}

// statusLabels is the only hand-maintained direction of the vocabulary:
// canonical -> localized display label. The reverse table is derived in
// init so the two can never drift.
var statusLabels = map[string]string{
	OrderStatusPending:    "待付款",
	OrderStatusProcessing: "处理中",
	OrderStatusOnHold:     "暂挂",
	OrderStatusCompleted:  "已完成",
	OrderStatusCancelled:  "已取消",
	OrderStatusRefunded:   "已退款",
	OrderStatusFailed:     "失败",
}

var labelToStatus map[string]string

func init() {
	labelToStatus = make(map[string]string, len(statusLabels))
	for canonical, label := range statusLabels {
		labelToStatus[label] = canonical
	}
}

// IsCanonicalStatus reports whether s is one of the fixed wire values.
func IsCanonicalStatus(s string) bool {
	_, ok := statusLabels[s]
	return ok
}

// ToCanonicalStatus resolves an arbitrary status string to the
// canonical wire vocabulary. Empty input stays empty (the caller must
// omit the filter entirely). Unresolvable input yields OrderStatusAny.
func ToCanonicalStatus(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	if s == OrderStatusAny || IsCanonicalStatus(s) {
		return s
	}
	// The localized table is keyed by the exact label, so look up the
	// trimmed original rather than the case-folded form.
	if canonical, ok := labelToStatus[strings.TrimSpace(input)]; ok {
		return canonical
	}
	logger.Warn().Str("status", input).Msg("cannot resolve status to canonical vocabulary, falling back to 'any'")
	return OrderStatusAny
}

// LocalizeStatus returns the display label for a canonical status.
// Unknown values pass through unchanged.
func LocalizeStatus(canonical string) string {
	if label, ok := statusLabels[canonical]; ok {
		return label
	}
	return canonical
}

// StatusMatches reports whether an order's status satisfies a requested
// status under the three-way rule: direct equality, localized-view
// equality, or reverse equality. Per-status views must use this single
// predicate rather than a second independent filter.
func StatusMatches(orderStatus, requested string) bool {
	if orderStatus == requested {
		return true
	}
	if statusLabels[orderStatus] == requested {
		return true
	}
	if label, ok := statusLabels[requested]; ok && label == orderStatus {
		return true
	}
	// Either side may be a localized label.
	if labelToStatus[orderStatus] == requested || labelToStatus[requested] == orderStatus {
		return true
	}
	return false
}
