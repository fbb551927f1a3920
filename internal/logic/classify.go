package logic

// attentionMargin is the forecast headroom below the threshold, in degrees,
// inside which the monitor asks for attention.
const attentionMargin = 5.0

// Classify derives the alert class from the current temperature, the
// forecast and the threshold. The comparison operators are load-bearing:
// current == threshold is not Critical, and a margin of exactly 0 or exactly
// 5 is Attention.
func Classify(current, predicted float32, threshold int) Class {
	u := float32(threshold)
	margin := u - predicted

	switch {
	case current > u:
		return ClassCritical
	case margin > attentionMargin:
		return ClassNormal
	case margin >= 0 && margin <= attentionMargin:
		return ClassAttention
	default:
		return ClassAlert
	}
}
