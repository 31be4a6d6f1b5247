package metrics

// Surprise is the delta between an actual result and a reference value.
// Percent is already scaled by 100 (5.53 == +5.53%) and is nil when the
// reference is zero, never NaN or Inf.
type Surprise struct {
	Absolute float64  `json:"absolute"`
	Percent  *float64 `json:"percent"`
}

// ComputeSurprise compares an actual reported result against its consensus
// estimate. If either operand is absent the whole result is nil; there is no
// partial population. A zero estimate still yields the absolute delta, with a nil
// percent. Negative operands are valid; the sign of the percent follows the
// arithmetic.
func ComputeSurprise(actual, estimate *float64) *Surprise {
	if actual == nil || estimate == nil {
		return nil
	}

	s := &Surprise{Absolute: *actual - *estimate}
	if *estimate != 0 {
		pct := s.Absolute / *estimate * 100
		s.Percent = &pct
	}
	return s
}

// GuidanceMidpoint is (low+high)/2, or nil when either bound is absent.
// Point-form guidance has no midpoint; callers branch on which form is
// populated and pass the point value straight to ComputeVsGuidance.
func GuidanceMidpoint(low, high *float64) *float64 {
	if low == nil || high == nil {
		return nil
	}
	mid := (*low + *high) / 2
	return &mid
}

// ComputeVsGuidance compares an actual result against a guidance reference
// (range midpoint or point value) with the same null-safe shape as
// ComputeSurprise.
func ComputeVsGuidance(actual, reference *float64) *Surprise {
	return ComputeSurprise(actual, reference)
}
