package synthese

type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeRateLimited      Outcome = "rate_limited"
	OutcomeCircuitOpen      Outcome = "circuit_open"
	OutcomeTimeout          Outcome = "timeout"
	OutcomeTransportError   Outcome = "transport_error"
	OutcomeBadStatus        Outcome = "bad_status"
	OutcomeEmptyBody        Outcome = "empty_body"
	OutcomeStoreUnavailable Outcome = "store_unavailable"
	OutcomeCanceled         Outcome = "canceled"
)

// Response is the result of one feed call. Every outcome other than OutcomeSuccess means
// no realtime data and the caller falls back to the base schedule.
type Response struct {
	Outcome    Outcome `json:"outcome"`
	StatusCode int     `json:"status_code,omitempty"`
	Body       []byte  `json:"body,omitempty"`
}

func (r Response) HasData() bool {
	return r.Outcome == OutcomeSuccess
}

// Cacheable reports whether the response may be memoized. Outcomes caused by our own
// admission control, by the shared store or by the caller giving up say nothing about the
// feed and are not kept.
func (r Response) Cacheable() bool {
	switch r.Outcome {
	case OutcomeRateLimited, OutcomeStoreUnavailable, OutcomeCanceled:
		return false
	default:
		return true
	}
}
