package transfer

// Admission is the rate limiter's answer. A rejection is a normal result,
// not an error; callers surface it as a 429 with Remaining included.
type Admission struct {
	Admitted  bool `json:"admitted"`
	Remaining int  `json:"remaining"`
}
