package types

// EnhanceRequest is the normalized form of an accepted enhancement request.
// Only the validator constructs it; every field has already been checked.
type EnhanceRequest struct {
	Prompt      string `json:"prompt"`
	Image       *Image `json:"-"`
	Mode        Mode   `json:"mode"`
	TargetModel string `json:"targetModel"`
}

// Image is an inline image decoded once at the HTTP boundary.
type Image struct {
	// Data holds the raw decoded bytes.
	Data []byte
	// DeclaredType is the type named by the client's data reference. It is
	// informational only; providers receive MIMEType.
	DeclaredType string
	// MIMEType is sniffed from the leading bytes of Data.
	MIMEType string
}

// WireRequest is the JSON body accepted on POST /api/enhance and sent by the
// client wrapper.
type WireRequest struct {
	Prompt      string  `json:"prompt"`
	Image       *string `json:"image,omitempty"`
	Mode        string  `json:"mode"`
	TargetModel string  `json:"targetModel"`
}
