package types

// SuccessEnvelope wraps every 2xx JSON body, so clients always unwrap the
// same top-level "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public half of a coded error. Details is only populated
// for codes whose metadata allows exposing structure.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every non-2xx JSON body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
