package utils

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ResponseData is the envelope shared by error responses and plain acknowledgements.
type ResponseData struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded hands err to the recovery middleware, which renders it.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
