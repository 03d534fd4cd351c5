package imagegen

const (
	StatusGenerated = "generated"
	StatusFailed    = "failed"
)

const (
	ReasonConfigMissing  = "config_missing"
	ReasonRequestError   = "request_error"
	ReasonTransportError = "transport_error"
	ReasonBadStatus      = "bad_status"
	ReasonBadJSON        = "bad_json"
	ReasonBadShape       = "bad_shape"
	ReasonDownloadError  = "download_error"
	ReasonWriteError     = "write_error"
)

// Outcome is the result of one generation attempt. Failures are carried
// here and never returned as errors.
type Outcome struct {
	Index  int    `json:"index"`
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason,omitempty"`
	Err    error  `json:"-"`
}

func (o Outcome) OK() bool {
	return o.Status == StatusGenerated
}

func (o Outcome) ErrorText() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
