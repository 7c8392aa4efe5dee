package sdk

const (
	TextCodeTransport       = "VISACHECK_TRANSPORT"
	TextCodeInvalidResponse = "VISACHECK_INVALID_RESPONSE"
)
