package turnkey

const (
	activityTypeSignRawPayload = "ACTIVITY_TYPE_SIGN_RAW_PAYLOAD_V2"
	payloadEncodingHex         = "PAYLOAD_ENCODING_HEXADECIMAL"
	hashFunctionNotApplicable  = "HASH_FUNCTION_NOT_APPLICABLE"
)

type SignRequest struct {
	Type           string         `json:"type"`
	TimestampMs    string         `json:"timestampMs"`
	OrganizationId string         `json:"organizationId"`
	Parameters     SignParameters `json:"parameters"`
}

type SignParameters struct {
	SignWith     string `json:"signWith"`
	Payload      string `json:"payload"`
	Encoding     string `json:"encoding"`
	HashFunction string `json:"hashFunction"`
}

type ActivityResponse struct {
	Activity Activity `json:"activity"`
}

type Activity struct {
	Id     string          `json:"id,omitempty"`
	Status string          `json:"status,omitempty"`
	Result *ActivityResult `json:"result,omitempty"`
}

type ActivityResult struct {
	SignRawPayloadResult *SignResult `json:"signRawPayloadResult,omitempty"`
}

// SignResult holds the hex encoded signature components.
type SignResult struct {
	R string `json:"r"`
	S string `json:"s"`
	V string `json:"v,omitempty"`
}

type WhoAmIRequest struct {
	OrganizationId string `json:"organizationId"`
}
