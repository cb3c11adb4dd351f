package dto

// UpdateAPIKeyRequest carries a candidate provider credential.
type UpdateAPIKeyRequest struct {
	APIKey string `json:"api_key"`
}

// ConnectionStatus is the public view of the connection state. APIKey is masked.
type ConnectionStatus struct {
	Connected bool   `json:"connected"`
	Loading   bool   `json:"loading"`
	Phase     string `json:"phase"`
	Error     string `json:"error,omitempty"`
	APIKey    string `json:"api_key,omitempty"`
}
