package privy

type SignTransactionRequest struct {
	Method string                `json:"method"`
	Params SignTransactionParams `json:"params"`
}

type SignTransactionParams struct {
	Transaction string `json:"transaction"`
	Encoding    string `json:"encoding"`
}

type SignTransactionResponse struct {
	Method string              `json:"method"`
	Data   SignTransactionData `json:"data"`
}

type SignTransactionData struct {
	SignedTransaction string `json:"signed_transaction"`
	Encoding          string `json:"encoding"`
}

type WalletResponse struct {
	Id                string   `json:"id"`
	Address           string   `json:"address"`
	ChainType         string   `json:"chain_type"`
	WalletClientType  string   `json:"wallet_client_type,omitempty"`
	ConnectorType     string   `json:"connector_type,omitempty"`
	Imported          bool     `json:"imported,omitempty"`
	Delegated         bool     `json:"delegated,omitempty"`
	HdPath            string   `json:"hd_path,omitempty"`
	PublicKey         string   `json:"public_key,omitempty"`
	OwnerId           string   `json:"owner_id,omitempty"`
	PolicyIds         []string `json:"policy_ids,omitempty"`
	AdditionalSigners []string `json:"additional_signers,omitempty"`
	ExportedAt        int64    `json:"exported_at,omitempty"`
	CreatedAt         int64    `json:"created_at,omitempty"`
}
