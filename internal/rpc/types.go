package rpc

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// MintState is the subset of a parsed mint account the alert pipeline needs.
type MintState struct {
	Supply            string
	Decimals          int
	MintAuthority     string
	FreezeAuthority   string
	MintAuthRevoked   bool
	FreezeAuthRevoked bool
}

// ParsedMintInfo mirrors the jsonParsed layout of an SPL mint account.
type ParsedMintInfo struct {
	Supply          string `json:"supply"`
	Decimals        int    `json:"decimals"`
	MintAuthority   string `json:"mintAuthority"`
	FreezeAuthority string `json:"freezeAuthority"`
}

// ParsedAccountData wraps the parsed section of getAccountInfo.
type ParsedAccountData struct {
	Type string         `json:"type"`
	Info ParsedMintInfo `json:"info"`
}

// AccountData holds the data field of an account
type AccountData struct {
	Parsed  ParsedAccountData `json:"parsed"`
	Program string            `json:"program"`
}

// AccountValue is one account entry in a getAccountInfo response
type AccountValue struct {
	Data  AccountData `json:"data"`
	Owner string      `json:"owner"`
}

// AccountInfoResult contains the getAccountInfo payload
type AccountInfoResult struct {
	Value *AccountValue `json:"value"`
}

// AccountInfoResponse is the response from getAccountInfo
type AccountInfoResponse struct {
	Result *AccountInfoResult `json:"result"`
	Error  *RPCError          `json:"error"`
}
