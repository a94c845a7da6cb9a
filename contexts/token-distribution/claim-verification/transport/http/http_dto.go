package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ConfirmTxRequest struct {
	WalletID string `json:"walletId"`
	TxID     string `json:"txId"`
}

type ConfirmRegistrationResponse struct {
	Success    bool   `json:"success"`
	WalletID   string `json:"wallet_id"`
	TxID       string `json:"tx_id"`
	Registered bool   `json:"registered"`
}

type ConfirmTradeInResponse struct {
	Success     bool   `json:"success"`
	WalletID    string `json:"wallet_id"`
	TxID        string `json:"tx_id"`
	QxmrAmount  int64  `json:"qxmr_amount"`
	QdogeAmount int64  `json:"qdoge_amount"`
	Tick        int64  `json:"tick"`
}

type TxLogRequest struct {
	WalletID string `json:"walletId"`
	TxID     string `json:"txId"`
	From     string `json:"from"`
	To       string `json:"to"`
	TxType   string `json:"txType"`
	Amount   int64  `json:"amount"`
}

type TxLogResponse struct {
	Success bool   `json:"success"`
	TxID    string `json:"tx_id"`
}
