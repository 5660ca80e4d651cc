package dto

// SettleRequest is the sale record posted by the checkout system once a
// payment completes.
type SettleRequest struct {
	TransactionID string  `json:"transaction_id" binding:"required,uuid"`
	SellerID      string  `json:"seller_id" binding:"required,uuid"`
	BuyerEmail    string  `json:"buyer_email" binding:"required,email"`
	ProductID     *string `json:"product_id,omitempty" binding:"omitempty,uuid"`
	Amount        int64   `json:"amount" binding:"required,gt=0"`
	Currency      string  `json:"currency" binding:"required,supported_currency"`
	Status        string  `json:"status" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required,max=50"`
}

// SettleResponse is the response body for a settlement call.
type SettleResponse struct {
	AlreadySettled bool                 `json:"already_settled"`
	Entry          *LedgerEntryResponse `json:"entry,omitempty"`
}

// SubmitWithdrawalRequest is the request body for a withdrawal submission.
type SubmitWithdrawalRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency" binding:"required,supported_currency"`
}

// DecisionRequest is the operator's verdict on a pending withdrawal.
// A rejection must carry a reason; an approval must not.
type DecisionRequest struct {
	Outcome         string  `json:"outcome" binding:"required,oneof=approved rejected"`
	RejectionReason *string `json:"rejection_reason,omitempty" binding:"omitempty,min=1,max=500"`
}

// WithdrawalResponse is the response body for withdrawal results.
type WithdrawalResponse struct {
	ID              string  `json:"id"`
	SellerID        string  `json:"seller_id"`
	Currency        string  `json:"currency"`
	RequestedAmount int64   `json:"requested_amount"`
	FeeAmount       int64   `json:"fee_amount"`
	PayoutAmount    int64   `json:"payout_amount"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// WithdrawalListResponse wraps a paginated withdrawal list.
type WithdrawalListResponse struct {
	Items      []WithdrawalResponse `json:"items"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
}

// WalletResponse is the balance view for one currency wallet.
type WalletResponse struct {
	Currency  string `json:"currency"`
	Balance   int64  `json:"balance"`
	Held      int64  `json:"held"`
	Available int64  `json:"available"`
}

// LedgerEntryResponse is one row of the money-movement history.
type LedgerEntryResponse struct {
	ID        string `json:"id"`
	Currency  string `json:"currency"`
	Amount    int64  `json:"amount"`
	Direction string `json:"direction"`
	Source    string `json:"source"`
	SourceID  string `json:"source_id"`
	CreatedAt string `json:"created_at"`
}

// LedgerListResponse wraps a paginated ledger page.
type LedgerListResponse struct {
	Items      []LedgerEntryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// ReconcileResponse compares the wallet row against the ledger sums.
type ReconcileResponse struct {
	SellerID      string `json:"seller_id"`
	Currency      string `json:"currency"`
	WalletBalance int64  `json:"wallet_balance"`
	LedgerBalance int64  `json:"ledger_balance"`
	Credits       int64  `json:"credits"`
	Debits        int64  `json:"debits"`
	Drift         int64  `json:"drift"`
}

// PolicyResponse describes the withdrawal terms that apply to the caller.
type PolicyResponse struct {
	FeePercent          int64  `json:"fee_percent"`
	MinimumWithdrawal   int64  `json:"minimum_withdrawal"`
	ProcessingTimeLabel string `json:"processing_time_label"`
	MaxProducts         int    `json:"max_products"`
}
