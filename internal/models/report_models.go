package models

// AccountReport снимок состояния счета для отчетов
type AccountReport struct {
	Ref            AccountRef `json:"ref"`
	Currency       Currency   `json:"currency"`
	Balance        int64      `json:"balance"`
	OverdraftLimit int64      `json:"overdraft_limit"`
}

// BankReport статистика банка на момент запроса; значения читаются без блокировок
// и могут быть слегка устаревшими.
type BankReport struct {
	BankID                 int                `json:"bank_id"`
	Currency               Currency           `json:"currency"`
	Operating              bool               `json:"operating"`
	Reserves               map[Currency]int64 `json:"reserves"`
	NationalTransfers      int64              `json:"national_transfers"`
	InternationalTransfers int64              `json:"international_transfers"`
	AccountCount           int                `json:"account_count"`
	Accounts               []AccountReport    `json:"accounts"`
	TotalBalance           int64              `json:"total_balance"`
	Profit                 int64              `json:"profit"`
	Pending                int                `json:"pending"`
}
