package models

// BudgetImpact - отклонение выбранного предложения от бюджета лота. Не хранится.
type BudgetImpact struct {
	LotID               string  `json:"lotId"`
	BidID               string  `json:"bidId"`
	LotBudget           Money   `json:"lotBudget"`
	BidAmount           Money   `json:"bidAmount"`
	Deviation           Money   `json:"deviation"`
	DeviationPercentage float64 `json:"deviationPercentage"`
}

// LineDiff - сравнение одной строки сметы двух предложений.
type LineDiff struct {
	Designation    string  `json:"designation"`
	PriceA         Money   `json:"priceA"`
	PriceB         Money   `json:"priceB"`
	PercentageDiff float64 `json:"percentageDiff"`
	InA            bool    `json:"inA"`
	InB            bool    `json:"inB"`
}

// Comparison - результат сравнения двух предложений.
type Comparison struct {
	BidA  string     `json:"bidA"`
	BidB  string     `json:"bidB"`
	Lines []LineDiff `json:"lines"`
}
