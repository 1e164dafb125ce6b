// Package dto contains the wire types of the Alpha Vantage API.
package dto

// GlobalQuoteResponse is the body returned by function=GLOBAL_QUOTE.
// On throttling or bad input the API answers 200 with Note, Information or ErrorMessage instead.
type GlobalQuoteResponse struct {
	GlobalQuote  GlobalQuote `json:"Global Quote"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
	ErrorMessage string      `json:"Error Message"`
}

// GlobalQuote holds the quote fields. Alpha Vantage encodes every value as a string.
type GlobalQuote struct {
	Symbol           string `json:"01. symbol"`
	Open             string `json:"02. open"`
	High             string `json:"03. high"`
	Low              string `json:"04. low"`
	Price            string `json:"05. price"`
	Volume           string `json:"06. volume"`
	LatestTradingDay string `json:"07. latest trading day"`
	PreviousClose    string `json:"08. previous close"`
	Change           string `json:"09. change"`
	ChangePercent    string `json:"10. change percent"`
}
