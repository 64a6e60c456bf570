package insider

import "fmt"

// NA is the placeholder served wherever a value could not be determined.
const NA = "N/A"

// TradeRecord is one disclosed insider transaction as published on the
// source page. All fields are strings; raw cells are kept verbatim and the
// derived fields degrade to NA rather than erroring.
type TradeRecord struct {
	Symbol        string `json:"symbol"`
	Company       string `json:"company"`
	InsiderName   string `json:"insider_name"`
	TradeType     string `json:"trade_type"`
	ShareAndPrice string `json:"share_and_price"`
	Value         string `json:"value"`
	DateAndTime   string `json:"date_and_time"`
	AvgPrice      string `json:"avg_price"`
	RealTimePrice string `json:"real_time_price"`
}

// FetchError reports that the source page could not be retrieved.
// Status is zero when the request failed before a response arrived.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
