package pipeline

// Source columns of the transaction file.
const (
	ColUserID         = "UserId"
	ColTransactionID  = "TransactionId"
	ColItemCode       = "ItemCode"
	ColCountry        = "Country"
	ColCostPerItem    = "CostPerItem"
	ColSellingPrice   = "SellingPricePerItem"
	ColQuantity       = "NumberOfItemsPurchased"
	ColClientKeywords = "ClientKeywords"
	ColYear           = "Year"
	ColMonth          = "Month"
	ColDay            = "Day"
	ColTime           = "Time"
	ColDescription    = "ItemDescription"
)

// Derived columns.
const (
	ColTransactionTotal = "TransactionTotal"
	ColCostTotal        = "CostPerTransaction"
	ColProfit           = "ProfitPerTransaction"
	ColMargin           = "MarginPerTransaction"
	ColClientAge        = "ClientAge"
	ColClientType       = "ClientType"
	ColClientLevel      = "ClientLevel"
	ColDate             = "Date"
	ColHour             = "Hour"
)

// The source data carries 2028 for rows that belong to 2020. Only this exact
// value is rewritten; other years are left alone.
const (
	InvalidYear   = "2028"
	CorrectedYear = "2020"
)

// MarginPlaces is the number of decimal places margins are rounded to.
const MarginPlaces = 2

// Default locations, relative to the working directory.
const (
	DefaultTransactionsPath = "Data/transaction2.csv"
	DefaultSeasonsPath      = "Data/value_inc_seasons.csv"
	DefaultOutputPath       = "Data/ValueInc_cleaned.csv"
)

// Coercion classes applied by NormalizeTypes.
var (
	categoryColumns = []string{
		ColUserID, ColTransactionID, ColItemCode, ColCountry,
		ColClientAge, ColClientType, ColClientLevel,
	}
	floatColumns = []string{
		ColCostPerItem, ColSellingPrice, ColProfit,
		ColCostTotal, ColTransactionTotal, ColMargin,
	}
	stringColumns = []string{
		ColYear, ColMonth, ColDay, ColTime, ColDescription,
	}
)

// prunedColumns are dropped before export; Date and the season label replace them.
var prunedColumns = []string{ColClientKeywords, ColDay, ColYear, ColMonth}
