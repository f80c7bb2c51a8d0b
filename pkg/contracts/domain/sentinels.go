package domain

// Sentinels are the exchange codes that classify large-trader rows.
type Sentinels struct {
	AllTraders      string
	SpecificTraders string
	AllMonths       string
	WeeklyContracts string
	CallCodes       []string
	PutCodes        []string
}

// DefaultSentinels returns the codes TAIFEX uses in its large-trader downloads.
func DefaultSentinels() Sentinels {
	return Sentinels{
		AllTraders:      "0",
		SpecificTraders: "1",
		AllMonths:       "999999",
		WeeklyContracts: "666666",
		CallCodes:       []string{"買權", "C", "CALL"},
		PutCodes:        []string{"賣權", "P", "PUT"},
	}
}
