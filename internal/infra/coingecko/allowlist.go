package coingecko

// PopularAssets is the curated allow-list in canonical display order.
var PopularAssets = []string{
	"bitcoin",
	"ethereum",
	"tether",
	"binancecoin",
	"solana",
	"usd-coin",
	"cardano",
	"avalanche-2",
	"dogecoin",
	"chainlink",
	"matic-network",
	"internet-computer",
	"stellar",
	"monero",
	"aptos",
	"near",
	"hedera-hashgraph",
	"algorand",
	"tezos",
	"eos",
}

var popularIndex = func() map[string]int {
	m := make(map[string]int, len(PopularAssets))
	for i, id := range PopularAssets {
		m[id] = i
	}
	return m
}()

// IsPopular reports whether id is on the allow-list.
func IsPopular(id string) bool {
	_, ok := popularIndex[id]
	return ok
}
