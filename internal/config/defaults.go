package config

const (
	DefaultHTTPPort     = "8080"
	DefaultSymbolsBSE   = "RELIANCE,TCS,HDFCBANK,INFY,ICICIBANK,SBIN,ITC,LT"
	DefaultNSEPortalURL = "https://www.nseindia.com/market-data/live-equity-market"
)
