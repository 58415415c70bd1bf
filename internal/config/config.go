package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	// API
	Port        string
	Storage     string
	DatabaseURL string
	// Fetchers
	Provider      string
	SymbolsBSE    []string
	SymbolsNSE    []string
	NSEPortalURL  string
	NSEIndex      string
	NSEAPIMarker  string
	ChromePath    string
	ChromeHeadful bool
	ChartEnabled  bool
	// Scheduler
	SyncInterval time.Duration
	FetchTimeout time.Duration
	// Market hours
	TradingDays     string
	TradingOpen     string
	TradingClose    string
	MarketUTCOffset string
	// Alerts
	TelegramToken   string
	TelegramChatID  string
	TelegramAPIBase string
	AlertCooldown   time.Duration
	CooldownBackend string
	// Redis (cooldown)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Kafka (market events)
	KafkaBrokers     []string
	KafkaMarketTopic string
	// gRPC health
	GRPCAddr string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func boolDef(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func msDef(key string, def int) time.Duration {
	return time.Duration(atoiDef(getEnv(key, strconv.Itoa(def)), def)) * time.Millisecond
}

// splitList turns "a, b,,c" into [A B C]; empty input yields nil.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:              getEnv("ENV", "local"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Port:             getEnv("PORT", DefaultHTTPPort),
		Storage:          getEnv("STORAGE", "pg"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		Provider:         getEnv("PROVIDER", "live"),
		SymbolsBSE:       splitList(getEnv("TRACKED_SYMBOLS_BSE", DefaultSymbolsBSE)),
		SymbolsNSE:       splitList(getEnv("TRACKED_SYMBOLS_NSE", "")),
		NSEPortalURL:     getEnv("NSE_PORTAL_URL", DefaultNSEPortalURL),
		NSEIndex:         getEnv("NSE_INDEX", "NIFTY 50"),
		NSEAPIMarker:     getEnv("NSE_API_MARKER", "/api/equity-stockIndices"),
		ChromePath:       getEnv("CHROME_PATH", ""),
		ChromeHeadful:    !boolDef(getEnv("CHROME_HEADLESS", "true"), true),
		ChartEnabled:     boolDef(getEnv("CHART_ENABLED", "false"), false),
		SyncInterval:     msDef("SYNC_INTERVAL_MS", 60000),
		FetchTimeout:     msDef("FETCH_TIMEOUT_MS", 45000),
		TradingDays:      getEnv("TRADING_DAYS", "Mon,Tue,Wed,Thu,Fri"),
		TradingOpen:      getEnv("TRADING_OPEN", "09:15"),
		TradingClose:     getEnv("TRADING_CLOSE", "15:30"),
		MarketUTCOffset:  getEnv("MARKET_UTC_OFFSET", "+05:30"),
		TelegramToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIBase:  getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		AlertCooldown:    msDef("ALERT_COOLDOWN_MS", 900000),
		CooldownBackend:  getEnv("COOLDOWN_BACKEND", "memory"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          atoiDef(getEnv("REDIS_DB", "0"), 0),
		KafkaBrokers:     strings.FieldsFunc(getEnv("KAFKA_BROKERS", ""), func(r rune) bool { return r == ',' || r == ' ' }),
		KafkaMarketTopic: getEnv("KAFKA_MARKET_TOPIC", "market.session"),
		GRPCAddr:         getEnv("GRPC_ADDR", ":9090"),
	}
}
