package config

import (
	"time"

	"macrodesk/pkg/config"
)

// Instrument describes one tradable pair the engine scores. Instruments are
// a slice, not a map, because classification order must be deterministic.
type Instrument struct {
	Label    string   `mapstructure:"label"`
	Base     string   `mapstructure:"base"`
	Quote    string   `mapstructure:"quote"`
	Keywords []string `mapstructure:"keywords"`
}

// MacroKeyword maps one macro-event term to the currency it affects.
type MacroKeyword struct {
	Keyword  string `mapstructure:"keyword"`
	Currency string `mapstructure:"currency"`
}

// Feed holds an RSS source name and URL.
type Feed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Analyzer holds the lexicon and tuning knobs of the bias engine.
type Analyzer struct {
	RefreshInterval      time.Duration      `mapstructure:"refresh_interval"`
	ItemsPerSource       int                `mapstructure:"items_per_source"`
	FetchTimeout         time.Duration      `mapstructure:"fetch_timeout"`
	MaxConcurrentFetches int                `mapstructure:"max_concurrent_fetches"`
	RecencyHalfLifeHours float64            `mapstructure:"recency_half_life_hours"`
	DefaultSourceWeight  float64            `mapstructure:"default_source_weight"`
	SourceWeights        map[string]float64 `mapstructure:"source_weights"`
	MacroInfluence       float64            `mapstructure:"macro_influence"`
	BullishThreshold     float64            `mapstructure:"bullish_threshold"`
	BearishThreshold     float64            `mapstructure:"bearish_threshold"`
	MinTopicConfidence   float64            `mapstructure:"min_topic_confidence"`
	SnapshotTTL          time.Duration      `mapstructure:"snapshot_ttl"`
	CalendarFeedURL      string             `mapstructure:"calendar_feed_url"`
	CalendarMaxEvents    int                `mapstructure:"calendar_max_events"`
	Feeds                []Feed             `mapstructure:"feeds"`
	Instruments          []Instrument       `mapstructure:"instruments"`
	MacroKeywords        []MacroKeyword     `mapstructure:"macro_keywords"`
	PositivePhrases      []string           `mapstructure:"positive_phrases"`
	NegativePhrases      []string           `mapstructure:"negative_phrases"`
}

// HuggingFace holds the configuration for the Hugging Face Inference API.
type HuggingFace struct {
	BaseURL             string        `mapstructure:"base_url"`
	APIKey              string        `mapstructure:"api_key"`
	SentimentModel      string        `mapstructure:"sentiment_model"`
	ZeroShotModel       string        `mapstructure:"zero_shot_model"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// Gemini holds the configuration for the Gemini summarizer.
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Telegram holds configuration for the bias summary notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App         config.App    `mapstructure:"app"`
	Logger      config.Logger `mapstructure:"logger"`
	Redis       config.Redis  `mapstructure:"redis"`
	API         config.API    `mapstructure:"api"`
	Analyzer    Analyzer      `mapstructure:"analyzer"`
	HuggingFace HuggingFace   `mapstructure:"huggingface"`
	Gemini      Gemini        `mapstructure:"gemini"`
	Telegram    Telegram      `mapstructure:"telegram"`
}

// Load loads the analyzer configuration from the given path and fills in
// defaults for anything the file leaves out.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration populated entirely from defaults, the
// same values Load falls back to for missing keys.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	a := &c.Analyzer

	if a.RefreshInterval <= 0 {
		a.RefreshInterval = 10 * time.Minute
	}
	if a.ItemsPerSource <= 0 {
		a.ItemsPerSource = 8
	}
	if a.FetchTimeout <= 0 {
		a.FetchTimeout = 30 * time.Second
	}
	if a.MaxConcurrentFetches <= 0 {
		a.MaxConcurrentFetches = 4
	}
	if a.RecencyHalfLifeHours <= 0 {
		a.RecencyHalfLifeHours = 72
	}
	if a.DefaultSourceWeight <= 0 {
		a.DefaultSourceWeight = 1.0
	}
	if a.SourceWeights == nil {
		a.SourceWeights = map[string]float64{
			"Reuters":             1.2,
			"Bloomberg Economics": 1.3,
			"Investing.com":       1.0,
			"CNBC":                1.0,
			"MarketWatch":         1.0,
			"Forex Factory":       0.9,
		}
	}
	if a.MacroInfluence <= 0 {
		a.MacroInfluence = 0.25
	}
	if a.BullishThreshold <= 0 {
		a.BullishThreshold = 0.62
	}
	if a.BearishThreshold <= 0 {
		a.BearishThreshold = 0.38
	}
	if a.MinTopicConfidence <= 0 {
		a.MinTopicConfidence = 0.3
	}
	if a.SnapshotTTL <= 0 {
		a.SnapshotTTL = 30 * time.Minute
	}
	if a.CalendarFeedURL == "" {
		a.CalendarFeedURL = "https://www.forexfactory.com/ffcal_week_this.xml"
	}
	if a.CalendarMaxEvents <= 0 {
		a.CalendarMaxEvents = 60
	}
	if len(a.Feeds) == 0 {
		a.Feeds = []Feed{
			{Name: "Investing.com", URL: "https://www.investing.com/rss/news_301.rss"},
			{Name: "Bloomberg Economics", URL: "https://feeds.bloomberg.com/economics/news.rss"},
			{Name: "Forex Factory", URL: "https://www.forexfactory.com/ffcal_week_this.xml"},
			{Name: "Reuters", URL: "http://feeds.reuters.com/reuters/businessNews"},
			{Name: "CNBC", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
			{Name: "MarketWatch", URL: "https://feeds.marketwatch.com/marketwatch/topstories/"},
		}
	}
	if len(a.Instruments) == 0 {
		a.Instruments = []Instrument{
			{
				Label: "EUR/USD", Base: "EUR", Quote: "USD",
				Keywords: []string{"eurusd", "euro", "ecb", "europe", "eurozone", "european central bank", "eurostat", "bundesbank", "eur"},
			},
			{
				Label: "GBP/USD", Base: "GBP", Quote: "USD",
				Keywords: []string{"gbpusd", "pound", "sterling", "bank of england", "boe", "uk", "united kingdom", "britain", "gbp"},
			},
			{
				Label: "USD/JPY", Base: "USD", Quote: "JPY",
				Keywords: []string{"usdjpy", "yen", "boj", "bank of japan", "tokyo", "japan", "jpy"},
			},
			{
				Label: "XAU/USD", Base: "XAU", Quote: "USD",
				Keywords: []string{"gold", "xau", "spot gold", "precious metal", "gold price", "xauusd"},
			},
		}
	}
	if len(a.MacroKeywords) == 0 {
		a.MacroKeywords = []MacroKeyword{
			{Keyword: "ecb", Currency: "EUR"},
			{Keyword: "rate decision", Currency: "EUR"},
			{Keyword: "fed", Currency: "USD"},
			{Keyword: "fomc", Currency: "USD"},
			{Keyword: "nonfarm payrolls", Currency: "USD"},
			{Keyword: "nfp", Currency: "USD"},
			{Keyword: "cpi", Currency: "USD"},
			{Keyword: "boe", Currency: "GBP"},
			{Keyword: "bank of england", Currency: "GBP"},
			{Keyword: "boj", Currency: "JPY"},
			{Keyword: "bank of japan", Currency: "JPY"},
			{Keyword: "gdp", Currency: "USD"},
			{Keyword: "unemployment", Currency: "USD"},
		}
	}
	if len(a.PositivePhrases) == 0 {
		a.PositivePhrases = []string{
			"hikes", "raises rates", "beats expectations", "better than expected",
			"strong growth", "surges", "record high", "hawkish", "tightening",
		}
	}
	if len(a.NegativePhrases) == 0 {
		a.NegativePhrases = []string{
			"cuts", "cut rates", "misses expectations", "worse than expected",
			"recession", "slowdown", "plunges", "record low", "dovish", "easing",
		}
	}

	if c.HuggingFace.BaseURL == "" {
		c.HuggingFace.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if c.HuggingFace.SentimentModel == "" {
		c.HuggingFace.SentimentModel = "cardiffnlp/twitter-roberta-base-sentiment"
	}
	if c.HuggingFace.ZeroShotModel == "" {
		c.HuggingFace.ZeroShotModel = "facebook/bart-large-mnli"
	}
	if c.HuggingFace.MaxRequestPerMinute <= 0 {
		c.HuggingFace.MaxRequestPerMinute = 60
	}
	if c.HuggingFace.Timeout <= 0 {
		c.HuggingFace.Timeout = 30 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
}

// InstrumentLabels returns the configured instrument labels in declaration
// order.
func (a Analyzer) InstrumentLabels() []string {
	labels := make([]string, 0, len(a.Instruments))
	for _, inst := range a.Instruments {
		labels = append(labels, inst.Label)
	}
	return labels
}

// SourceWeight resolves the trust weight for a source, falling back to the
// default weight for unlisted sources. Item weights must stay strictly
// positive, so a zero or negative configured weight also falls back.
func (a Analyzer) SourceWeight(source string) float64 {
	if w, ok := a.SourceWeights[source]; ok && w > 0 {
		return w
	}
	return a.DefaultSourceWeight
}
