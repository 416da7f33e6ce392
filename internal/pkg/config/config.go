package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   gateway credentials, etc.), security settings
// - default: Values common across all environments (timeouts, policies, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Gateway  GatewayConfig
	Pricing  PricingConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"UTC"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,Idempotency-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone   string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret          string        `envconfig:"JWT_SECRET" required:"true"`
	AccessDuration  time.Duration `envconfig:"JWT_ACCESS_DURATION" default:"15m"`
	RefreshDuration time.Duration `envconfig:"JWT_REFRESH_DURATION" default:"168h"`
}

type CookieConfig struct {
	Domain   string `envconfig:"COOKIE_DOMAIN" default:""`
	Secure   bool   `envconfig:"COOKIE_SECURE" default:"false"`
	SameSite string `envconfig:"COOKIE_SAME_SITE" default:"lax"`
}

// GatewayConfig holds credentials for the external payment gateway.
// WebhookSecret signs confirmation callbacks (HMAC-SHA256).
type GatewayConfig struct {
	BaseURL       string        `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	KeyID         string        `envconfig:"GATEWAY_KEY_ID" required:"true"`
	KeySecret     string        `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
	WebhookSecret string        `envconfig:"GATEWAY_WEBHOOK_SECRET" required:"true"`
	Currency      string        `envconfig:"GATEWAY_CURRENCY" default:"INR"`
	Timeout       time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
}

// PricingConfig feeds the immutable rate snapshot handed to every pricing
// call. Gold rates are per gram, keyed by karat.
type PricingConfig struct {
	GoldRates            map[string]int64 `envconfig:"PRICING_GOLD_RATES" default:"14:4100,18:5300,22:6400,24:7000"`
	DiamondTierCarat     float64          `envconfig:"PRICING_DIAMOND_TIER_CARAT" default:"0.5"`
	DiamondRateBelowTier int64            `envconfig:"PRICING_DIAMOND_RATE_BELOW" default:"45000"`
	DiamondRateAboveTier int64            `envconfig:"PRICING_DIAMOND_RATE_ABOVE" default:"72000"`
	GemstoneRatePerCarat int64            `envconfig:"PRICING_GEMSTONE_RATE" default:"12000"`
	MakingChargePerGram  int64            `envconfig:"PRICING_MAKING_CHARGE_PER_GRAM" default:"550"`
	CertificationFee     int64            `envconfig:"PRICING_CERTIFICATION_FEE" default:"1200"`
	ChainAddonPrice      int64            `envconfig:"PRICING_CHAIN_ADDON_PRICE" default:"3500"`
	TaxPercent           float64          `envconfig:"PRICING_TAX_PERCENT" default:"3"`
}

type CheckoutConfig struct {
	ShippingCharge        int64         `envconfig:"CHECKOUT_SHIPPING_CHARGE" default:"250"`
	FreeShippingThreshold int64         `envconfig:"CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"50000"`
	CartTTL               time.Duration `envconfig:"CHECKOUT_CART_TTL" default:"720h"`
	DeliveryETA           time.Duration `envconfig:"CHECKOUT_DELIVERY_ETA" default:"168h"`
	// strict: a COD collection amount mismatch blocks capture.
	// tolerant: capture proceeds and the mismatch is logged for manual
	// reconciliation.
	CODAmountPolicy string `envconfig:"CHECKOUT_COD_AMOUNT_POLICY" default:"tolerant"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c CheckoutConfig) StrictCODAmount() bool {
	return c.CODAmountPolicy == "strict"
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "UTC",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:          "test-secret",
			AccessDuration:  15 * time.Minute,
			RefreshDuration: 168 * time.Hour,
		},
		Gateway: GatewayConfig{
			BaseURL:       "http://localhost:18089",
			KeyID:         "rzp_test_key",
			KeySecret:     "rzp_test_secret",
			WebhookSecret: "whsec_test",
			Currency:      "INR",
			Timeout:       2 * time.Second,
		},
		Pricing: PricingConfig{
			GoldRates:            map[string]int64{"14": 4100, "18": 5300, "22": 6400, "24": 7000},
			DiamondTierCarat:     0.5,
			DiamondRateBelowTier: 45000,
			DiamondRateAboveTier: 72000,
			GemstoneRatePerCarat: 12000,
			MakingChargePerGram:  550,
			CertificationFee:     1200,
			ChainAddonPrice:      3500,
			TaxPercent:           3,
		},
		Checkout: CheckoutConfig{
			ShippingCharge:        250,
			FreeShippingThreshold: 50000,
			CartTTL:               720 * time.Hour,
			DeliveryETA:           168 * time.Hour,
			CODAmountPolicy:       "tolerant",
		},
	}
}
