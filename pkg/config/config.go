package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración del servicio (Viper: env primero, luego .env / config.env).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Ticket TicketConfig
	Order  OrderConfig
	Notify NotifyConfig
}

// AppConfig configuración general.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
	// StoreDriver "postgres" o "memory" (demo local sin base de datos).
	StoreDriver string
	// ShopName encabeza los comprobantes PDF.
	ShopName string
	// SeedCatalog CSV que se carga al arrancar con el store en memoria.
	SeedCatalog string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int32
	// Migrate aplica el esquema embebido al arrancar.
	Migrate bool
}

// ConnectionString devuelve DATABASE_URL si está definido, si no el DSN construido.
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN connection string con URL encoding para caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TicketConfig ventana de reserva y barrido de tickets vencidos.
type TicketConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration // 0 = barrido deshabilitado
}

// OrderConfig valores de negocio de órdenes.
type OrderConfig struct {
	DiagnosisFee decimal.Decimal
}

// NotifyConfig sumideros de notificaciones. Sin brokers no se publica a Kafka.
type NotifyConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	// WSBuffer cola de mensajes pendientes del hub de websocket.
	WSBuffer int
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	fee, err := decimal.NewFromString(getString(v, "DIAGNOSIS_FEE", "150"))
	if err != nil {
		return nil, fmt.Errorf("DIAGNOSIS_FEE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:         getString(v, "APP_ENV", "development"),
			Name:        getString(v, "APP_NAME", "taller-api"),
			LogLevel:    getString(v, "LOG_LEVEL", "info"),
			StoreDriver: strings.ToLower(getString(v, "STORE_DRIVER", "postgres")),
			ShopName:    getString(v, "SHOP_NAME", "Taller de Reparación"),
			SeedCatalog: getString(v, "SEED_CATALOG", ""),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "taller"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    int32(getInt(v, "DB_MAX_CONNS", 25)),
			Migrate:     getBool(v, "DB_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "taller-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Ticket: TicketConfig{
			TTL:           time.Duration(getInt(v, "TICKET_TTL_HOURS", 24)) * time.Hour,
			SweepInterval: time.Duration(getInt(v, "TICKET_SWEEP_INTERVAL_MINUTES", 0)) * time.Minute,
		},
		Order: OrderConfig{DiagnosisFee: fee},
		Notify: NotifyConfig{
			KafkaBrokers: splitList(getString(v, "NOTIFY_KAFKA_BROKERS", "")),
			KafkaTopic:   getString(v, "NOTIFY_KAFKA_TOPIC", "taller.events"),
			WSBuffer:     getInt(v, "NOTIFY_WS_BUFFER", 64),
		},
	}

	switch cfg.App.StoreDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("STORE_DRIVER desconocido: %q", cfg.App.StoreDriver)
	}
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET es obligatorio")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
