package config

import (
	"banco/internal/types"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	StorageFile     = "file"
	StorageDatabase = "database"

	DatabaseDDB   = "ddb"
	DatabaseRedis = "redis"
	DatabaseMongo = "mongo"

	NotifierSNS  = "sns"
	NotifierSMTP = "smtp"
	NotifierLog  = "log"
	NotifierNone = "none"

	GestoresFile = "gestores.json"
	ClientesFile = "clientes.json"
)

// Config is read from the environment once at startup.
// Storage selects the active backend; only one of file or database can be active.
// Database names the database driver; it may be set while Storage is "file", in which case
// the database is still opened for bulk insertion and deletions.
type Config struct {
	Storage  string `env:"BANCO_STORAGE" envDefault:"file"`
	DataDir  string `env:"BANCO_DATA_DIR" envDefault:"./data"`
	Database string `env:"BANCO_DATABASE"`

	DDB   DDBConfig
	Redis RedisConfig
	Mongo MongoConfig

	Notifier string `env:"BANCO_NOTIFIER" envDefault:"log"`
	SNS      SNSConfig
	SMTP     SMTPConfig

	BcryptCost int `env:"BANCO_BCRYPT_COST" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"warn"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

type DDBConfig struct {
	Endpoint  string `env:"DDB_ENDPOINT"`
	Table     string `env:"DDB_TABLE" envDefault:"banco"`
	Region    string `env:"AWS_REGION" envDefault:"us-east-1"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID" envDefault:"x"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY" envDefault:"x"`
}

type RedisConfig struct {
	Host  string `env:"REDIS_HOST" envDefault:"localhost"`
	Port  string `env:"REDIS_PORT" envDefault:"6379"`
	User  string `env:"REDIS_USER"`
	Pass  string `env:"REDIS_PASS"`
	TLS   bool   `env:"REDIS_SSL" envDefault:"false"`
	DBNum int    `env:"REDIS_DB_NUM" envDefault:"0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"banco"`
}

type SNSConfig struct {
	TopicArn string `env:"SNS_TOPIC_ARN"`
	Endpoint string `env:"SNS_ENDPOINT"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port int    `env:"SMTP_PORT" envDefault:"587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM"`
	To   string `env:"SMTP_TO"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageFile:
	case StorageDatabase:
		if c.Database == "" {
			return types.Err(types.ErrInvalidBackend, nil, "BANCO_STORAGE=database requires BANCO_DATABASE")
		}
	default:
		return types.Err(types.ErrInvalidBackend, nil, "unknown BANCO_STORAGE %q", c.Storage)
	}
	switch c.Database {
	case "", DatabaseDDB, DatabaseRedis, DatabaseMongo:
	default:
		return types.Err(types.ErrInvalidBackend, nil, "unknown BANCO_DATABASE %q", c.Database)
	}
	switch c.Notifier {
	case NotifierLog, NotifierNone:
	case NotifierSNS:
		if c.SNS.TopicArn == "" {
			return fmt.Errorf("BANCO_NOTIFIER=sns requires SNS_TOPIC_ARN")
		}
	case NotifierSMTP:
		if c.SMTP.Host == "" || c.SMTP.To == "" {
			return fmt.Errorf("BANCO_NOTIFIER=smtp requires SMTP_HOST and SMTP_TO")
		}
	default:
		return fmt.Errorf("unknown BANCO_NOTIFIER %q", c.Notifier)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BANCO_BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

func (c Config) GestoresPath() string { return filepath.Join(c.DataDir, GestoresFile) }
func (c Config) ClientesPath() string { return filepath.Join(c.DataDir, ClientesFile) }
