package config

import (
	"banco/internal/types"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(StorageFile, cfg.Storage)
	s.Equal("./data", cfg.DataDir)
	s.Empty(cfg.Database)
	s.Equal(NotifierLog, cfg.Notifier)
	s.Equal(10, cfg.BcryptCost)
	s.Equal("banco", cfg.DDB.Table)
	s.Equal("6379", cfg.Redis.Port)
	s.Equal(587, cfg.SMTP.Port)
	s.Equal("data/gestores.json", cfg.GestoresPath())
}

func (s *ConfigTestSuite) TestFromEnv() {
	t := s.T()
	t.Setenv("BANCO_STORAGE", "database")
	t.Setenv("BANCO_DATABASE", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_SSL", "true")
	t.Setenv("REDIS_DB_NUM", "3")
	t.Setenv("BANCO_BCRYPT_COST", "12")
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(StorageDatabase, cfg.Storage)
	s.Equal(DatabaseRedis, cfg.Database)
	s.Equal("cache", cfg.Redis.Host)
	s.True(cfg.Redis.TLS)
	s.Equal(3, cfg.Redis.DBNum)
	s.Equal(12, cfg.BcryptCost)
}

func (s *ConfigTestSuite) TestDatabaseStorageNeedsDriver() {
	s.T().Setenv("BANCO_STORAGE", "database")
	_, err := Load()
	s.ErrorIs(err, types.ErrInvalidBackend)
}

func (s *ConfigTestSuite) TestInvalidValues() {
	base := Config{Storage: StorageFile, Notifier: NotifierLog, BcryptCost: 10}
	s.NoError(base.Validate())

	c := base
	c.Storage = "archivos"
	s.ErrorIs(c.Validate(), types.ErrInvalidBackend)

	c = base
	c.Database = "postgres"
	s.ErrorIs(c.Validate(), types.ErrInvalidBackend)

	c = base
	c.Notifier = NotifierSNS
	s.Error(c.Validate())

	c = base
	c.BcryptCost = 2
	s.Error(c.Validate())
}

func (s *ConfigTestSuite) TestBadNumber() {
	s.T().Setenv("REDIS_DB_NUM", "cero")
	_, err := Load()
	s.Error(err)
}
