package backends

import (
	"banco/internal/backends/ddb"
	"banco/internal/backends/file"
	mongobackend "banco/internal/backends/mongo"
	"banco/internal/config"
	"banco/internal/ports"
	"banco/internal/types"
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	redisbackend "banco/internal/backends/redis"
)

const (
	CollectionGestores = "gestores"
	CollectionClientes = "clientes"

	KeyFieldGestor  = "usuario"
	KeyFieldCliente = "correo"
)

// Stores is the storage wiring chosen once at startup.
// Gestores/Clientes are the active backend. DBGestores/DBClientes are the database backend and are
// nil when no database is configured; when the database is the active backend they are the same
// values as Gestores/Clientes.
type Stores struct {
	Gestores ports.Store[types.Gestor]
	Clientes ports.Store[types.Cliente]

	DBGestores ports.Store[types.Gestor]
	DBClientes ports.Store[types.Cliente]

	closers []func(context.Context) error
}

// FromConfig opens the configured backends. The database is opened whenever BANCO_DATABASE is set,
// even if the file backend is the active one.
func FromConfig(ctx context.Context, cfg config.Config) (stores *Stores, err error) {
	stores = &Stores{}
	defer func() {
		if err != nil {
			_ = stores.Close(ctx)
			stores = nil
		}
	}()

	if cfg.Database != "" {
		if err = stores.openDatabase(ctx, cfg); err != nil {
			return
		}
	}

	switch cfg.Storage {
	case config.StorageFile:
		var g *file.Store[types.Gestor]
		if g, err = file.NewStore[types.Gestor](cfg.GestoresPath()); err != nil {
			return
		}
		var c *file.Store[types.Cliente]
		if c, err = file.NewStore[types.Cliente](cfg.ClientesPath()); err != nil {
			return
		}
		stores.Gestores, stores.Clientes = g, c
	case config.StorageDatabase:
		if stores.DBGestores == nil {
			err = types.Err(types.ErrInvalidBackend, nil, "database storage selected but no database configured")
			return
		}
		stores.Gestores, stores.Clientes = stores.DBGestores, stores.DBClientes
	default:
		err = types.Err(types.ErrInvalidBackend, nil, "unknown storage %q", cfg.Storage)
		return
	}
	log.WithFields(log.Fields{
		"storage":  cfg.Storage,
		"database": cfg.Database,
	}).Info("Storage ready")
	return stores, nil
}

// Close releases every client opened by FromConfig.
func (s *Stores) Close(ctx context.Context) error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](ctx))
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Stores) openDatabase(ctx context.Context, cfg config.Config) error {
	switch cfg.Database {
	case config.DatabaseDDB:
		cli, err := ddbClientFromConfig(ctx, cfg.DDB)
		if err != nil {
			return err
		}
		if err := ddb.CreateTableIfNotExists(ctx, cli, cfg.DDB.Table); err != nil {
			return err
		}
		s.DBGestores = ddb.NewStore[types.Gestor](cfg.DDB.Table, "GESTORES", cli)
		s.DBClientes = ddb.NewStore[types.Cliente](cfg.DDB.Table, "CLIENTES", cli)

	case config.DatabaseRedis:
		cli, err := redisClientFromConfig(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func(context.Context) error { return cli.Close() })
		s.DBGestores = redisbackend.NewStore[types.Gestor](cli, CollectionGestores)
		s.DBClientes = redisbackend.NewStore[types.Cliente](cli, CollectionClientes)

	case config.DatabaseMongo:
		cli, err := mongobackend.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, cli.Disconnect)
		db := cli.Database(cfg.Mongo.Database)
		g, err := mongobackend.NewStore[types.Gestor](ctx, db, CollectionGestores, KeyFieldGestor)
		if err != nil {
			return err
		}
		c, err := mongobackend.NewStore[types.Cliente](ctx, db, CollectionClientes, KeyFieldCliente)
		if err != nil {
			return err
		}
		s.DBGestores, s.DBClientes = g, c

	default:
		return types.Err(types.ErrInvalidBackend, nil, "unknown database %q", cfg.Database)
	}
	return nil
}

// ddbClientFromConfig creates a DynamoDB client. A set endpoint means a local emulator.
func ddbClientFromConfig(ctx context.Context, cfg config.DDBConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			// This is used for testing only locally
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
	}), nil
}

// redisClientFromConfig creates a Redis client and pings it.
func redisClientFromConfig(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var tlsConfig *tls.Config
	if cfg.TLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:      fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Username:  cfg.User,
		Password:  cfg.Pass,
		DB:        cfg.DBNum,
		TLSConfig: tlsConfig,
	})
	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return redisClient, nil
}
