// Package app builds the backends selected by the configuration and shares
// them between the API and worker binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"files-manager/internal/MinIO"
	"files-manager/internal/blob"
	"files-manager/internal/config"
	"files-manager/internal/migrations"
	"files-manager/internal/queue"
	"files-manager/internal/repository/fileRepo"
	"files-manager/internal/repository/jobLockRepo"
	"files-manager/internal/repository/memoryRepo"
	"files-manager/internal/repository/sessionRepo"
	"files-manager/internal/repository/userRepo"
	"files-manager/internal/service"
	"files-manager/internal/service/appService"
	"files-manager/internal/service/fileService"
	"files-manager/internal/service/thumbnailService"
	"files-manager/internal/worker"
	"files-manager/pkg/database/postgres"
	redisdb "files-manager/pkg/database/redis"
	"files-manager/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	queuePollTimeout = 5 * time.Second
	memoryQueueSize  = 256
)

type UserStore interface {
	service.UserRepository
	appService.Counter
}

type FileStore interface {
	fileService.FileRepository
	appService.Counter
}

type JobQueue interface {
	queue.Publisher
	queue.Consumer
}

type App struct {
	cfg *config.Config

	Redis *redis.Client
	DB    *sql.DB
	Users UserStore
	Files FileStore
	Blobs blob.Store
	Queue JobQueue
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}
	var err error

	a.Redis, err = redisdb.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if err := a.openMetadata(ctx); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	if a.Blobs, err = a.openBlobs(ctx); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	if cfg.QueueBackend == config.BackendMemory {
		a.Queue = queue.NewChanQueue(memoryQueueSize)
	} else {
		a.Queue = queue.NewRedisQueue(a.Redis, cfg.QueueName, queuePollTimeout)
	}
	return a, nil
}

func (a *App) openMetadata(ctx context.Context) error {
	if a.cfg.MetadataBackend == config.BackendMemory {
		a.Users = memoryRepo.NewUserRepo()
		a.Files = memoryRepo.NewFileRepo()
		return nil
	}

	db, err := postgres.New(ctx, a.cfg.Postgres)
	if err != nil {
		return err
	}
	a.DB = db
	if err := postgres.Migrate(ctx, db, migrations.Migrations); err != nil {
		return err
	}
	a.Users = userRepo.New(db)
	a.Files = fileRepo.New(db)
	return nil
}

func (a *App) openBlobs(ctx context.Context) (blob.Store, error) {
	switch a.cfg.BlobBackend {
	case config.BackendMinIO:
		return MinIO.New(ctx, a.cfg.MinIO, a.cfg.FolderPath)
	case config.BackendS3:
		client, err := blob.NewS3Client(ctx, a.cfg.S3)
		if err != nil {
			return nil, err
		}
		return blob.NewS3Store(client, a.cfg.S3.Bucket, a.cfg.FolderPath), nil
	default:
		return blob.NewOSStore(a.cfg.FolderPath)
	}
}

func (a *App) AuthService() *service.AuthService {
	return service.New(a.Users, sessionRepo.New(a.Redis))
}

func (a *App) FileService() *fileService.FileService {
	return fileService.New(a.Files, a.Blobs, a.Queue)
}

func (a *App) AppService() *appService.AppService {
	return appService.New(a.RedisPinger(), a.DBPinger(), a.Users, a.Files)
}

func (a *App) RedisPinger() appService.Pinger {
	return appService.PingFunc(func(ctx context.Context) error {
		return a.Redis.Ping(ctx).Err()
	})
}

func (a *App) DBPinger() appService.Pinger {
	if a.DB != nil {
		return appService.PingFunc(a.DB.PingContext)
	}
	return appService.PingFunc(func(context.Context) error { return nil })
}

// RunWorker drains the thumbnail queue until ctx ends. Jobs left unacked by a
// previous worker are requeued first.
func (a *App) RunWorker(ctx context.Context) error {
	log := logger.GetLogger(ctx)
	if rq, ok := a.Queue.(*queue.RedisQueue); ok {
		n, err := rq.Recover(ctx)
		if err != nil {
			return fmt.Errorf("recover pending jobs: %w", err)
		}
		if n > 0 {
			log.Info("requeued unacked jobs", zap.Int("count", n))
		}
	}

	proc := thumbnailService.New(a.Files, a.Blobs, jobLockRepo.New(a.Redis))
	log.Info("worker started", zap.Int("concurrency", a.cfg.WorkerConcurrency), zap.String("queue", a.cfg.QueueBackend))
	return worker.New(a.Queue, proc, a.cfg.WorkerConcurrency).WithRetryDelay(a.cfg.WorkerRetryDelay).Run(ctx)
}

func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = multierr.Append(err, a.DB.Close())
	}
	if a.Redis != nil {
		err = multierr.Append(err, a.Redis.Close())
	}
	return err
}
