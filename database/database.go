package database

import (
	"errors"
	"fmt"

	"github.com/lonlait/blogicum/config"
	"github.com/lonlait/blogicum/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

var ErrUnsupportedDBType = errors.New("unsupported DB_TYPE")

type Database struct {
	userRepo     *UserRepo
	categoryRepo *CategoryRepo
	locationRepo *LocationRepo
	postRepo     *PostRepo
	commentRepo  *CommentRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		userRepo:     NewUserRepo(db),
		categoryRepo: NewCategoryRepo(db),
		locationRepo: NewLocationRepo(db),
		postRepo:     NewPostRepo(db),
		commentRepo:  NewCommentRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

func (d Database) CategoryRepo() *CategoryRepo {
	return d.categoryRepo
}

func (d Database) LocationRepo() *LocationRepo {
	return d.locationRepo
}

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

// Open connects to the configured store. Postgres connections register any
// DB_REPLICA_DSNS as read replicas.
func Open(app config.App, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{}
	}
	gormConfig.TranslateError = true

	switch app.DBType {
	case config.DBTypePostgres:
		if app.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres selected but neither DATABASE_URL nor DB_HOST is set")
		}

		db, err := gorm.Open(postgres.New(postgres.Config{
			DSN:                  app.DatabaseURL,
			PreferSimpleProtocol: true,
		}), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		if len(app.ReplicaDSNs) > 0 {
			replicas := make([]gorm.Dialector, 0, len(app.ReplicaDSNs))
			for _, dsn := range app.ReplicaDSNs {
				replicas = append(replicas, postgres.Open(dsn))
			}
			if err := db.Use(dbresolver.Register(dbresolver.Config{
				Replicas: replicas,
				Policy:   dbresolver.RandomPolicy{},
			})); err != nil {
				return nil, fmt.Errorf("register replicas: %w", err)
			}
		}

		return db, nil
	case config.DBTypeSQLite:
		db, err := gorm.Open(sqlite.Open(SQLiteDSN(app.SQLitePath)), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDBType, app.DBType)
	}
}

// SQLiteDSN turns a file path into a DSN with foreign keys enforced on every connection.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
