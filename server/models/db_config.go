package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/Daskott/tapcard/server/auth"
	"github.com/Daskott/tapcard/server/logger"
	"github.com/Daskott/tapcard/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "tapcard.db"

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the encrypted sqlite db under dbRootDir, migrates the
// schema & inserts seed data.
func AutoMigrate(passPhrase string, dbRootDir string) error {
	err := openDB(passPhrase, dbRootDir)
	if err != nil {
		return err
	}

	err = db.AutoMigrate(&JobStatus{}, &Job{}, &Role{}, &User{}, &Card{}, &Contact{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return populateDBWithSeedData()
}

// InitializeTestDb points the package at a fresh db in a temp directory.
// It also lowers the bcrypt cost so tests creating users stay fast.
func InitializeTestDb() {
	auth.PasswordHashCost = 4

	dir, err := os.MkdirTemp("", "tapcard-test-")
	if err != nil {
		log.Panic(err)
	}

	if err := AutoMigrate("test-passphrase", dir); err != nil {
		log.Panic(err)
	}
}

// DbFilePath is where the sqlite file for dbRootDir lives.
func DbFilePath(dbRootDir string) string {
	return filepath.Join(dbRootDir, "db", DB_NAME)
}

// Checkpoint flushes the write-ahead log into the db file, so the file
// can be copied as a consistent backup.
func Checkpoint() error {
	return db.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error
}

func Close() error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//
func openDB(passPhrase string, dbRootDir string) error {
	dbDSNVal, err := dbDSN(passPhrase, dbRootDir)
	if err != nil {
		return fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err = gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func populateDBWithSeedData() error {
	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		err = db.Create(&[]JobStatus{
			{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB}, {Name: SCHEDULED_JOB},
		}).Error
		if err != nil {
			return err
		}
	}

	return seedRoles(db)
}

func dbDSN(passPhrase string, dbRootDir string) (string, error) {
	dbFilePath := DbFilePath(dbRootDir)

	err := utils.CreateDirIfNotExist(filepath.Dir(dbFilePath))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbFilePath,
		passPhrase,
	), nil
}
