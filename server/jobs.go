package server

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Daskott/tapcard/server/gstorage"
	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/server/work"
	"github.com/Daskott/tapcard/utils"
)

const (
	BACKUP_SQLITE_DB_JOB = "backupSqliteDb"
	SEND_CARD_SMS_JOB    = "sendCardSms"

	STORAGE_TIMEOUT = 2 * time.Minute
)

func registerJobHandlers(wpa *work.WorkerPoolAdapter) error {
	if err := wpa.Register(BACKUP_SQLITE_DB_JOB, backupSqliteDb); err != nil {
		return err
	}

	return wpa.Register(SEND_CARD_SMS_JOB, sendCardSms)
}

func enqueuePeriodicJobs(wpa *work.WorkerPoolAdapter) error {
	storageConfig := serverConfig.Google.Storage
	if !storageConfig.EnableSqliteBackupAndSync {
		return nil
	}

	return wpa.PeriodicallyPerform(storageConfig.SqliteBackupSchedule, work.JobParams{
		Name:    BACKUP_SQLITE_DB_JOB,
		Handler: BACKUP_SQLITE_DB_JOB,
		Unique:  true,
		Args:    map[string]interface{}{},
	})
}

// backupSqliteDb uploads the sqlite file to google storage.
func backupSqliteDb(map[string]interface{}) error {
	if objectStore == nil {
		return fmt.Errorf("backupSqliteDb: no object store configured")
	}

	if err := models.Checkpoint(); err != nil {
		return fmt.Errorf("backupSqliteDb: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), STORAGE_TIMEOUT)
	defer cancel()

	storageConfig := serverConfig.Google.Storage
	return objectStore.UploadFile(
		ctx,
		storageConfig.Bucket,
		gstorage.ObjectName(storageConfig.Prefix, models.DB_NAME),
		models.DbFilePath(configDir),
	)
}

// restoreSqliteDb pulls the last backup from google storage when there
// is no local db yet. A missing backup is not an error.
func restoreSqliteDb() error {
	dbFilePath := models.DbFilePath(configDir)
	if utils.FileExist(dbFilePath) {
		return nil
	}

	if err := utils.CreateDirIfNotExist(filepath.Dir(dbFilePath)); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), STORAGE_TIMEOUT)
	defer cancel()

	storageConfig := serverConfig.Google.Storage
	err := objectStore.DownloadFile(
		ctx,
		storageConfig.Bucket,
		gstorage.ObjectName(storageConfig.Prefix, models.DB_NAME),
		dbFilePath,
	)
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		logg.Info("No sqlite backup found, starting with an empty db")
		return nil
	}

	return err
}

// sendCardSms texts the public link of a card.
// Args: card_slug, phone_number
func sendCardSms(args map[string]interface{}) error {
	slug, _ := args["card_slug"].(string)
	phoneNumber, _ := args["phone_number"].(string)
	if slug == "" || phoneNumber == "" {
		return fmt.Errorf("sendCardSms: card_slug & phone_number are required, got %v", args)
	}

	card, err := models.FindCardBySlug(slug)
	if err != nil {
		return fmt.Errorf("sendCardSms: %v", err)
	}

	name := card.Record.ContactRecord().FullName()
	if name == "" {
		name = "Someone"
	}

	return smsClient.SendMessage(phoneNumber, fmt.Sprintf("%s shared their card with you: %s", name, publicCardURL(slug)))
}
