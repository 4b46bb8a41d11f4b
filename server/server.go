package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/tapcard/server/auth"
	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/Daskott/tapcard/server/gstorage"
	"github.com/Daskott/tapcard/server/logger"
	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/server/twilio"
	"github.com/Daskott/tapcard/server/work"
	"github.com/Daskott/tapcard/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// MAX_UPLOAD_SIZE caps uploaded .vcf files, photos included.
const MAX_UPLOAD_SIZE = 5 << 20

type ResponsePayload struct {
	Errors  []string    `json:"errors,omitempty"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type DecodedJWT struct {
	Claims   *auth.TapcardTokenClaims
	ErrorMsg string
}

type RequestContextKey string

// SmsSender delivers text messages, see twilio.ClientWrapper.
type SmsSender interface {
	SendMessage(to, msg string) error
}

// ObjectStore keeps sqlite backups, see gstorage.GStorage.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, object, filePath string) error
	DownloadFile(ctx context.Context, bucket, object, destFileName string) error
}

var (
	logg = logger.NewLogger()

	validate     *validator.Validate
	authKeyPair  *key.KeyPair
	workerPool   *work.WorkerPoolAdapter
	smsClient    SmsSender
	objectStore  ObjectStore
	serverConfig shared.ServerConfig
	configDir    string
)

// Start loads config, opens the db, starts background jobs & serves the API
// until the process receives SIGINT or SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	var err error

	validate = validator.New()
	fatalOnError(RegisterValidators(validate))

	serverConfig, err = LoadServerConfig(config)
	fatalOnError(err)

	authKeyPair, err = loadKeyPair(serverConfig.Tapcard.PrivateKeyPem, devMode)
	fatalOnError(err)

	configDir = configDirectory(devMode)
	backupEnabled := serverConfig.Google.Storage.EnableSqliteBackupAndSync

	if backupEnabled {
		storage, err := gstorage.NewGStorage(context.Background(), serverConfig.Google.ApplicationCredentials)
		fatalOnError(err)
		objectStore = storage

		fatalOnError(restoreSqliteDb())
	}

	fatalOnError(models.AutoMigrate(serverConfig.Sqlite.PassPhrase, configDir))

	smsClient = twilio.NewClient(serverConfig.Twilio)

	workerPool, err = work.NewWorkerAdapter(serverConfig.Tapcard.Cron.TimeZone)
	fatalOnError(err)
	fatalOnError(registerJobHandlers(workerPool))
	fatalOnError(enqueuePeriodicJobs(workerPool))
	workerPool.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", serverConfig.Tapcard.Listener.Port),
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serve(server)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cleanup(workerPool, server, backupEnabled)
}

func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	public := router.PathPrefix("/c/{slug}").Subrouter()
	public.HandleFunc("", getPublicCard).Methods("GET")
	public.HandleFunc("/vcard", downloadPublicVCard).Methods("GET")
	public.HandleFunc("/qr", getPublicCardQR).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(initialContextMiddleware)
	api.HandleFunc("/login", logIn).Methods("POST")
	api.HandleFunc("/jwks", jwks).Methods("GET")
	api.Handle("/users", adminRouteMiddleware(http.HandlerFunc(createUser))).Methods("POST")

	jobs := api.PathPrefix("/jobs").Subrouter()
	jobs.Use(adminRouteMiddleware)
	jobs.HandleFunc("", listJobs).Methods("GET")
	jobs.HandleFunc("/stats", jobStats).Methods("GET")

	users := api.PathPrefix("/users/{uid:[0-9]+}").Subrouter()
	users.Use(protectedRouteMiddleware)
	users.HandleFunc("", findUser).Methods("GET")
	users.HandleFunc("", updateUser).Methods("PUT")
	users.HandleFunc("", deleteUser).Methods("DELETE")

	users.HandleFunc("/cards", createCard).Methods("POST")
	users.HandleFunc("/cards", listCards).Methods("GET")
	users.HandleFunc("/cards/parse", parseVCardUpload).Methods("POST")
	users.HandleFunc("/cards/upload", uploadVCard).Methods("POST")
	users.HandleFunc("/cards/{id:[0-9]+}", findCard).Methods("GET")
	users.HandleFunc("/cards/{id:[0-9]+}", updateCard).Methods("PUT")
	users.HandleFunc("/cards/{id:[0-9]+}", deleteCard).Methods("DELETE")
	users.HandleFunc("/cards/{id:[0-9]+}/share", shareCard).Methods("POST")

	users.HandleFunc("/contacts", listContacts).Methods("GET")
	users.HandleFunc("/contacts", saveContactFromCard).Methods("POST")
	users.HandleFunc("/contacts/import", importContacts).Methods("POST")
	users.HandleFunc("/contacts/export", exportContacts).Methods("GET")
	users.HandleFunc("/contacts/{id:[0-9]+}", deleteContact).Methods("DELETE")

	return router
}
