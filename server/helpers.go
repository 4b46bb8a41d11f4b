package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/tapcard/server/auth"
	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/server/work"
	"github.com/Daskott/tapcard/shared"
	"github.com/Daskott/tapcard/utils"
	"github.com/Daskott/tapcard/vcard"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const MALFORMED_VCARD_MSG = "could not read this vCard file"

var phoneNumberSeparators = regexp.MustCompile(`[\s().-]`)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

// writeError maps err to a status code, vCard errors are reported to the
// client & anything unexpected is a 500.
func writeError(rw http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vcard.ErrMalformedVCard):
		logg.Info(err)
		writeResponse(rw, ResponsePayload{Errors: []string{MALFORMED_VCARD_MSG}}, http.StatusUnprocessableEntity)
	case errors.Is(err, vcard.ErrInvalidArgument), errors.Is(err, vcard.ErrInvalidSize):
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		writeResponse(rw, ResponsePayload{Errors: []string{"record not found"}}, http.StatusNotFound)
	default:
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
	}
}

func writeValidationErrors(rw http.ResponseWriter, errs error) {
	writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
}

func writeAttachment(rw http.ResponseWriter, contentType, fileName string, body []byte) {
	rw.Header().Set("Content-Type", contentType)
	rw.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	rw.WriteHeader(http.StatusOK)
	rw.Write(body)
}

// readUploadedFile returns the content of the multipart "file" field.
func readUploadedFile(rw http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(rw, r.Body, MAX_UPLOAD_SIZE+1<<20)
	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil {
		return nil, fmt.Errorf("invalid upload: %v", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("a 'file' field is required: %v", err)
	}
	defer file.Close()

	return utils.ReadAtMost(file, MAX_UPLOAD_SIZE)
}

func pageQuery(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func requestUserID(r *http.Request) uint {
	id, _ := strconv.ParseUint(mux.Vars(r)["uid"], 10, 64)
	return uint(id)
}

func publicCardURL(slug string) string {
	return strings.TrimSuffix(serverConfig.Tapcard.PublicURL, "/") + "/c/" + slug
}

func qrSize() int {
	if serverConfig.Tapcard.QRSize > 0 {
		return serverConfig.Tapcard.QRSize
	}
	return vcard.DefaultQRSize
}

func removeUnknownFields(args map[string]interface{}, validFields map[string]bool) {
	for key := range args {
		if !validFields[key] {
			delete(args, key)
		}
	}
}

func RegisterValidators(validate *validator.Validate) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// if whitespace in password return false
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return validate.Var(phoneNumberSeparators.ReplaceAllString(fl.Field().String(), ""), "e164") == nil
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("vcard_kind", func(fl validator.FieldLevel) bool {
		return vcard.ValidKind(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return validate.RegisterValidation("image_payload", func(fl validator.FieldLevel) bool {
		return vcard.ValidImagePayload(fl.Field().String())
	})
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("id", tokenClaims.Subject)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

// client is only able to update/view their own record unless client is an admin
// who can GET/DELETE certain user resources
func canAccessUserResource(r *http.Request, userClaims *auth.TapcardTokenClaims) bool {
	allowedMethodsForAdmins := map[string]bool{"GET": true, "DELETE": true}
	deniedPathsForAdmin := []string{"/contacts", "/cards"}

	if mux.Vars(r)["uid"] == userClaims.Subject {
		return true
	}

	if !userClaims.IsAdmin {
		return false
	}

	if !allowedMethodsForAdmins[r.Method] {
		return false
	}

	for _, deniedPath := range deniedPathsForAdmin {
		if strings.Contains(r.URL.Path, deniedPath) {
			return false
		}
	}

	return true
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

// LoadServerConfig reads config into a ServerConfig & validates it.
func LoadServerConfig(config *viper.Viper) (shared.ServerConfig, error) {
	serverConfig := shared.ServerConfig{}

	err := config.Unmarshal(&serverConfig)
	if err != nil {
		return serverConfig, fmt.Errorf("unable to decode server config: %v", err)
	}

	err = validator.New().Struct(serverConfig)
	if err != nil {
		return serverConfig, fmt.Errorf("invalid server config: %v", err)
	}

	return serverConfig, nil
}

func loadKeyPair(privateKeyPem string, devMode bool) (*key.KeyPair, error) {
	if privateKeyPem != "" {
		return key.NewKeyPairFromRSAPrivateKeyPem(privateKeyPem)
	}

	if !devMode {
		return nil, fmt.Errorf("tapcard.privateKeyPem is required")
	}

	logg.Warn("No tapcard.privateKeyPem set, generating a key for this dev session")
	return key.GenerateKeyPair(2048)
}

func serve(server *http.Server) {
	logg.Infof("Tapcard server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, backupDb bool) {
	// Stop background jobs before the last backup
	workerPool.Stop()

	if backupDb {
		if err := backupSqliteDb(nil); err != nil {
			logg.Error(err)
		}
	}

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Tapcard server shutdown failed:%+s", err)
	}

	if err := models.Close(); err != nil {
		logg.Error(err)
	}

	logg.Infof("Tapcard server stopped properly")
}

// configDirectory retrieves the directory to store tapcard data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'tapcard' folder in home directory for prod
	configFolderName := "tapcard"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
