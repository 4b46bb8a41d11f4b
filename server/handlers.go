package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Daskott/tapcard/server/auth"
	"github.com/Daskott/tapcard/server/auth/key"
	"github.com/Daskott/tapcard/server/models"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func createUser(rw http.ResponseWriter, r *http.Request) {
	user := models.User{}

	err := json.NewDecoder(r.Body).Decode(&user)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	errs := validate.Struct(user)
	if errs != nil {
		writeValidationErrors(rw, errs)
		return
	}

	err = models.CreateUser(&user)
	if err != nil {
		writeError(rw, err)
		return
	}

	user.Password = ""
	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusOK)
}

func findUser(rw http.ResponseWriter, r *http.Request) {
	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: user}, http.StatusOK)
}

func deleteUser(rw http.ResponseWriter, r *http.Request) {
	err := models.DeleteUser(mux.Vars(r)["uid"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

func updateUser(rw http.ResponseWriter, r *http.Request) {
	var errs []string
	data := make(map[string]interface{})

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	removeUnknownFields(data, map[string]bool{"first_name": true, "last_name": true, "phone_number": true, "password": true})
	if len(data) <= 0 {
		writeResponse(rw,
			ResponsePayload{Errors: []string{"valid fields required"}},
			http.StatusBadRequest,
		)
		return
	}

	if data["password"] != nil && validate.Var(fmt.Sprint(data["password"]), "password") != nil {
		errs = append(errs, "password cannot be empty or contain spaces")
	}

	if data["phone_number"] != nil && validate.Var(fmt.Sprint(data["phone_number"]), "phone_number") != nil {
		errs = append(errs, "phone_number is invalid")
	}

	if len(errs) > 0 {
		writeResponse(rw, ResponsePayload{Errors: errs}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserBy("id", mux.Vars(r)["uid"])
	if err != nil {
		writeError(rw, err)
		return
	}

	err = user.Update(data)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	user, err := models.FindUserWithPassword(strings.TrimSpace(data["email"]))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(rw, err)
		return
	}

	if user == nil || !auth.CheckPasswordHash(data["password"], user.Password) {
		writeResponse(rw, ResponsePayload{Errors: []string{"email/password is invalid"}}, http.StatusUnauthorized)
		return
	}

	isAdmin, err := user.IsAdmin()
	if err != nil {
		writeError(rw, err)
		return
	}

	token, err := auth.EncodeJWT(auth.NewTokenClaims(user.ID, user.FirstName, user.LastName, isAdmin), authKeyPair)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: map[string]string{"token": token}}, http.StatusOK)
}

func jwks(rw http.ResponseWriter, r *http.Request) {
	jwk, err := authKeyPair.JWK()
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.WriteHeader(http.StatusOK)
	json.NewEncoder(rw).Encode(key.ExportJWKAsJWKS(jwk))
}

func listJobs(rw http.ResponseWriter, r *http.Request) {
	var jobs []models.Job
	var paging *models.Paging
	var err error

	status := r.URL.Query().Get("status")
	if status != "" && !models.JobStatusNameMap[status] {
		writeResponse(rw, ResponsePayload{Errors: []string{fmt.Sprintf("invalid job status %q", status)}}, http.StatusBadRequest)
		return
	}

	if status == "" {
		jobs, paging, err = models.FetchJobs(pageQuery(r))
	} else {
		jobs, paging, err = models.FetchJobsByStatus(status, pageQuery(r))
	}

	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"jobs": jobs, "paging": paging},
	}, http.StatusOK)
}

func jobStats(rw http.ResponseWriter, r *http.Request) {
	stats, err := models.CurrentJobsStats()
	if err != nil {
		writeError(rw, err)
		return
	}

	cards, err := models.CountCards()
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"jobs": stats, "card_count": cards},
	}, http.StatusOK)
}
