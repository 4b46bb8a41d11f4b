package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/server/work"
	"github.com/Daskott/tapcard/vcard"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

type CardPayload struct {
	Label  string              `json:"label" validate:"max=64"`
	Record vcard.ContactRecord `json:"record"`
}

type SharePayload struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone_number"`
}

type PublicCard struct {
	Slug     string              `json:"slug"`
	Label    string              `json:"label"`
	Record   vcard.ContactRecord `json:"record"`
	VCardURL string              `json:"vcard_url"`
	QRURL    string              `json:"qr_url"`
}

func createCard(rw http.ResponseWriter, r *http.Request) {
	payload := CardPayload{}
	if !decodeCardPayload(rw, r, &payload) {
		return
	}

	card, err := models.CreateCard(requestUserID(r), payload.Label, &payload.Record)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: card}, http.StatusOK)
}

func listCards(rw http.ResponseWriter, r *http.Request) {
	cards, paging, err := models.FetchUserCards(requestUserID(r), pageQuery(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"cards": cards, "paging": paging},
	}, http.StatusOK)
}

func findCard(rw http.ResponseWriter, r *http.Request) {
	card, err := models.FindUserCard(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: card}, http.StatusOK)
}

func updateCard(rw http.ResponseWriter, r *http.Request) {
	card, err := models.FindUserCard(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, err)
		return
	}

	payload := CardPayload{}
	if !decodeCardPayload(rw, r, &payload) {
		return
	}

	err = card.Update(payload.Label, &payload.Record)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: card}, http.StatusOK)
}

func deleteCard(rw http.ResponseWriter, r *http.Request) {
	err := models.DeleteUserCard(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}

// parseVCardUpload decodes an uploaded .vcf file so a card form can be
// pre-filled with it. Nothing is stored.
func parseVCardUpload(rw http.ResponseWriter, r *http.Request) {
	record, err := decodeUploadedVCard(rw, r)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: record}, http.StatusOK)
}

// uploadVCard decodes an uploaded .vcf file & saves it as a new card.
func uploadVCard(rw http.ResponseWriter, r *http.Request) {
	record, err := decodeUploadedVCard(rw, r)
	if err != nil {
		writeError(rw, err)
		return
	}

	card, err := models.CreateCard(requestUserID(r), r.FormValue("label"), record)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: card}, http.StatusOK)
}

// shareCard queues a text message with the card's public link.
func shareCard(rw http.ResponseWriter, r *http.Request) {
	card, err := models.FindUserCard(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, err)
		return
	}

	payload := SharePayload{}
	err = json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(payload); errs != nil {
		writeValidationErrors(rw, errs)
		return
	}

	err = workerPool.Perform(work.JobParams{
		Name:    fmt.Sprintf("%s-%v-%s", SEND_CARD_SMS_JOB, card.ID, payload.PhoneNumber),
		Handler: SEND_CARD_SMS_JOB,
		Unique:  true,
		Args: map[string]interface{}{
			"card_slug":    card.Slug,
			"phone_number": payload.PhoneNumber,
		},
	})
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusAccepted)
}

// ---------------------------------------------------------------------------------//
// Public card handlers
// --------------------------------------------------------------------------------//

func getPublicCard(rw http.ResponseWriter, r *http.Request) {
	card, err := models.FindCardBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: PublicCard{
		Slug:     card.Slug,
		Label:    card.Label,
		Record:   *card.Record.ContactRecord(),
		VCardURL: publicCardURL(card.Slug) + "/vcard",
		QRURL:    publicCardURL(card.Slug) + "/qr",
	}}, http.StatusOK)
}

func downloadPublicVCard(rw http.ResponseWriter, r *http.Request) {
	card, err := models.FindCardBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeError(rw, err)
		return
	}

	text, err := card.VCardText()
	if err != nil {
		writeError(rw, err)
		return
	}

	writeAttachment(rw, vcard.MimeType+"; charset=utf-8", vcard.FileName(card.Record.ContactRecord()), []byte(text))
}

func getPublicCardQR(rw http.ResponseWriter, r *http.Request) {
	size := qrSize()
	if value := r.URL.Query().Get("size"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			writeResponse(rw, ResponsePayload{Errors: []string{"size must be a positive number"}}, http.StatusBadRequest)
			return
		}
		size = parsed
	}

	card, err := models.FindCardBySlug(mux.Vars(r)["slug"])
	if err != nil {
		writeError(rw, err)
		return
	}

	text, err := card.VCardText()
	if err != nil {
		writeError(rw, err)
		return
	}

	png, err := vcard.RenderQR(text, size)
	if err != nil {
		writeError(rw, err)
		return
	}

	rw.Header().Set("Content-Type", "image/png")
	rw.WriteHeader(http.StatusOK)
	rw.Write(png)
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func decodeCardPayload(rw http.ResponseWriter, r *http.Request, payload *CardPayload) bool {
	err := json.NewDecoder(r.Body).Decode(payload)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return false
	}

	if errs := validate.Struct(payload); errs != nil {
		writeValidationErrors(rw, errs)
		return false
	}

	return true
}

func decodeUploadedVCard(rw http.ResponseWriter, r *http.Request) (*vcard.ContactRecord, error) {
	data, err := readUploadedFile(rw, r)
	if err != nil {
		return nil, errors.Wrapf(vcard.ErrInvalidArgument, "%v", err)
	}

	return vcard.NewDecoder(logg).Decode(string(data))
}
