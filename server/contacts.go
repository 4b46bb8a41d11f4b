package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Daskott/tapcard/server/models"
	"github.com/Daskott/tapcard/vcard"
	"github.com/gorilla/mux"
)

const EXPORTED_CONTACTS_FILE_NAME = "contacts.vcf"

type SaveContactPayload struct {
	CardSlug string `json:"card_slug" validate:"required"`
}

func listContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, paging, err := models.FetchUserContacts(requestUserID(r), pageQuery(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"contacts": contacts, "paging": paging},
	}, http.StatusOK)
}

// saveContactFromCard adds someone's public card to the user's address book.
func saveContactFromCard(rw http.ResponseWriter, r *http.Request) {
	payload := SaveContactPayload{}
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	if errs := validate.Struct(payload); errs != nil {
		writeValidationErrors(rw, errs)
		return
	}

	card, err := models.FindCardBySlug(payload.CardSlug)
	if err != nil {
		writeError(rw, err)
		return
	}

	user := models.User{BaseModel: models.BaseModel{ID: requestUserID(r)}}
	contacts, err := user.AddContacts([]vcard.ContactRecord{*card.Record.ContactRecord()}, models.SAVED_CONTACT)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true, Data: contacts[0]}, http.StatusOK)
}

// importContacts adds every card of an uploaded address book export.
func importContacts(rw http.ResponseWriter, r *http.Request) {
	data, err := readUploadedFile(rw, r)
	if err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	records, err := vcard.ImportCards(bytes.NewReader(data))
	if err != nil {
		writeError(rw, err)
		return
	}

	user := models.User{BaseModel: models.BaseModel{ID: requestUserID(r)}}
	contacts, err := user.AddContacts(records, models.IMPORTED_CONTACT)
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{
		Success: true,
		Data:    map[string]interface{}{"imported": len(contacts)},
	}, http.StatusOK)
}

// exportContacts returns the whole address book as one .vcf file.
func exportContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, err := models.AllUserContacts(requestUserID(r))
	if err != nil {
		writeError(rw, err)
		return
	}

	var b strings.Builder
	for _, contact := range contacts {
		text, err := vcard.Encode(contact.Record.ContactRecord())
		if err != nil {
			logg.Warnf("skipping contact %v in export: %v", contact.ID, err)
			continue
		}
		b.WriteString(text)
	}

	writeAttachment(rw, vcard.MimeType+"; charset=utf-8", EXPORTED_CONTACTS_FILE_NAME, []byte(b.String()))
}

func deleteContact(rw http.ResponseWriter, r *http.Request) {
	err := models.DeleteUserContact(requestUserID(r), mux.Vars(r)["id"])
	if err != nil {
		writeError(rw, err)
		return
	}

	writeResponse(rw, ResponsePayload{Success: true}, http.StatusOK)
}
