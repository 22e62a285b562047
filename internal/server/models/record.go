package models

import (
	"time"

	"github.com/dmitrijs2005/valuationdesk/internal/common"
)

// Collection names double as URL segments of the records API.
const (
	CollectionValuations     = "valuations"
	CollectionBOFMaharashtra = "bof-maharashtra"
	CollectionUBIAPF         = "ubi-apf"
)

// Collections lists every record collection.
var Collections = []string{CollectionValuations, CollectionBOFMaharashtra, CollectionUBIAPF}

// IsValidCollection reports whether name is one of Collections.
func IsValidCollection(name string) bool {
	for _, c := range Collections {
		if c == name {
			return true
		}
	}
	return false
}

// Record is one valuation form submission. Data holds the form fields as
// submitted; the remaining fields are owned by the server.
type Record struct {
	Collection     string
	UniqueID       string
	ClientID       string
	Username       string
	Status         string
	ReworkComments string
	Data           map[string]any
	CreatedAt      time.Time
	LastUpdatedAt  time.Time
}

// serverFields are overwritten in Document and stripped from submitted data.
var serverFields = []string{
	"_id", "uniqueId", "clientId", "username", "status", "reworkComments", "createdAt", "lastUpdatedAt",
}

// StripServerFields returns a copy of data without the fields the server owns.
func StripServerFields(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, k := range serverFields {
		delete(out, k)
	}
	return out
}

// Document renders the record as the JSON object the API returns.
func (r *Record) Document() map[string]any {
	doc := make(map[string]any, len(r.Data)+len(serverFields))
	for k, v := range r.Data {
		doc[k] = v
	}
	doc["_id"] = r.Collection + ":" + r.UniqueID
	doc["uniqueId"] = r.UniqueID
	doc["clientId"] = r.ClientID
	doc["username"] = r.Username
	doc["status"] = r.Status
	if r.ReworkComments != "" {
		doc["reworkComments"] = r.ReworkComments
	}
	doc["createdAt"] = r.CreatedAt.UTC().Format(time.RFC3339Nano)
	doc["lastUpdatedAt"] = r.LastUpdatedAt.UTC().Format(time.RFC3339Nano)
	return doc
}

// RecordKey identifies a record. UniqueIDs are unique per collection and
// client.
type RecordKey struct {
	Collection string
	ClientID   string
	UniqueID   string
}

func (r *Record) Key() RecordKey {
	return RecordKey{Collection: r.Collection, ClientID: r.ClientID, UniqueID: r.UniqueID}
}

// RecordFilter selects records for listing. An empty Username means every
// record of ClientID.
type RecordFilter struct {
	Collection string
	ClientID   string
	Username   string
	Status     string
	Limit      int
	Offset     int
}

// NewRecord returns a pending record created at now.
func NewRecord(collection, uniqueID, clientID, username string, data map[string]any, now time.Time) *Record {
	return &Record{
		Collection:    collection,
		UniqueID:      uniqueID,
		ClientID:      clientID,
		Username:      username,
		Status:        common.StatusPending,
		Data:          StripServerFields(data),
		CreatedAt:     now,
		LastUpdatedAt: now,
	}
}
