// Package service contains the application use cases of the tours API. It
// coordinates the domain types with the storage interfaces in
// internal/store and never depends on a particular database.
//
// Services report expected conditions with the sentinel errors in this
// package and pass domain and store faults through unchanged; the API
// layer turns both into client responses.
package service
