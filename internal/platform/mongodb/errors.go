package mongodb

import (
	"errors"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/store"
)

// dupFieldRe reads the first key of the dup key document in an E11000
// message, e.g. `dup key: { name: "The Forest Hiker" }`.
var dupFieldRe = regexp.MustCompile(`dup key: \{ ?"?([A-Za-z_][A-Za-z0-9_.]*)"?:`)

// MapError maps a driver error to a store or fault error. Errors without a
// mapping are returned unchanged.
func MapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %v", notFound, err)
	}
	if mongo.IsDuplicateKeyError(err) {
		return duplicateKey(err)
	}
	return err
}

// duplicateKey turns an E11000 error into a DuplicateKeyError carrying the
// first quoted value of the driver message.
func duplicateKey(err error) error {
	msg := err.Error()
	var we mongo.WriteException
	if errors.As(err, &we) && len(we.WriteErrors) > 0 {
		msg = we.WriteErrors[0].Message
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		msg = bwe.WriteErrors[0].Message
	}

	dup := &fault.DuplicateKeyError{
		Value: fault.QuotedValue(msg),
		Err:   fmt.Errorf("%w: %w", store.ErrDuplicate, err),
	}
	if m := dupFieldRe.FindStringSubmatch(msg); m != nil {
		dup.Field = m[1]
	}
	return dup
}
