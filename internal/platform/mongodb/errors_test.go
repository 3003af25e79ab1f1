package mongodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/phrazzld/natours-api/internal/fault"
	"github.com/phrazzld/natours-api/internal/store"
)

const dupMessage = `E11000 duplicate key error collection: natours.tours index: name_1 dup key: { name: "The Forest Hiker" }`

func TestMapError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, MapError(nil, store.ErrTourNotFound))
	})

	t.Run("no documents", func(t *testing.T) {
		err := MapError(mongo.ErrNoDocuments, store.ErrTourNotFound)
		assert.ErrorIs(t, err, store.ErrTourNotFound)
		assert.True(t, store.IsNotFoundError(err))
	})

	dupTests := []struct {
		name string
		err  error
	}{
		{
			name: "write exception",
			err: mongo.WriteException{WriteErrors: mongo.WriteErrors{
				{Index: 0, Code: 11000, Message: dupMessage},
			}},
		},
		{
			name: "bulk write exception",
			err: mongo.BulkWriteException{WriteErrors: []mongo.BulkWriteError{
				{WriteError: mongo.WriteError{Index: 1, Code: 11000, Message: dupMessage}},
			}},
		},
	}
	for _, tt := range dupTests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(tt.err, store.ErrTourNotFound)

			var dupErr *fault.DuplicateKeyError
			require.ErrorAs(t, err, &dupErr)
			assert.Equal(t, "name", dupErr.Field)
			assert.Equal(t, `"The Forest Hiker"`, dupErr.Value)
			assert.ErrorIs(t, err, store.ErrDuplicate)
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		orig := errors.New("connection reset")
		assert.Same(t, orig, MapError(orig, store.ErrTourNotFound))
	})
}
