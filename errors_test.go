package querykit_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit"
)

func TestResolutionError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := querykit.NewResolutionError("User", "func(*User) *int", nil)
		assert.Equal(t, "querykit: cannot resolve accessor func(*User) *int of User", err.Error())

		err = querykit.NewResolutionError("User", "Name", errors.New("no such field"))
		assert.Equal(t, "querykit: cannot resolve accessor Name of User: no such field", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := querykit.NewResolutionError("User", "Name", nil)
		assert.True(t, errors.Is(err, querykit.ErrResolution))
		assert.False(t, errors.Is(err, querykit.ErrValidation))
	})

	t.Run("IsResolutionError", func(t *testing.T) {
		wrapped := fmt.Errorf("wrapper: %w", querykit.NewResolutionError("User", "Name", nil))
		assert.True(t, querykit.IsResolutionError(wrapped))
		assert.False(t, querykit.IsResolutionError(errors.New("other error")))
		assert.False(t, querykit.IsResolutionError(nil))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := querykit.NewValidationError("page", querykit.ErrInvalidPage)
		assert.Equal(t, "querykit: invalid page: querykit: invalid page", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := querykit.NewValidationError("delete", querykit.ErrUnconditional)
		assert.True(t, errors.Is(err, querykit.ErrValidation))
		assert.True(t, errors.Is(err, querykit.ErrUnconditional), "cause is unwrapped")
		assert.False(t, errors.Is(err, querykit.ErrNilID))
	})

	t.Run("IsValidationError", func(t *testing.T) {
		wrapped := fmt.Errorf("wrapper: %w", querykit.NewValidationError("id", querykit.ErrNilID))
		assert.True(t, querykit.IsValidationError(wrapped))
		assert.False(t, querykit.IsValidationError(errors.New("other error")))
		assert.False(t, querykit.IsValidationError(nil))
	})
}

func TestExecutionError(t *testing.T) {
	cause := errors.New("duplicate key value")

	t.Run("Error", func(t *testing.T) {
		err := querykit.NewExecutionError("exec", "insert into users", cause)
		assert.Equal(t, "querykit: exec: duplicate key value", err.Error())

		err.Constraint = querykit.ConstraintUnique
		assert.Equal(t, "querykit: exec: unique constraint failed: duplicate key value", err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := querykit.NewExecutionError("query", "select 1", cause)
		assert.True(t, errors.Is(err, querykit.ErrExecution))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("IsConstraintError", func(t *testing.T) {
		err := querykit.NewExecutionError("exec", "insert into users", cause)
		assert.True(t, querykit.IsExecutionError(err))
		assert.False(t, querykit.IsConstraintError(err))

		err.Constraint = querykit.ConstraintForeignKey
		assert.True(t, querykit.IsConstraintError(fmt.Errorf("wrapper: %w", err)))
		assert.False(t, querykit.IsConstraintError(nil))
		assert.False(t, querykit.IsExecutionError(nil))
	})
}

func TestMappingError(t *testing.T) {
	err := &querykit.MappingError{
		Entity: "User",
		Field:  "Age",
		Column: "age",
		Value:  "old",
		Err:    errors.New("invalid syntax"),
	}
	assert.Equal(t, `querykit: mapping column "age" (string) into User.Age: invalid syntax`, err.Error())
	assert.True(t, errors.Is(err, querykit.ErrMapping))
	assert.True(t, querykit.IsMappingError(fmt.Errorf("wrapper: %w", err)))
	assert.False(t, querykit.IsMappingError(nil))
}

func TestConstraintString(t *testing.T) {
	tests := map[querykit.Constraint]string{
		querykit.ConstraintNone:       "none",
		querykit.ConstraintUnique:     "unique",
		querykit.ConstraintForeignKey: "foreign key",
		querykit.ConstraintCheck:      "check",
		querykit.ConstraintNotNull:    "not null",
	}
	for c, want := range tests {
		assert.Equal(t, want, c.String())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want querykit.Kind
	}{
		{"nil", nil, querykit.KindUnknown},
		{"plain", errors.New("plain"), querykit.KindUnknown},
		{"resolution", querykit.NewResolutionError("User", "Name", nil), querykit.KindResolution},
		{"validation", querykit.NewValidationError("id", querykit.ErrNilID), querykit.KindValidation},
		{"mapping", &querykit.MappingError{Err: errors.New("bad")}, querykit.KindMapping},
		{"execution", querykit.NewExecutionError("exec", "", errors.New("bad")), querykit.KindExecution},
		{
			"mapping_inside_execution",
			querykit.NewExecutionError("query", "", &querykit.MappingError{Err: errors.New("bad")}),
			querykit.KindMapping,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := querykit.KindOf(tt.err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestAggregateError(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, querykit.NewAggregateError())
		assert.NoError(t, querykit.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		err := errors.New("only")
		assert.Equal(t, err, querykit.NewAggregateError(nil, err))
	})

	t.Run("Multiple", func(t *testing.T) {
		first := querykit.NewValidationError("id", querykit.ErrNilID)
		second := errors.New("second")
		err := querykit.NewAggregateError(first, nil, second)
		require.Error(t, err)

		var agg *querykit.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.Equal(t, "querykit: multiple errors:\n  [1] querykit: invalid id: querykit: nil id\n  [2] second", err.Error())
		assert.True(t, errors.Is(err, querykit.ErrNilID))
		assert.True(t, errors.Is(err, second))
		assert.True(t, querykit.IsValidationError(err))
	})
}
