package entity_test

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/querykit"
	"github.com/syssam/querykit/entity"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	token := uuid.New()
	acc, err := entity.Decode[Account](entity.Row{
		"id":          int64(7),
		"name":        []byte("alice"),
		"age":         int32(31),
		"balance":     "1000.25",
		"verified":    int64(1),
		"status":      "ACTIVE",
		"nick":        "al",
		"score":       float32(2.5),
		"token":       token.String(),
		"avatar":      "png",
		"create_time": "2024-03-01 10:20:30.123456",
		"update_time": nil,
		"unknown":     "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), acc.ID)
	assert.Equal(t, "alice", acc.Name)
	assert.Equal(t, 31, acc.Age)
	assert.True(t, decimal.RequireFromString("1000.25").Equal(acc.Balance))
	assert.True(t, acc.Verified)
	assert.Equal(t, Status("active"), acc.Status)
	require.NotNil(t, acc.Nickname)
	assert.Equal(t, "al", *acc.Nickname)
	require.NotNil(t, acc.Score)
	assert.Equal(t, 2.5, *acc.Score)
	assert.Equal(t, token, acc.Token)
	assert.Equal(t, []byte("png"), acc.Avatar)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 123456000, time.UTC), acc.CreateTime)
	assert.Nil(t, acc.UpdateTime)
}

func TestDecodeMissingColumns(t *testing.T) {
	t.Parallel()

	acc, err := entity.Decode[Account](entity.Row{"name": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", acc.Name)
	assert.Zero(t, acc.ID)
	assert.Nil(t, acc.Nickname)
	assert.True(t, acc.CreateTime.IsZero())
}

func TestDecodeTimeLayouts(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	for _, s := range []string{
		"2024-03-01T10:20:30.000",
		"2024-03-01T10:20:30",
		"2024-03-01 10:20:30.0",
		"2024-03-01 10:20:30",
		"2024-03-01T10:20:30Z",
		"2024-03-01 10:20:30+00:00",
	} {
		t.Run(s, func(t *testing.T) {
			acc, err := entity.Decode[Account](entity.Row{"create_time": s})
			require.NoError(t, err)
			assert.True(t, want.Equal(acc.CreateTime), "got %s", acc.CreateTime)
		})
	}
}

func TestDecodeNumericWidening(t *testing.T) {
	t.Parallel()

	for _, src := range []any{int8(5), int16(5), int32(5), int64(5), uint8(5), uint32(5), float64(5), "5", []byte("5.0"), decimal.NewFromInt(5)} {
		acc, err := entity.Decode[Account](entity.Row{"age": src})
		require.NoError(t, err, "%T", src)
		assert.Equal(t, 5, acc.Age, "%T", src)
	}
}

func TestDecodeFailures(t *testing.T) {
	t.Parallel()

	t.Run("non_nullable", func(t *testing.T) {
		for column, src := range map[string]any{
			"age":         "forty",
			"verified":    "maybe",
			"status":      "deleted",
			"create_time": "yesterday",
			"token":       "not-a-uuid",
			"balance":     "lots",
		} {
			_, err := entity.Decode[Account](entity.Row{column: src})
			require.Error(t, err, column)
			assert.True(t, querykit.IsMappingError(err), column)
			assert.Equal(t, querykit.KindMapping, querykit.KindOf(err))
		}
	})

	t.Run("fractional_integer", func(t *testing.T) {
		_, err := entity.Decode[OrderItem](entity.Row{"order_id": 1.5})
		assert.True(t, querykit.IsMappingError(err))
	})

	t.Run("nullable_degrades", func(t *testing.T) {
		var buf bytes.Buffer
		codec := entity.NewCodec(entity.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
		acc, err := entity.DecodeWith[Account](codec, entity.Row{"score": "high", "name": "eve"})
		require.NoError(t, err)
		assert.Nil(t, acc.Score)
		assert.Equal(t, "eve", acc.Name)
		assert.Contains(t, buf.String(), "column=score")
	})
}

func TestEncode(t *testing.T) {
	t.Parallel()

	nick := "al"
	acc := &Account{
		Name:       "alice",
		Age:        30,
		Balance:    decimal.NewFromInt(10),
		Status:     "active",
		Nickname:   &nick,
		Audit:      Audit{CreateTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	t.Run("insert", func(t *testing.T) {
		values, err := entity.Encode(acc, entity.ForInsert)
		require.NoError(t, err)
		row := entity.AsRow(values)
		assert.NotContains(t, row, "id", "unset primary key is left to the store")
		assert.NotContains(t, row, "score", "nil fields are omitted")
		assert.NotContains(t, row, "update_time")
		assert.Equal(t, "al", row["nick"])
		assert.Equal(t, "active", row["status"])
		assert.IsType(t, "", row["status"])
		assert.Contains(t, row, "create_time")
	})

	t.Run("insert_with_id", func(t *testing.T) {
		withID := *acc
		withID.ID = 9
		values, err := entity.Encode(&withID, entity.ForInsert)
		require.NoError(t, err)
		assert.Equal(t, int64(9), entity.AsRow(values)["id"])
	})

	t.Run("update", func(t *testing.T) {
		withID := *acc
		withID.ID = 9
		values, err := entity.Encode(&withID, entity.ForUpdate)
		require.NoError(t, err)
		row := entity.AsRow(values)
		assert.NotContains(t, row, "id")
		assert.NotContains(t, row, "create_time")
		assert.Equal(t, "alice", row["name"])
		assert.Equal(t, "name", values[0].Column.Name, "values keep declaration order")
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	nick := "al"
	score := 1.5
	updated := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	row := entity.Row{
		"id":          int64(3),
		"name":        "alice",
		"age":         30,
		"balance":     decimal.RequireFromString("12.50"),
		"verified":    true,
		"status":      "blocked",
		"nick":        nick,
		"score":       score,
		"token":       uuid.MustParse("8f14e45f-ceea-467f-a0e6-7b5b1b3e0c2a"),
		"avatar":      []byte{1, 2, 3},
		"create_time": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"update_time": updated,
	}
	acc, err := entity.Decode[Account](row)
	require.NoError(t, err)

	values, err := entity.Encode(acc, entity.ForAll)
	require.NoError(t, err)
	assert.Equal(t, row, entity.AsRow(values))

	values, err = entity.Encode(acc, entity.ForUpdate)
	require.NoError(t, err)
	expected := entity.Row{}
	for k, v := range row {
		if k != "id" && k != "create_time" {
			expected[k] = v
		}
	}
	assert.Equal(t, expected, entity.AsRow(values))
}
