package entity_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/querykit/entity"
)

type Status string

func (Status) Values() []string { return []string{"active", "blocked"} }

type Audit struct {
	CreateTime time.Time  `db:"create_time"`
	UpdateTime *time.Time `db:"update_time"`
}

type Account struct {
	ID       int64           `db:"id,pk"`
	Name     string          `db:"name"`
	Age      int             `db:"age"`
	Balance  decimal.Decimal `db:"balance"`
	Verified bool            `db:"verified"`
	Status   Status          `db:"status"`
	Nickname *string         `db:"nick"`
	Score    *float64
	Token    uuid.UUID
	Avatar   []byte
	Secret   string `db:"-"`
	internal int
	Audit
}

func (Account) TableName() string { return "accounts" }

type OrderItem struct {
	ID       int
	OrderID  int64
	HTTPCode int
}

var (
	AccountID       = entity.Of(func(a *Account) *int64 { return &a.ID })
	AccountName     = entity.Of(func(a *Account) *string { return &a.Name })
	AccountAge      = entity.Of(func(a *Account) *int { return &a.Age })
	AccountBalance  = entity.Of(func(a *Account) *decimal.Decimal { return &a.Balance })
	AccountVerified = entity.Of(func(a *Account) *bool { return &a.Verified })
	AccountNickname = entity.Of(func(a *Account) **string { return &a.Nickname })
	AccountCreated  = entity.Of(func(a *Account) *time.Time { return &a.CreateTime })
)
