// Package entity reads entity metadata from Go structs, resolves typed field
// accessors to columns and maps rows to entities.
//
// # Declaring entities
//
// Entities are plain structs. Columns default to the snake_case of the field
// name and can be overridden with a `db` tag:
//
//	type User struct {
//	    ID         int64      `db:"id,pk"`
//	    Email      string     `db:"email_address"`
//	    Nickname   *string                          // nullable: nickname
//	    Secret     string     `db:"-"`              // not a column
//	    CreateTime time.Time  `db:",immutable"`     // never updated
//	    UpdateTime *time.Time `db:",updatetime"`    // set on every update
//	}
//
//	func (User) TableName() string { return "app_users" }
//
// Without a TableName method the table is the snake_case plural of the type
// name ("users"). Without a pk option the field named ID is the primary key.
//
// # Accessors
//
// An accessor is built from a selector that returns the address of a field:
//
//	var UserEmail = entity.Of(func(u *User) *string { return &u.Email })
//
// The accessor's identity is the field offset inside the struct and the field
// type, so every selector of the same field resolves to the same column.
// Resolutions are cached for the lifetime of the process.
package entity
