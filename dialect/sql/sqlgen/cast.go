package sqlgen

import (
	"github.com/syssam/querykit/dialect"
	"github.com/syssam/querykit/entity"
)

var casts = map[string]map[entity.SemanticType]string{
	dialect.Postgres: {
		entity.TypeString:  "text",
		entity.TypeEnum:    "text",
		entity.TypeInt:     "bigint",
		entity.TypeFloat:   "double precision",
		entity.TypeDecimal: "numeric",
		entity.TypeBool:    "boolean",
		entity.TypeTime:    "timestamptz",
		entity.TypeUUID:    "uuid",
		entity.TypeBytes:   "bytea",
	},
	dialect.MySQL: {
		entity.TypeString:  "char",
		entity.TypeEnum:    "char",
		entity.TypeInt:     "signed",
		entity.TypeFloat:   "double",
		entity.TypeDecimal: "decimal(65,30)",
		entity.TypeBool:    "signed",
		entity.TypeTime:    "datetime(6)",
		entity.TypeUUID:    "char",
		entity.TypeBytes:   "binary",
	},
	dialect.SQLite: {
		entity.TypeString:  "text",
		entity.TypeEnum:    "text",
		entity.TypeInt:     "integer",
		entity.TypeFloat:   "real",
		entity.TypeDecimal: "numeric",
		entity.TypeBool:    "integer",
		entity.TypeTime:    "text",
		entity.TypeUUID:    "text",
		entity.TypeBytes:   "blob",
	},
}

// TypeName returns the cast target of a semantic type in the given dialect.
// It returns "" for types bound without a cast.
func TypeName(dialect string, t entity.SemanticType) string {
	return casts[dialect][t]
}
