package store

import (
	"time"

	"user-import/core/reconcile"
	"user-import/feature/userimport/models"
)

// Table names of the persisted user set and the resolver registry.
const (
	UserTable       = "imported_users"
	DefinitionTable = "import_resolvers"
)

// UserColumns lists the columns the health check expects in UserTable.
var UserColumns = []string{
	"group_id", "resolver", "user_id", "username", "surname",
	"given_name", "email", "phone", "mobile", "password", "updated_at",
}

// ImportedUser is one persisted user row. The namespace is part of the key.
type ImportedUser struct {
	GroupID   string    `gorm:"column:group_id;primaryKey;size:128"`
	Resolver  string    `gorm:"column:resolver;primaryKey;size:128"`
	UserID    string    `gorm:"column:user_id;primaryKey;size:255"`
	Username  string    `gorm:"column:username;size:255;index:idx_imported_users_username"`
	Surname   string    `gorm:"column:surname;size:255"`
	GivenName string    `gorm:"column:given_name;size:255"`
	Email     string    `gorm:"column:email;size:255"`
	Phone     string    `gorm:"column:phone;size:64"`
	Mobile    string    `gorm:"column:mobile;size:64"`
	Password  string    `gorm:"column:password;size:255"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (ImportedUser) TableName() string {
	return UserTable
}

// ToRecord converts the row to the canonical record.
func (u ImportedUser) ToRecord() models.Record {
	return models.Record{
		UserID:    u.UserID,
		Username:  u.Username,
		Surname:   u.Surname,
		GivenName: u.GivenName,
		Email:     u.Email,
		Phone:     u.Phone,
		Mobile:    u.Mobile,
		Password:  u.Password,
	}
}

func fromRecord(ns reconcile.Namespace, r models.Record) ImportedUser {
	return ImportedUser{
		GroupID:   ns.GroupID,
		Resolver:  ns.Resolver,
		UserID:    r.UserID,
		Username:  r.Username,
		Surname:   r.Surname,
		GivenName: r.GivenName,
		Email:     r.Email,
		Phone:     r.Phone,
		Mobile:    r.Mobile,
		Password:  r.Password,
	}
}

// ResolverDefinition registers a namespace as a read-only SQL resolver.
// It is written in the same transaction as the user rows.
type ResolverDefinition struct {
	GroupID     string    `gorm:"column:group_id;primaryKey;size:128" json:"group_id"`
	Resolver    string    `gorm:"column:resolver;primaryKey;size:128" json:"resolver"`
	Format      string    `gorm:"column:format;size:32" json:"format"`
	UserCount   int64     `gorm:"column:user_count" json:"user_count"`
	LastCreated int       `gorm:"column:last_created" json:"last_created"`
	LastUpdated int       `gorm:"column:last_updated" json:"last_updated"`
	LastDeleted int       `gorm:"column:last_deleted" json:"last_deleted"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (ResolverDefinition) TableName() string {
	return DefinitionTable
}

// Namespace returns the namespace the definition belongs to.
func (d ResolverDefinition) Namespace() reconcile.Namespace {
	return reconcile.Namespace{GroupID: d.GroupID, Resolver: d.Resolver}
}
