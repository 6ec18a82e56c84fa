package model

import "time"

// Service is a third-party identity provider, e.g. "github".
// Rows are created lazily the first time an account for that provider
// is linked.
type Service struct {
	ID   string `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

// Account links one of our users to an identity at a Service.
// One user has many accounts; one service has many accounts.
// (user_id, service_id) is unique — a user links each provider once.
type Account struct {
	ID                string    `json:"id"                db:"id"`
	UserID            string    `json:"userId"            db:"user_id"`
	ServiceID         string    `json:"serviceId"         db:"service_id"`
	ProviderAccountID string    `json:"providerAccountId" db:"provider_account_id"`
	CreatedAt         time.Time `json:"createdAt"         db:"created_at"`
}
