package domain

// Account identifies the caller of a mutation. Accounts are owned by an
// external subsystem; only the ID travels through this service.
type Account struct {
	ID int64 `json:"id"`
}
