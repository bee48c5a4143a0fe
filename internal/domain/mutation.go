package domain

import "time"

// Mutation is a partial account update. Nil fields are left untouched by the
// repository, so a balance change never clobbers an unrelated session field.
type Mutation struct {
	Balance         *float64
	LastUpdate      *time.Time
	IsMining        *bool
	LastSlashUpdate *time.Time
}

func (m Mutation) IsZero() bool {
	return m.Balance == nil && m.LastUpdate == nil && m.IsMining == nil && m.LastSlashUpdate == nil
}

// Apply patches the mutation onto an account copy and returns it. Session
// fields are ignored when the account has no session to patch.
func (m Mutation) Apply(account Account) Account {
	if m.Balance != nil {
		account.Balance = *m.Balance
	}
	if m.LastSlashUpdate != nil {
		t := *m.LastSlashUpdate
		account.LastSlashUpdate = &t
	}
	if account.Mining != nil {
		session := *account.Mining
		if m.LastUpdate != nil {
			session.LastUpdate = *m.LastUpdate
		}
		if m.IsMining != nil {
			session.IsMining = *m.IsMining
		}
		account.Mining = &session
	}

	return account
}
