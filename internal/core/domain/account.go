package domain

import "time"

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Account models a registered identity in the directory.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountPatch carries a partial profile update. A nil or empty field leaves
// the stored value untouched; it never clears it.
type AccountPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
}

// Apply merges the non-empty fields of p onto a and reports whether anything
// changed. Password and role are not patchable.
func (p AccountPatch) Apply(a *Account) bool {
	changed := false
	if v, ok := present(p.Username); ok && v != a.Username {
		a.Username = v
		changed = true
	}
	if v, ok := present(p.Email); ok && v != a.Email {
		a.Email = v
		changed = true
	}
	if v, ok := present(p.FirstName); ok && v != a.FirstName {
		a.FirstName = v
		changed = true
	}
	if v, ok := present(p.LastName); ok && v != a.LastName {
		a.LastName = v
		changed = true
	}
	return changed
}

func present(s *string) (string, bool) {
	if s == nil || *s == "" {
		return "", false
	}
	return *s, true
}
