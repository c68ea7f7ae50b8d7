package entity

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleAdmin    UserRole = "admin"
)

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	FullName     string   `db:"full_name"`
	PasswordHash string   `db:"password"`
	Phone        *string  `db:"phone"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}

// Roles admin juga punya akses customer
func (u *User) Roles() []string {
	if u.Role == RoleAdmin {
		return []string{string(RoleCustomer), string(RoleAdmin)}
	}
	return []string{string(u.Role)}
}

// DisplayName fallback ke username kalau nama lengkap kosong
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
