package role

// Роли пользователей системы
type Role int

const (
	Renter Role = iota // арендатор, ищет место
	Lender             // арендодатель, сдаёт место
	Admin              // модератор платформы
)

func (r Role) String() string {
	switch r {
	case Renter:
		return "renter"
	case Lender:
		return "lender"
	case Admin:
		return "admin"
	}
	return "unknown"
}
