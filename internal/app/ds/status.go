package ds

// Статус заявки на бронирование
type ReservationStatus string

const (
	StatusPending         ReservationStatus = "pending"
	StatusApprovedFull    ReservationStatus = "approved_full"
	StatusApprovedPartial ReservationStatus = "approved_partial"
	StatusRejected        ReservationStatus = "rejected"
	StatusCancelled       ReservationStatus = "cancelled_by_renter"
	StatusExpired         ReservationStatus = "expired"
)

// IsApproved - заявка одобрена (полностью или частично) и держит объём
func (s ReservationStatus) IsApproved() bool {
	return s == StatusApprovedFull || s == StatusApprovedPartial
}

// IsTerminal - из статуса нет дальнейших переходов
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// CanTransitionTo проверяет допустимость перехода по таблице жизненного цикла:
// pending -> approved_full | approved_partial | rejected | cancelled_by_renter | expired,
// approved_* -> cancelled_by_renter. Остальное запрещено.
func (s ReservationStatus) CanTransitionTo(to ReservationStatus) bool {
	switch s {
	case StatusPending:
		switch to {
		case StatusApprovedFull, StatusApprovedPartial, StatusRejected, StatusCancelled, StatusExpired:
			return true
		}
	case StatusApprovedFull, StatusApprovedPartial:
		return to == StatusCancelled
	}
	return false
}

// Label возвращает пользовательскую подпись статуса (проекция для фронтенда)
func (s ReservationStatus) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApprovedFull:
		return "Approved (Full)"
	case StatusApprovedPartial:
		return "Approved (Partial)"
	case StatusRejected:
		return "Rejected"
	case StatusCancelled:
		return "Cancelled"
	case StatusExpired:
		return "Expired"
	}
	return string(s)
}

// Color возвращает цвет бейджа статуса для фронтенда
func (s ReservationStatus) Color() string {
	switch s {
	case StatusPending:
		return "#f57c00"
	case StatusApprovedFull:
		return "#4caf50"
	case StatusApprovedPartial:
		return "#8bc34a"
	case StatusRejected:
		return "#f44336"
	case StatusCancelled:
		return "#9e9e9e"
	case StatusExpired:
		return "#607d8b"
	}
	return "#9e9e9e"
}
