package allocation

import (
	"tigerstorage/internal/app/domain"

	"github.com/shopspring/decimal"
)

// Вид решения арендодателя по заявке
type Kind int

const (
	ApproveFull Kind = iota
	ApprovePartial
)

// Decide вычисляет одобряемый объём для заявки.
// Чистая функция: никакого округления, объёмы считаются в decimal,
// чтобы многократные commit/release по одному объявлению не накапливали дрейф.
//
// ApproveFull: одобряется весь запрошенный объём.
// ApprovePartial: одобряется partial, 0 < partial <= requested.
// В обоих случаях одобряемый объём не должен превышать остаток remaining
// на момент решения.
func Decide(requested, remaining decimal.Decimal, kind Kind, partial decimal.Decimal) (decimal.Decimal, error) {
	if requested.Sign() <= 0 {
		return decimal.Zero, domain.ErrInvalidAmount
	}

	approved := requested
	if kind == ApprovePartial {
		if partial.Sign() <= 0 || partial.GreaterThan(requested) {
			return decimal.Zero, domain.ErrInvalidAmount
		}
		approved = partial
	}

	if approved.GreaterThan(remaining) {
		return decimal.Zero, &domain.CapacityError{Remaining: remaining}
	}

	return approved, nil
}
