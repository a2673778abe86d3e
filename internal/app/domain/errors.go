package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Ожидаемые бизнес-ошибки ядра бронирования.
// Это нормальные исходы, а не сбои: обработчики переводят их в коды ответа,
// в журнал ошибок они не попадают.
var (
	// Попытка недопустимого перехода статуса (заявка уже терминальная,
	// либо решение проиграло гонку другому переходу)
	ErrInvalidTransition = errors.New("недопустимый переход статуса заявки")

	// Одобрение превысило бы остаток объёма объявления
	ErrCapacityExceeded = errors.New("недостаточно свободного объёма")

	// Неположительный или выходящий за пределы объём
	ErrInvalidAmount = errors.New("некорректный объём")

	// У арендатора уже есть ожидающая заявка на это объявление
	ErrDuplicateRequest = errors.New("заявка на это объявление уже ожидает решения")

	// Нет одобренной заявки с истёкшим контрактом - отзыв недоступен
	ErrNotEligible = errors.New("нет права оставить отзыв")

	// Отзыв по этой заявке уже существует
	ErrDuplicateReview = errors.New("отзыв по этой заявке уже оставлен")

	ErrListingNotFound = errors.New("объявление не найдено")
	ErrRequestNotFound = errors.New("заявка не найдена")
	ErrForbidden       = errors.New("операция недоступна для этого пользователя")
)

// CapacityError несёт актуальный остаток объёма в момент отказа.
// Остаток известен только там, где ошибка возникла (под блокировкой),
// поэтому он едет внутри ошибки, а не перечитывается обработчиком.
// errors.Is(err, ErrCapacityExceeded) продолжает работать через Unwrap.
type CapacityError struct {
	Remaining decimal.Decimal
}

func (e *CapacityError) Error() string { return ErrCapacityExceeded.Error() }

func (e *CapacityError) Unwrap() error { return ErrCapacityExceeded }
