package books

import (
	"time"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/pkg/errors"
)

// Labeler turns status codes and reservation states into human-readable text.
type Labeler interface {
	StatusLabel(status string) string
	ReservationLabel(state ReservationState) string
}

const (
	keyNotReserved        = "not_reserved"
	keyReservationExpired = "reservation_expired"
	keyReservationLeft    = "reservation_left"
)

var translations = map[string]map[string]string{
	"en": {
		models.BookStatusReserved:  "Reserved",
		models.BookStatusInRepair:  "In repair",
		models.BookStatusAvailable: "Available",
		models.BookStatusWithdrawn: "Withdrawn",
		models.BookStatusOnLoan:    "On loan",
		keyNotReserved:             "not reserved",
		keyReservationExpired:      "reservation expired, extend or make available",
		keyReservationLeft:         "{0} remaining",
	},
	"ru": {
		models.BookStatusReserved:  "Зарезервирована",
		models.BookStatusInRepair:  "В ремонте",
		models.BookStatusAvailable: "Доступна",
		models.BookStatusWithdrawn: "Изъята из обращения",
		models.BookStatusOnLoan:    "В аренде",
		keyNotReserved:             "не зарезервирована",
		keyReservationExpired:      "резерв истёк, продлите или сделайте доступной",
		keyReservationLeft:         "осталось {0}",
	},
}

// Labels is a Labeler for a single locale.
type Labels struct {
	trans ut.Translator
}

// NewLabels returns labels for the given locale ("en" or "ru").
func NewLabels(locale string) (*Labels, error) {
	uni := ut.New(en.New(), en.New(), ru.New())

	for loc, texts := range translations {
		trans, _ := uni.GetTranslator(loc)
		for key, text := range texts {
			if err := trans.Add(key, text, false); err != nil {
				return nil, errors.Wrapf(err, "failed to add %s translation %q", loc, key)
			}
		}
	}

	trans, found := uni.GetTranslator(locale)
	if !found {
		return nil, errors.Errorf("unsupported locale %q", locale)
	}

	return &Labels{trans}, nil
}

// StatusLabel falls back to the status code for unknown statuses.
func (l *Labels) StatusLabel(status string) string {
	label, err := l.trans.T(status)
	if err != nil {
		return status
	}
	return label
}

func (l *Labels) ReservationLabel(state ReservationState) string {
	var label string
	var err error
	switch {
	case !state.Reserved:
		label, err = l.trans.T(keyNotReserved)
	case state.Expired:
		label, err = l.trans.T(keyReservationExpired)
	default:
		label, err = l.trans.T(keyReservationLeft, state.Remaining.Truncate(time.Minute).String())
	}
	if err != nil {
		return ""
	}
	return label
}
