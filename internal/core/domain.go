package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

const (
	PurposeIncome  CategoryPurpose = "income"
	PurposeExpense CategoryPurpose = "expense"
	PurposeBoth    CategoryPurpose = "both"
)

type (
	// TransactionType tells whether a transaction adds to or subtracts from a balance.
	TransactionType string

	// CategoryPurpose declares what kind of transactions a category is meant for.
	// It is descriptive data; the store accepts any mix of types per category.
	CategoryPurpose string

	Person struct {
		ID   int64
		Name string
		Age  int
	}

	Category struct {
		ID          int64
		Description string
		Purpose     CategoryPurpose
	}

	Transaction struct {
		ID          int64
		Description string
		Amount      Money
		Type        TransactionType
		CategoryID  int64
		PersonID    int64
		// CreatedAt is set once, server-side, in UTC. Updates must keep it.
		CreatedAt time.Time
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrCategoryInUse = errors.New("category has transactions")

	ErrEmptyName   = errors.New("empty name")
	ErrNameTooLong = errors.New("name too long")
	ErrInvalidAge  = errors.New("invalid age")

	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long")
	ErrInvalidPurpose     = errors.New("invalid category purpose")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnknownCategory    = errors.New("category does not exist")
	ErrUnknownPerson      = errors.New("person does not exist")
)

// validationErrs is the set of errors the HTTP boundary maps to 400.
var validationErrs = []error{
	ErrEmptyName,
	ErrNameTooLong,
	ErrInvalidAge,
	ErrEmptyDescription,
	ErrDescriptionTooLong,
	ErrInvalidPurpose,
	ErrInvalidType,
	ErrInvalidAmount,
	ErrUnknownCategory,
	ErrUnknownPerson,
}

// IsValidation reports whether err is (or wraps) a field or reference
// validation error, as opposed to a missing record or a store failure.
func IsValidation(err error) bool {
	for _, e := range validationErrs {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (p CategoryPurpose) Valid() bool {
	return p == PurposeIncome || p == PurposeExpense || p == PurposeBoth
}

func (p Person) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return fmt.Errorf("%w (max 200 characters)", ErrNameTooLong)
	}
	if p.Age < 0 {
		return ErrInvalidAge
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(c.Description) > 200 {
		return fmt.Errorf("%w (max 200 characters)", ErrDescriptionTooLong)
	}
	if !c.Purpose.Valid() {
		return ErrInvalidPurpose
	}
	return nil
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 250 {
		return fmt.Errorf("%w (max 250 characters)", ErrDescriptionTooLong)
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.CategoryID <= 0 {
		return ErrUnknownCategory
	}
	if t.PersonID <= 0 {
		return ErrUnknownPerson
	}
	return nil
}
