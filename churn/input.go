// Package churn maps customer attributes onto a classifier's feature vector and labels the result.
package churn

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ContractType string

const (
	ContractMonthToMonth ContractType = "Month-to-Month"
	ContractOneYear      ContractType = "One Year"
	ContractTwoYear      ContractType = "Two Year"
)

func ContractTypes() []ContractType {
	return []ContractType{ContractMonthToMonth, ContractOneYear, ContractTwoYear}
}

// RawInput is one customer's attributes as collected by the form or API.
type RawInput struct {
	Age               int          `json:"age" validate:"gte=18,lte=90"`
	TenureMonths      int          `json:"tenure_months" validate:"gte=0,lte=72"`
	MonthlyCharge     float64      `json:"monthly_charge" validate:"gte=0,finite"`
	SatisfactionScore int          `json:"satisfaction_score" validate:"gte=1,lte=5"`
	OnlineSecurity    int          `json:"online_security" validate:"oneof=0 1"`
	UnlimitedData     int          `json:"unlimited_data" validate:"oneof=0 1"`
	ContractType      ContractType `json:"contract_type" validate:"required,oneof='Month-to-Month' 'One Year' 'Two Year'"`
}

// DefaultRawInput returns the values the form starts with.
func DefaultRawInput() RawInput {
	return RawInput{
		Age:               30,
		TenureMonths:      12,
		MonthlyCharge:     70.0,
		SatisfactionScore: 3,
		OnlineSecurity:    0,
		UnlimitedData:     0,
		ContractType:      ContractMonthToMonth,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && !math.IsNaN(f)
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidationError lists the fields of a RawInput outside their domains.
type ValidationError struct {
	Fields []string
	err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

// Validate checks every field against its declared domain. The builder never calls it.
func (r RawInput) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{err: err}
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
	}
	return verr
}
