package churn

import "churnguard/ml"

const (
	ColumnAge               = "Age"
	ColumnTenure            = "Tenure_in_Months"
	ColumnMonthlyCharge     = "Monthly_Charge"
	ColumnSatisfactionScore = "Satisfaction_Score"
	ColumnOnlineSecurity    = "Online_Security"
	ColumnUnlimitedData     = "Unlimited_Data"
	ColumnContractTwoYear   = "Contract_Two Year"
	ColumnContractOneYear   = "Contract_One Year"

	// ColumnContractMonthToMonth only appears in specs trained with full-rank contract encoding.
	ColumnContractMonthToMonth = "Contract_Month-to-Month"
)

// FeatureNames lists every column BuildFeatureVector can populate.
func FeatureNames() []string {
	return []string{
		ColumnAge,
		ColumnTenure,
		ColumnMonthlyCharge,
		ColumnSatisfactionScore,
		ColumnOnlineSecurity,
		ColumnUnlimitedData,
		ColumnContractTwoYear,
		ColumnContractOneYear,
	}
}

// BaselineColumns are spec columns that contradict the Month-to-Month baseline encoding.
func BaselineColumns() []string {
	return []string{ColumnContractMonthToMonth}
}

// BuildFeatureVector lays raw out in spec's column order. Month-to-Month is
// the baseline contract and sets neither indicator. Spec columns the builder
// does not produce are 0, so a misspelled spec column is indistinguishable
// from a genuine zero.
func BuildFeatureVector(raw RawInput, spec ml.FeatureSpec) ml.FeatureVector {
	values := map[string]float64{
		ColumnAge:               float64(raw.Age),
		ColumnTenure:            float64(raw.TenureMonths),
		ColumnMonthlyCharge:     raw.MonthlyCharge,
		ColumnSatisfactionScore: float64(raw.SatisfactionScore),
		ColumnOnlineSecurity:    float64(raw.OnlineSecurity),
		ColumnUnlimitedData:     float64(raw.UnlimitedData),
		ColumnContractTwoYear:   indicator(raw.ContractType == ContractTwoYear),
		ColumnContractOneYear:   indicator(raw.ContractType == ContractOneYear),
	}
	return ml.Reindex(values, spec)
}

func indicator(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
