package http

import (
	"fmt"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"churnguard/churn"
)

const formTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Telecom Customer Churn Prediction</title>
</head>
<body>
<h1>📊 Telecom Customer Churn Prediction</h1>
<p>Fill in the customer details to predict whether the customer will churn or not.</p>
{{if .Error}}<p class="error" role="alert">{{.Error}}</p>{{end}}
<form method="post" action="/predict">
  <label>Age <input type="number" name="age" min="18" max="90" step="1" value="{{.Input.Age}}" required></label><br>
  <label>Tenure in Months <input type="number" name="tenure_months" min="0" max="72" step="1" value="{{.Input.TenureMonths}}" required></label><br>
  <label>Monthly Charge <input type="number" name="monthly_charge" min="0" max="200" step="0.01" value="{{.Charge}}" required></label><br>
  <label>Satisfaction Score <input type="range" name="satisfaction_score" min="1" max="5" step="1" value="{{.Input.SatisfactionScore}}"></label><br>
  <label>Online Security (0 = No, 1 = Yes)
    <select name="online_security">
      <option value="0"{{if eq .Input.OnlineSecurity 0}} selected{{end}}>0</option>
      <option value="1"{{if eq .Input.OnlineSecurity 1}} selected{{end}}>1</option>
    </select>
  </label><br>
  <label>Unlimited Data (0 = No, 1 = Yes)
    <select name="unlimited_data">
      <option value="0"{{if eq .Input.UnlimitedData 0}} selected{{end}}>0</option>
      <option value="1"{{if eq .Input.UnlimitedData 1}} selected{{end}}>1</option>
    </select>
  </label><br>
  <label>Contract Type
    <select name="contract_type">
      {{range .Contracts}}<option value="{{.}}"{{if eq . $.Input.ContractType}} selected{{end}}>{{.}}</option>{{end}}
    </select>
  </label><br>
  <button type="submit">Predict</button>
</form>
{{with .Result}}
<section class="result {{if .Churn}}churn{{else}}stay{{end}}">
  {{if .Churn}}<p>❌ Customer is likely to CHURN</p>{{else}}<p>✔ Customer is likely to STAY</p>{{end}}
  <p>{{.Summary}}</p>
</section>
{{end}}
</body>
</html>
`

var pageTemplate = template.Must(template.New("form").Parse(formTemplate))

type pageData struct {
	Input     churn.RawInput
	Charge    string
	Contracts []churn.ContractType
	Error     string
	Result    *resultView
}

type resultView struct {
	Churn   bool
	Summary string
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPageData(churn.DefaultRawInput()))
}

func (h *Handlers) handlePredictForm(w http.ResponseWriter, r *http.Request) {
	raw, err := parseRawInput(r)
	if err == nil {
		err = raw.Validate()
	}
	if err != nil {
		data := newPageData(raw)
		data.Error = err.Error()
		h.renderPage(w, http.StatusBadRequest, data)
		return
	}

	prediction, err := h.predictor.Predict(r.Context(), raw)
	if err != nil {
		h.logPredictError(r, err)
		data := newPageData(raw)
		data.Error = "Prediction failed. Please try again later."
		h.renderPage(w, predictErrorStatus(err), data)
		return
	}

	data := newPageData(raw)
	data.Result = &resultView{
		Churn: prediction.Churn,
		Summary: h.printer.Sprintf("%d-year-old customer, %d months tenure, monthly charge %.2f, %s contract.",
			raw.Age, raw.TenureMonths, raw.MonthlyCharge, raw.ContractType),
	}
	h.renderPage(w, http.StatusOK, data)
}

func (h *Handlers) renderPage(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
	}
}

func newPageData(raw churn.RawInput) pageData {
	return pageData{
		Input:     raw,
		Charge:    strconv.FormatFloat(raw.MonthlyCharge, 'f', 2, 64),
		Contracts: churn.ContractTypes(),
	}
}

// parseRawInput reads the form fields; fields that fail to parse keep their default.
func parseRawInput(r *http.Request) (churn.RawInput, error) {
	raw := churn.DefaultRawInput()
	if err := r.ParseForm(); err != nil {
		return raw, fmt.Errorf("invalid form: %w", err)
	}

	var bad []string
	ints := []struct {
		name string
		dst  *int
	}{
		{"age", &raw.Age},
		{"tenure_months", &raw.TenureMonths},
		{"satisfaction_score", &raw.SatisfactionScore},
		{"online_security", &raw.OnlineSecurity},
		{"unlimited_data", &raw.UnlimitedData},
	}
	for _, field := range ints {
		v, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get(field.name)))
		if err != nil {
			bad = append(bad, field.name)
			continue
		}
		*field.dst = v
	}
	charge, err := strconv.ParseFloat(strings.TrimSpace(r.PostForm.Get("monthly_charge")), 64)
	if err != nil || math.IsInf(charge, 0) || math.IsNaN(charge) {
		bad = append(bad, "monthly_charge")
	} else {
		raw.MonthlyCharge = charge
	}
	raw.ContractType = churn.ContractType(r.PostForm.Get("contract_type"))

	if len(bad) > 0 {
		return raw, fmt.Errorf("invalid number in: %s", strings.Join(bad, ", "))
	}
	return raw, nil
}
